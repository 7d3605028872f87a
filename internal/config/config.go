// Package config loads the simulation's flat key/value settings table.
//
// The original system reads settings with a permissive get(key, default)
// call at every use site (navigator epsilon floors, memory expiry,
// backpack caps, and so on). There is no structured schema shared
// between callers, so this package keeps the same shape: a flat map
// loaded once from JSON, with typed accessors that fall back to a
// caller-supplied default exactly like the source system does.
package config

import (
	"encoding/json"
	"os"
)

// Settings is a flat key/value store loaded from a JSON document of
// the form {"hunger_pref_min": 50, "home_char": "H", ...}.
type Settings struct {
	numbers map[string]float64
	strings map[string]string
}

// Defaults returns the built-in settings table, so a simulation can
// run with zero configuration on disk.
func Defaults() *Settings {
	return &Settings{
		numbers: map[string]float64{
			"memory_expire":          50,
			"hunger_pref_min":        50,
			"hunger_pref_max":        100,
			"hunger_damage_threshold": 20,
			"hunger_regen_threshold": 50,
			"person_epsilon":         0.05,
			"epsilon_reset_min":      50,
			"tree_grow_probability":  0.02,
			"backpack_food_cap":      100,
			"backpack_stone_cap":     50,
			"backpack_wood_cap":      50,
			"finished_completion_level": 5,
			"construction_required_wood":  20,
			"construction_required_stone": 20,
			"actions_per_day":        20,
			"days_per_year":          20,
			"age_max":                80,
			"marriage_age_min":       20,
			"marriage_age_max":       50,
			"navigator_escalation_threshold": 0.37,
		},
		strings: map[string]string{
			"empty_char":              " ",
			"tree_char":               "*",
			"home_char":               "H",
			"home_construction_char":  "h",
			"barn_char":               "B",
			"barn_construction_char":  "b",
			"farm_char":               "F",
			"farm_construction_char":  "f",
			"mine_char":               "M",
			"mine_construction_char":  "m",
		},
	}
}

// Load reads a JSON settings file and overlays it on top of Defaults.
func Load(path string) (*Settings, error) {
	s := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var overlay map[string]any
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		switch val := v.(type) {
		case float64:
			s.numbers[k] = val
		case string:
			s.strings[k] = val
		}
	}
	return s, nil
}

// Float returns the numeric setting for key, or def if unset.
func (s *Settings) Float(key string, def float64) float64 {
	if v, ok := s.numbers[key]; ok {
		return v
	}
	return def
}

// Int returns the numeric setting for key truncated to int, or def if unset.
func (s *Settings) Int(key string, def int) int {
	if v, ok := s.numbers[key]; ok {
		return int(v)
	}
	return def
}

// String returns the string setting for key, or def if unset.
func (s *Settings) String(key string, def string) string {
	if v, ok := s.strings[key]; ok {
		return v
	}
	return def
}

// Char returns the first rune of the string setting for key, or def.
func (s *Settings) Char(key string, def rune) rune {
	if v, ok := s.strings[key]; ok && len(v) > 0 {
		return []rune(v)[0]
	}
	return def
}
