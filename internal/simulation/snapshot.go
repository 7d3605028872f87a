package simulation

import "github.com/talgya/settlementsim/internal/grid"

// PersonSnapshot is the JSON-serializable view of one living person,
// suitable for persistence or for an external visualizer to render.
type PersonSnapshot struct {
	PK      int    `json:"pk"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Health  int    `json:"health"`
	Hunger  int    `json:"hunger"`
	HasHome bool   `json:"has_home"`
	Spouse  string `json:"spouse,omitempty"`
}

// Snapshot is a complete, point-in-time view of the simulation: the
// character grid plus every living person, stamped at the year/day/
// tick it was taken.
type Snapshot struct {
	Year int      `json:"year"`
	Day  int      `json:"day"`
	Tick int      `json:"tick"`
	Rows []string `json:"rows"`
	People []PersonSnapshot `json:"people"`
}

// Snapshot captures the simulation's current state.
func (s *Simulation) Snapshot() Snapshot {
	rows := make([]string, s.grid.Height())
	for y := 0; y < s.grid.Height(); y++ {
		row := make([]rune, s.grid.Width())
		for x := 0; x < s.grid.Width(); x++ {
			ch, _ := s.grid.CellAt(grid.Location{X: x, Y: y})
			row[x] = ch
		}
		rows[y] = string(row)
	}

	people := make([]PersonSnapshot, 0, len(s.people))
	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		spouseID, _ := p.Spouse()
		_, hasHome := p.Home()
		loc := p.Location()
		people = append(people, PersonSnapshot{
			PK: p.PK(), Name: p.Name(), Age: p.Age(),
			X: loc.X, Y: loc.Y,
			Health: p.Health(), Hunger: p.Hunger(),
			HasHome: hasHome, Spouse: spouseID,
		})
	}

	return Snapshot{Year: s.year, Day: s.day, Tick: s.tick, Rows: rows, People: people}
}
