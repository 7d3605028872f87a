package simulation

import (
	"math/rand"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/structure"
)

// GenerateWorld builds a fresh grid with a small starting settlement and
// a scattering of trees, for runs started without a saved grid file. The
// source system delegates this to a generator class that the retrieval
// pack never captured, so this is a minimal hand-built stand-in: one
// Home, one Barn, a couple of Farms and Mines clustered near the
// center, and trees sown at random across the rest of the grid.
func GenerateWorld(cfg *config.Settings, width, height int, rng *rand.Rand) *grid.Grid {
	g := grid.New(cfg, width, height)

	center := grid.Location{X: width / 2, Y: height / 2}
	homeChar := cfg.Char("home_char", grid.DefaultHome)
	barnChar := cfg.Char("barn_char", grid.DefaultBarn)
	farmChar := cfg.Char("farm_char", grid.DefaultFarm)
	mineChar := cfg.Char("mine_char", grid.DefaultMine)

	homeCap := cfg.Int("starting_home_capacity", 4)
	barnCap := cfg.Int("backpack_food_cap", 100) + cfg.Int("backpack_wood_cap", 50) + cfg.Int("backpack_stone_cap", 50)

	home := structure.NewHome(grid.Location{X: center.X, Y: center.Y}, homeChar, homeCap)
	_ = g.PlaceStructure(home)

	barn := structure.NewBarn(grid.Location{X: center.X + 1, Y: center.Y}, barnChar, barnCap)
	_ = g.PlaceStructure(barn)

	farmSpots := []grid.Location{
		{X: center.X - 2, Y: center.Y},
		{X: center.X, Y: center.Y - 2},
	}
	for _, loc := range farmSpots {
		if !g.InBounds(loc) || !g.IsEmpty(loc) {
			continue
		}
		farm := structure.NewFarm(loc, farmChar, cfg.Int("farm_capacity", 2), randomResourceYield(rng))
		_ = g.PlaceStructure(farm)
	}

	mineSpots := []grid.Location{
		{X: center.X + 2, Y: center.Y + 1},
		{X: center.X - 1, Y: center.Y + 2},
	}
	for _, loc := range mineSpots {
		if !g.InBounds(loc) || !g.IsEmpty(loc) {
			continue
		}
		mine := structure.NewMine(loc, mineChar, cfg.Int("mine_capacity", 2), randomResourceYield(rng))
		_ = g.PlaceStructure(mine)
	}

	const treeDensity = 0.12
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			loc := grid.Location{X: x, Y: y}
			if !g.IsEmpty(loc) {
				continue
			}
			if rng.Float64() < treeDensity {
				_, _ = g.PlantTree(loc, rng)
			}
		}
	}

	return g
}

// randomResourceYield draws a grove-style (mu, sigma) payout for a
// freshly placed farm or mine, matching the distribution groves.go uses
// for trees so starting work sites aren't systematically richer.
func randomResourceYield(rng *rand.Rand) grid.Yield {
	mu := 10 + rng.Float64()*40
	sigma := rng.Float64() * 20
	return grid.Yield{Mu: mu, Sigma: sigma}
}
