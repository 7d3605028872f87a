// Command settlementsim runs the settlement simulation: a tick-driven
// population of agents navigating, working, and building on a shared
// grid, observable over a small read-only HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/settlementsim/internal/api"
	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/persistence"
	"github.com/talgya/settlementsim/internal/simulation"
)

var (
	configPath string
	gridPath   string
	dbPath     string
	seed       int64
	years      int
	apiPort    int
	adminKey   string
	population int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "settlementsim",
		Short: "Run the settlement simulation",
		Long: `settlementsim drives a tick-by-tick settlement simulation: agents
perceive their surroundings, remember what they've seen, navigate the
grid with an A*-plus-bandit strategy, and work through a daily task
schedule — eating, building, gathering, and raising families.`,
		Run: run,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a JSON settings file (defaults built in if omitted)")
	rootCmd.Flags().StringVarP(&gridPath, "grid", "g", "", "path to a saved grid file (a fresh settlement is generated if omitted)")
	rootCmd.Flags().StringVarP(&dbPath, "db", "d", "data/settlement.db", "path to the SQLite database")
	rootCmd.Flags().Int64VarP(&seed, "seed", "s", 42, "random seed")
	rootCmd.Flags().IntVarP(&years, "years", "y", 0, "years to simulate before exiting (0 runs until interrupted)")
	rootCmd.Flags().IntVarP(&apiPort, "port", "p", 8080, "HTTP API port")
	rootCmd.Flags().StringVar(&adminKey, "admin-key", "", "bearer token required for the snapshot-save endpoint (disabled if empty)")
	rootCmd.Flags().IntVar(&population, "population", 8, "starting population for a freshly generated grid")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	slog.Info("settlementsim starting", "seed", seed, "db", dbPath)

	cfg := config.Defaults()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			slog.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if dir := dirOf(dbPath); dir != "" {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(seed))

	g, startPop, err := loadOrGenerateGrid(cfg, rng)
	if err != nil {
		slog.Error("failed to load grid", "path", gridPath, "error", err)
		os.Exit(1)
	}

	sim := simulation.New(cfg, g, seed, logger)

	startYear := 0
	if row, err := db.LoadLatestSnapshot(); err == nil {
		slog.Info("restoring from latest snapshot", "year", row.Year, "tick", row.Tick)
		startYear = row.Year
	} else if startPop != nil {
		for _, loc := range startPop {
			sim.SpawnPerson(loc, 20+rng.Intn(20))
		}
		slog.Info("spawned starting population", "count", len(startPop))
	}

	srv := &api.Server{Sim: sim, DB: db, Port: apiPort, AdminKey: adminKey}
	srv.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for years <= 0 || sim.Year() < startYear+years {
			select {
			case <-stop:
				return
			default:
			}
			sim.RunYear()
			saveYearly(db, sim)
			slog.Info("year complete", "year", sim.Year(), "population", humanize.Comma(int64(sim.Population())))
		}
	}()

	select {
	case <-stop:
		slog.Info("shutdown requested, finishing current year")
		<-done
	case <-done:
	}

	saveYearly(db, sim)
	slog.Info("settlementsim exiting", "final_year", sim.Year())
}

// loadOrGenerateGrid reads a grid file if one was given, otherwise
// builds a fresh one with a small starting settlement and returns the
// spawn locations for the initial population.
func loadOrGenerateGrid(cfg *config.Settings, rng *rand.Rand) (*grid.Grid, []grid.Location, error) {
	if gridPath != "" {
		f, err := os.Open(gridPath)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		g, err := grid.Load(cfg, f, rng)
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	}

	const width, height = 40, 40
	g := simulation.GenerateWorld(cfg, width, height, rng)

	center := grid.Location{X: width / 2, Y: height / 2}
	spawns := make([]grid.Location, 0, population)
	for i := 0; i < population; i++ {
		loc, ok := g.OpenSpotNextToTown(rng)
		if !ok {
			loc = center
		}
		spawns = append(spawns, loc)
	}
	return g, spawns, nil
}

// saveYearly persists the current snapshot and yearly stats, logging
// rather than failing the run if the write itself errors.
func saveYearly(db *persistence.DB, sim *simulation.Simulation) {
	snap := sim.Snapshot()
	takenAt := time.Now().UTC().Format(time.RFC3339)
	if err := db.SaveSnapshot(snap.Year, snap.Tick, takenAt, snap.Rows, snap.People); err != nil {
		slog.Error("snapshot save failed", "error", err)
	}
	if err := db.SaveStats(persistence.StatsRow{
		Year:       snap.Year,
		Population: len(snap.People),
	}); err != nil {
		slog.Error("stats save failed", "error", err)
	}
	if err := db.SaveMeta("seed", fmt.Sprintf("%d", seed)); err != nil {
		slog.Error("meta save failed", "error", err)
	}
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}
