// Package main provides a headless runner that plays encounters, or a whole
// campaign, from YAML content and prints each round's estimates and outcomes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/config"
	"github.com/cory-johannsen/tactics/internal/game/content"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/power"
	"github.com/cory-johannsen/tactics/internal/game/probability"
	"github.com/cory-johannsen/tactics/internal/observability"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	encounterKey := flag.String("encounter", "", "encounter key to play; empty plays the campaign")
	seed := flag.Uint64("seed", 0, "dice seed; overrides dice.seed when non-zero")
	maxRounds := flag.Int("rounds", 50, "abort an encounter after this many rounds")
	usePowers := flag.Bool("powers", true, "spend one power per round when one fits")
	rewards := flag.Int("rewards", 0, "powers drawn from the reward table before a single encounter")
	list := flag.Bool("list", false, "list encounter keys and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Dice.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	lib, err := content.Load(cfg.Content.Dir, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	if *list {
		for _, k := range lib.EncounterKeys() {
			fmt.Println(k)
		}
		return
	}

	streams := dice.NewStreams(cfg.Dice.Seed)
	if cfg.Dice.Seed == 0 {
		if streams, err = dice.NewRandomStreams(); err != nil {
			logger.Fatal("seeding dice", zap.Error(err))
		}
	}
	logger.Info("dice seeded", zap.Uint64("seed", streams.Seed))

	opts := encounter.Options{
		Samples: cfg.Simulation.Samples,
		Weights: probability.Weights{New: cfg.Simulation.NewWeight, Stored: cfg.Simulation.StoredWeight},
	}
	if cfg.Scripting.Dir != "" {
		engine := scripting.NewEngine(dice.NewLoggedRoller(streams.Commit, logger), logger, cfg.Scripting.InstructionLimit)
		defer engine.Close()
		if err := engine.LoadDir(cfg.Scripting.Dir); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		opts.Hook = engine
	}

	r := &runner{
		lib:       lib,
		streams:   streams,
		roller:    dice.NewLoggedRoller(streams.Commit, logger),
		opts:      opts,
		maxRounds: *maxRounds,
		usePowers: *usePowers,
		out:       os.Stdout,
		logger:    logger,
	}

	if *encounterKey == "" {
		status, err := r.runCampaign()
		if err != nil {
			logger.Fatal("campaign aborted", zap.Error(err))
		}
		logger.Info("campaign finished", zap.Stringer("status", status), zap.Duration("elapsed", time.Since(start)))
		return
	}

	d, ok := lib.Encounter(*encounterKey)
	if !ok {
		logger.Fatal("unknown encounter", zap.String("encounter", *encounterKey))
	}
	inv := power.NewInventory(power.DefaultRewardTable().Draw(streams.Commit, *rewards)...)
	won, err := r.runEncounter(d, inv)
	if err != nil {
		logger.Fatal("encounter aborted", zap.Error(err))
	}
	logger.Info("encounter finished", zap.Bool("won", won), zap.Duration("elapsed", time.Since(start)))
}
