package main

import (
	"context"
	"flag"
	"time"

	"kbmetrics/internal/adapters/config"
	mongoclient "kbmetrics/internal/adapters/mongo"
	mongorepo "kbmetrics/internal/repository/mongo"
	devseeds "kbmetrics/internal/seeds/dev"
	testseeds "kbmetrics/internal/seeds/test"
	"kbmetrics/internal/testsupport/seeds"
	"kbmetrics/pkg/logger"
)

func main() {
	// Parse flags
	env := flag.String("env", "dev", "Environment: dev, test")
	dryRun := flag.Bool("dry-run", false, "List seed functions without executing")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	log.Infow("Starting seeder",
		"environment", *env,
		"dry_run", *dryRun,
		"host", cfg.Mongo.Host,
	)

	// Get seed functions for environment
	seedFuncs := getSeedFunctions(*env)
	if len(seedFuncs) == 0 {
		log.Warnw("No seeds available for environment", "environment", *env)
		return
	}

	log.Infow("Found seed functions", "environment", *env, "count", len(seedFuncs))

	if *dryRun {
		log.Info("✅ Dry-run mode: seed functions validated")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongoclient.NewClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			log.Warnw("Failed to close MongoDB client", "error", err)
		}
	}()

	log.Info("Successfully connected to MongoDB")

	repo := mongorepo.NewMetricsRepository(client, mongorepo.WithLogger(log))
	seeder := seeds.New(repo).WithContext(ctx)

	// Execute each seed function in order
	for i, seedFunc := range seedFuncs {
		log.Infow("Executing seed", "step", i+1, "total", len(seedFuncs))

		if err := seedFunc(ctx, seeder); err != nil {
			log.Errorw("Failed to execute seed",
				"step", i+1,
				"error", err,
			)
			return
		}

		log.Infow("✅ Seed completed", "step", i+1)
	}

	log.Info("✅ All seeds applied successfully")
}

// getSeedFunctions returns seed functions for the given environment.
// Users go first so activity reports can join against them.
func getSeedFunctions(env string) []func(context.Context, *seeds.Seeder) error {
	switch env {
	case "dev":
		return []func(context.Context, *seeds.Seeder) error{
			devseeds.SeedUsers,
			devseeds.SeedActivities,
			devseeds.SeedNarratives,
		}
	case "test":
		return []func(context.Context, *seeds.Seeder) error{
			testseeds.SeedUsers,
			testseeds.SeedActivities,
		}
	default:
		return nil
	}
}
