package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/VruddithShetty/TrialEquity/adapters/api"
	"github.com/VruddithShetty/TrialEquity/adapters/modelstore"
	"github.com/VruddithShetty/TrialEquity/adapters/postgres"
	"github.com/VruddithShetty/TrialEquity/app"
	"github.com/VruddithShetty/TrialEquity/internal"
	"github.com/VruddithShetty/TrialEquity/internal/config"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
	"github.com/VruddithShetty/TrialEquity/ports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := internal.NewDefaultLogger()
	ctx := context.Background()

	gin.SetMode(cfg.Server.GinMode)

	pol := policy.Default()
	if cfg.Policy.File != "" {
		pol, err = policy.Load(cfg.Policy.File)
		if err != nil {
			log.Fatal("Failed to load policy:", err)
		}
	}

	store, err := modelstore.NewFileStore(cfg.Model.Dir)
	if err != nil {
		log.Fatal("Failed to open model store:", err)
	}

	rng := ports.SeededRNG{}
	training := app.NewTrainingService(store, rng, pol)

	if _, err := store.Load(ctx); err != nil {
		if !errors.HasCode(err, errors.CodeModelNotTrained) {
			log.Fatal("Failed to load model bundle:", err)
		}
		if !cfg.Model.TrainOnBoot {
			log.Fatal("No model bundle found and TRAIN_ON_BOOT is disabled")
		}
		logger.Info("no model bundle found, training on boot")
		result, err := training.Train(ctx, cfg.Training.Cohorts, cfg.Training.Seed)
		if err != nil {
			log.Fatal("Boot training failed:", err)
		}
		logger.Info("trained model %s (accuracy %.3f)", result.Version, result.Accuracy)
	}

	var repo ports.AssessmentRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to ensure schema:", err)
		}
		repo = postgres.NewAssessmentRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, assessments will not be persisted")
	}

	assessments, err := app.NewAssessmentService(store, repo, pol)
	if err != nil {
		log.Fatal("Failed to build assessment service:", err)
	}

	server := api.NewServer(assessments, training, repo, store, logger)
	log.Fatal(server.Start(":" + cfg.Server.Port))
}
