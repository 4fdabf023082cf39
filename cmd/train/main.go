package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/VruddithShetty/TrialEquity/adapters/modelstore"
	"github.com/VruddithShetty/TrialEquity/app"
	"github.com/VruddithShetty/TrialEquity/internal/config"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
	"github.com/VruddithShetty/TrialEquity/ports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	cohorts := flag.Int("cohorts", cfg.Training.Cohorts, "number of synthetic training cohorts")
	seed := flag.Int64("seed", cfg.Training.Seed, "training seed; a fixed seed reproduces the bundle")
	modelDir := flag.String("model-dir", cfg.Model.Dir, "model artifact directory")
	policyFile := flag.String("policy", cfg.Policy.File, "optional policy override file")
	flag.Parse()

	pol := policy.Default()
	if *policyFile != "" {
		pol, err = policy.Load(*policyFile)
		if err != nil {
			log.Fatal("Failed to load policy:", err)
		}
	}

	store, err := modelstore.NewFileStore(*modelDir)
	if err != nil {
		log.Fatal("Failed to open model store:", err)
	}

	training := app.NewTrainingService(store, ports.SeededRNG{}, pol)
	result, err := training.Train(context.Background(), *cohorts, *seed)
	if err != nil {
		log.Fatal("Training failed:", err)
	}

	log.Printf("trained %s: accuracy %.3f over %d cohorts, saved to %s",
		result.Version, result.Accuracy, result.Cohorts, *modelDir)
}
