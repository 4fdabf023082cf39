package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/VruddithShetty/TrialEquity/adapters/ingest"
	"github.com/VruddithShetty/TrialEquity/adapters/modelstore"
	"github.com/VruddithShetty/TrialEquity/app"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/internal/config"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
	"github.com/VruddithShetty/TrialEquity/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	trialID := flag.String("trial", "", "trial identifier (required)")
	modelDir := flag.String("model-dir", cfg.Model.Dir, "model artifact directory")
	policyFile := flag.String("policy", cfg.Policy.File, "optional policy override file")
	asMarkdown := flag.Bool("report", false, "print a markdown report instead of JSON")
	flag.Parse()

	if flag.NArg() != 1 || *trialID == "" {
		fmt.Fprintf(os.Stderr, "usage: assess -trial <id> [-report] <cohort-file.{csv,json,xlsx}>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

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

	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		log.Fatal("Failed to load model bundle (run the train command first):", err)
	}

	reader, err := ingest.ForFilename(path)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("Failed to open cohort file:", err)
	}
	defer f.Close()

	record, err := reader.Read(ctx, f)
	if err != nil {
		log.Fatal("Failed to parse cohort file:", err)
	}
	record.TrialID = core.TrialID(*trialID)

	service, err := app.NewAssessmentService(store, nil, pol)
	if err != nil {
		log.Fatal("Failed to build assessment service:", err)
	}

	result, err := service.Assess(ctx, record)
	if err != nil {
		log.Fatal("Assessment failed:", err)
	}

	if *asMarkdown {
		os.Stdout.Write(report.Markdown(result))
		return
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode assessment:", err)
	}
	fmt.Println(string(out))
}
