package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/project-elva/data-processing/internal/config"
	"github.com/project-elva/data-processing/internal/database"
	"github.com/project-elva/data-processing/internal/diag"
	"github.com/project-elva/data-processing/internal/ingestion"
)

func setup() (string, *ingestion.IngestionService, func(), error) {
	if len(os.Args) < 2 {
		return "", nil, nil, fmt.Errorf("please provide the root log directory as a command-line argument")
	}
	rootPath := os.Args[1]

	cfg, err := config.New()
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbpool, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return "", nil, nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	ctx := context.Background()
	dbManager := database.NewPostgresDBManager(ctx, dbpool)

	sink := diag.NewFileSink(cfg.ProcLogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	log.Printf("Audit log: %s (run %s)", cfg.ProcLogFile, sink.RunID())

	scanner := ingestion.NewDirScanner(sink)
	processor := ingestion.NewInstanceProcessor(dbManager, sink)
	service := ingestion.NewIngestionService(scanner, processor, sink)

	cleanupFunc := func() {
		dbpool.Close()
		sink.Close()
	}

	return rootPath, service, cleanupFunc, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	startTime := time.Now()

	rootPath, service, cleanupFunc, err := setup()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanupFunc()

	summary, err := service.Execute(rootPath)
	if err != nil {
		log.Fatalf("Error during ingestion: %v\n", err)
	}

	log.Printf("Ingestion finished: %s", summary)
	log.Printf("Execution time: %s\n", time.Since(startTime))
}
