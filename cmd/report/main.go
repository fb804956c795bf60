package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/project-elva/data-processing/internal/database"
	"github.com/project-elva/data-processing/internal/report"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	dbpool, err := database.ConnectDB(dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(context.Background(), dbpool)

	rep, err := report.Build(dbManager)
	if err != nil {
		log.Fatalf("Error building report: %v", err)
	}

	out := os.Stdout
	if len(os.Args) > 1 {
		out, err = os.Create(os.Args[1])
		if err != nil {
			log.Fatalf("Error creating report file: %v", err)
		}
		defer out.Close()
	}

	if err := rep.WriteJSON(out); err != nil {
		log.Fatalf("Error writing report: %v", err)
	}
}
