package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/project-elva/data-processing/internal/database"
	"github.com/project-elva/data-processing/internal/slides"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	if len(os.Args) < 2 {
		log.Fatal("please provide the curriculum data directory as a command-line argument")
	}
	dataDir := os.Args[1]

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

	updated, err := slides.Refresh(dbManager, dataDir)
	if err != nil {
		log.Fatalf("Error refreshing slide counts: %v", err)
	}
	log.Printf("Slide counts refreshed, %d sessions updated.", updated)
}
