package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/project-elva/data-processing/internal/database"
	"github.com/project-elva/data-processing/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	if len(os.Args) < 2 {
		log.Fatal("please provide the reference data directory as a command-line argument")
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

	log.Printf("Seeding reference data from %s...", dataDir)
	if err := seed.NewLoader(dbManager).LoadAll(dataDir); err != nil {
		log.Fatalf("Error seeding reference data: %v", err)
	}
	log.Println("Reference data seeded successfully.")
}
