package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/project-elva/data-processing/internal/database"
)

func main() {
	fmt.Println("Starting database setup...")

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

	fmt.Println("Creating reference tables...")
	if err := dbManager.CreateReferenceTables(); err != nil {
		log.Fatalf("Error creating reference tables: %v", err)
	}
	fmt.Println("Reference tables created successfully.")

	fmt.Println("Creating instances table...")
	if err := dbManager.CreateInstanceTable(); err != nil {
		log.Fatalf("Error creating instances table: %v", err)
	}
	fmt.Println("instances table created successfully.")

	fmt.Println("Database setup finished successfully.")
}
