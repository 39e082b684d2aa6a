package main

import (
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/config"
	"github.com/HappySolarCoder/happy-solar-referrals/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	migrationFile := os.Args[1]
	sqlContent, err := os.ReadFile(migrationFile)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(string(sqlContent)); err != nil {
		log.Fatalf("Failed to apply migration %s: %v", migrationFile, err)
	}
	log.Printf("Applied migration %s", migrationFile)
}
