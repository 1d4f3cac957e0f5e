package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"codearena/internal/config"
	"codearena/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		log.Fatalf("migrations (%s): %v", *direction, err)
	}
	log.Printf("migrations applied: %s", *direction)
}
