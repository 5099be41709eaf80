package main

import (
	"log"
	"os"

	"warden-bot/bot"
	"warden-bot/config"
	"warden-bot/handlers"
	"warden-bot/utils/database/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := ledger.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing ledger database: %v", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, ledger.New(db))
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)
	defer b.Close()

	b.Run()
}
