package main

import (
	"log"
	"time"

	"confmgr/internal/pkg/logger"
	"confmgr/internal/platform/config"
	"confmgr/internal/platform/database"
	"confmgr/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Println("Starting background workers...")

	go func() {
		ticker := time.NewTicker(cfg.Worker.SweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			if err := workers.SweepOrphanedGrants(db); err != nil {
				log.Printf("Error sweeping orphaned grants: %v", err)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.Worker.PruneInterval)
		defer ticker.Stop()

		for range ticker.C {
			if err := workers.PruneAuditLogs(db, cfg.Audit.RetentionDays); err != nil {
				log.Printf("Error pruning audit logs: %v", err)
			}
		}
	}()

	// Keep process alive
	select {}
}
