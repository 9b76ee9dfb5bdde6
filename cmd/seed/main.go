package main

import (
	"log"

	"spokestack/internal/config"
	"spokestack/internal/db"
	"spokestack/internal/models"
	"spokestack/internal/seed"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DSN)
	db.AutoMigrate(gdb,
		&models.Organization{},
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.Brief{},
		&models.TimeEntry{},
		&models.RFP{},
		&models.File{},
		&models.AccessPolicy{},
		&models.AccessRule{},
		&models.PolicyAssignment{},
		&models.AuditLog{},
	)

	if err := seed.FirstSetup(gdb); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}
