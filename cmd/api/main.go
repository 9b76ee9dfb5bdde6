package main

import (
	"fmt"
	"log"

	"spokestack/internal/config"
	"spokestack/internal/db"
	httpserver "spokestack/internal/http"
	"spokestack/internal/models"
	"spokestack/internal/obs"
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

	obs.Init()

	r := httpserver.NewRouter(gdb, cfg.JWTSecret)
	log.Printf("server listening on :%s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
