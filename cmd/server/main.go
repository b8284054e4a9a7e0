package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chipin-app/chipin-backend/internal/auth"
	"github.com/chipin-app/chipin-backend/internal/config"
	"github.com/chipin-app/chipin-backend/internal/router"
	"github.com/chipin-app/chipin-backend/internal/storage/sqlite"
	"github.com/chipin-app/chipin-backend/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT secret is not configured; set jwt.secret or CHIPIN_JWT_SECRET")
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)

	r := router.Setup(cfg, store, jwtManager)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	slog.Info("Server starting", "address", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
