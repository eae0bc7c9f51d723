package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/logger"
	"github.com/Brahim-Amzil/3arida-sub004/backend/migrations"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-steps n] up|down|version")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, "migrate")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	switch flag.Arg(0) {
	case "up":
		if err := migrations.Up(cfg.Postgres.DSN); err != nil {
			log.Fatal("migrate up", zap.Error(err))
		}
		log.Info("migrations applied")
	case "down":
		if err := migrations.Down(cfg.Postgres.DSN, *steps); err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}
		log.Info("migrations rolled back", zap.Int("steps", *steps))
	case "version":
		version, dirty, err := migrations.Version(cfg.Postgres.DSN)
		if err != nil {
			log.Fatal("migrate version", zap.Error(err))
		}
		log.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		flag.Usage()
		os.Exit(2)
	}
}
