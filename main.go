package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"WA-Order-Bot/cmd/config"
	migration "WA-Order-Bot/cmd/database/migrate"
	"WA-Order-Bot/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	migrateUp := flag.Bool("migrate", false, "apply SQL migrations and exit")
	rollback := flag.Int("rollback", 0, "roll back the given number of migrations and exit")
	autoMigrate := flag.Bool("automigrate", false, "run GORM auto-migration before serving (development only)")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	accessLog, err := utils.InitLogger(cfg)
	if err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}

	switch {
	case *migrateUp:
		if err := migration.Up(cfg.MigrationURL()); err != nil {
			logrus.WithError(err).Fatal("migration failed")
		}
		logrus.Info("migrations applied")
		return
	case *rollback > 0:
		if err := migration.Down(cfg.MigrationURL(), *rollback); err != nil {
			logrus.WithError(err).Fatal("rollback failed")
		}
		logrus.WithField("steps", *rollback).Info("migrations rolled back")
		return
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("database handle unavailable")
	}
	defer sqlDB.Close()

	if *autoMigrate {
		if cfg.IsProduction() {
			logrus.Fatal("auto-migration is disabled in production, use -migrate")
		}
		if err := migration.AutoMigrate(db); err != nil {
			logrus.WithError(err).Fatal("auto-migration failed")
		}
	}

	app, err := config.NewApp(db, cfg, accessLog)
	if err != nil {
		logrus.WithError(err).Fatal("error creating app")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()
	logrus.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.AppEnv}).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	if err := app.Shutdown(shutdownTimeout); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
	logrus.Info("server stopped")
}
