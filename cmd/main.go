package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/senyabanana/procurement-service/internal/db"
	"github.com/senyabanana/procurement-service/internal/handlers"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/router"
	"github.com/senyabanana/procurement-service/internal/router/config"
	"github.com/senyabanana/procurement-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const defaultSweepInterval = time.Minute

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	userRepo := repository.NewPostgresUserRepository(dbPool)
	tenderRepo := repository.NewPostgresTenderRepository(dbPool)
	submissionRepo := repository.NewPostgresSubmissionRepository(dbPool)
	notificationRepo := repository.NewPostgresNotificationRepository(dbPool)

	notificationService := services.NewNotificationService(notificationRepo, userRepo, logger, 5*time.Second)
	userService := services.NewUserService(userRepo)
	tenderService := services.NewTenderService(tenderRepo, submissionRepo, userRepo, notificationService, logger)
	submissionService := services.NewSubmissionService(submissionRepo, tenderRepo, userRepo, notificationService, services.NewRandomScorer())

	userHandler := handlers.NewUserHandler(userService, logger, 5*time.Second)
	tenderHandler := handlers.NewTenderHandler(tenderService, logger, 5*time.Second)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, logger, 5*time.Second)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger, 5*time.Second)

	sweeper := services.NewDeadlineSweeper(tenderRepo, submissionRepo, notificationService, sweepInterval(cfg.SweepInterval), logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	routes := router.InitRoutes(userHandler, tenderHandler, submissionHandler, notificationHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func sweepInterval(raw string) time.Duration {
	if raw == "" {
		return defaultSweepInterval
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		log.Printf("invalid SWEEP_INTERVAL %q, using default %s", raw, defaultSweepInterval)
		return defaultSweepInterval
	}
	return interval
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
