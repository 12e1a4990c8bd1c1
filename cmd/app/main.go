package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"escrow/cmd"
	"escrow/internal/adapters/out/postgres"
	"escrow/internal/pkg/logging"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
	configs, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closer := logging.Setup(logging.Options{
		Service:    "escrow",
		Env:        configs.Env,
		Level:      configs.LogLevel,
		File:       configs.LogFile,
		MaxSizeMB:  configs.LogMaxSizeMB,
		MaxAgeDays: configs.LogMaxAgeDays,
		MaxBackups: configs.LogMaxBackups,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, configs, logger)
	stop()
	if err != nil {
		logger.Error("Service stopped with error", "error", err)
	}
	_ = closer.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	gormDB, err := openDatabase(configs)
	if err != nil {
		return err
	}
	if err = postgres.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		return err
	}
	e, err := app.CreateHTTPServer(ctx)
	if err != nil {
		return err
	}
	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
		logger.Info("HTTP server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if configs.DBDriver == cmd.DriverPostgres {
		listener := postgres.NewOutboxListener(configs.PostgresDSN(), logger)
		g.Go(func() error {
			return listener.Run(ctx, app.EventRelay().Trigger)
		})
	}

	return g.Wait()
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch configs.DBDriver {
	case cmd.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(configs.SQLitePath), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Row locks are emulated by serialising every statement through one connection.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		db, err := gorm.Open(gorm_postgres.Open(configs.PostgresDSN()), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
}
