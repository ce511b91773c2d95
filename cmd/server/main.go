package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"guestlist/impl/auth"
	"guestlist/impl/core"
	"guestlist/internal/config"
	"guestlist/internal/database"
	"guestlist/internal/http-server/api"
	"guestlist/lib/sl"
)

const (
	envLocal    = "local"
	envDev      = "dev"
	envProd     = "prod"
	logFileName = "guestlist.log"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := setupLogger(conf.Env, *logPath)
	logger.Info("starting guestlist", slog.String("config", *configPath), slog.String("env", conf.Env))

	ctx := context.Background()
	db, err := database.NewMongoClient(ctx, conf)
	if err != nil {
		logger.Error("database connection", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close(ctx)
	if err = db.EnsureIndexes(ctx); err != nil {
		logger.Error("database indexes", sl.Err(err))
		os.Exit(1)
	}

	handler := core.New(db, logger)
	handler.SetAuthService(auth.New(db))

	if err = api.New(conf, logger, handler); err != nil {
		logger.Error("api server stopped", sl.Err(err))
		os.Exit(1)
	}
}

func setupLogger(env, path string) *slog.Logger {
	var logger *slog.Logger
	var logFile *os.File
	var err error

	if env != envLocal {
		logPath := logFilePath(path)
		logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("error opening log file: ", err)
		}
		log.Printf("env: %s; log file: %s", env, logPath)
	}

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log.Fatal("invalid environment: ", env)
	}

	return logger
}

func logFilePath(path string) string {
	return filepath.Join(path, logFileName)
}
