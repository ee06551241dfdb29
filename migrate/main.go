package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"orion-chatbot/config"
	"orion-chatbot/envx"
	"orion-chatbot/migrations"
	"orion-chatbot/platform/db"
	applog "orion-chatbot/platform/logger"
)

func main() {
	dir := flag.String("dir", "", "directory of .sql migrations (defaults to the embedded set)")
	dryRun := flag.Bool("dry-run", false, "list migration files without applying them")
	flag.Parse()

	if err := envx.LoadDotEnvOverrideIfPresent(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	logger := loggerFromEnv()
	slog.SetDefault(logger)

	source := migrations.Source(*dir)
	if *dryRun {
		files, err := migrations.Pending(source)
		if err != nil {
			logger.Error("listing migrations failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migration files", "count", len(files), "files", strings.Join(files, ","))
		return
	}

	dbURL := config.DatabaseURLFromEnv()
	logger.Info("connecting database", "database_url", config.RedactDatabaseURL(dbURL))

	database, err := db.Open(dbURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrations.Run(ctx, database, source, logger); err != nil {
		logger.Error("database migrations failed", "error", err)
		os.Exit(1)
	}

	logger.Info("database migrations completed")
}

func loggerFromEnv() *slog.Logger {
	env := strings.ToLower(getenv("GO_ENV", getenv("APP_ENV", "development")))
	return applog.New(applog.Config{
		Service:     getenv("SERVICE_NAME", "orion-migrate"),
		Environment: env,
		Level:       getenv("LOG_LEVEL", "info"),
		Format:      getenv("LOG_FORMAT", "text"),
		AddSource:   getenvBool("LOG_ADD_SOURCE", false),
		Color:       getenvBool("LOG_COLOR", true),
	})
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return strings.Trim(v, "\"")
}

func getenvBool(key string, fallback bool) bool {
	v := strings.ToLower(getenv(key, ""))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
