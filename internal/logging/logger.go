// Package logging configures slog for the service and persists ERROR records.
package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup installs a JSON stdout logger as the slog default. Development runs log at DEBUG.
func Setup(appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}

// AttachDB keeps stdout logging and additionally batches ERROR records into
// system_logs. Call Stop on the returned handler during shutdown.
func AttachDB(stdout slog.Handler, db *gorm.DB) *DBHandler {
	dbHandler := NewDBHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(stdout, dbHandler)))
	return dbHandler
}
