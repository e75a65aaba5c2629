package migration

import (
	"database/sql"
	"embed"

	"github.com/rs/zerolog"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Embed SQL files from the local migrations folder
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

func RunMigrations(dbURL string, logger zerolog.Logger) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()

	// Ensure the app schema exists before running migrations
	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS app"); err != nil {
		logger.Fatal().Err(err).Msg("failed to create schema app")
	}

	// Set the search path to the app schema
	if _, err := db.Exec("SET search_path TO app"); err != nil {
		logger.Fatal().Err(err).Msg("Failed to set search path")
	}

	goose.SetBaseFS(embeddedMigrations)
	goose.SetTableName("app.goose_db_version")

	if err := goose.Up(db, "migrations"); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Info().Msg("Migrations completed successfully")
}
