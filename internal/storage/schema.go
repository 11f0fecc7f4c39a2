package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createSortedFilesTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Debug("Cache schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations brings an existing database up to currentSchemaVersion
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	switch {
	case version == currentSchemaVersion:
		return nil
	case version > currentSchemaVersion:
		return fmt.Errorf("cache schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	// The cache holds nothing that can't be recomputed: rebuild it.
	db.logger.Info("Rebuilding cache database",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("DROP TABLE IF EXISTS sorted_files"); err != nil {
			return err
		}
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createSortedFilesTable(tx); err != nil {
			return err
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createSortedFilesTable creates the sorted_files table: one row per file
// last seen sorted, keyed by root-relative path.
func createSortedFilesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS sorted_files (
			path TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sorted_files table: %w", err)
	}

	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_sorted_files_updated_at ON sorted_files(updated_at)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}
