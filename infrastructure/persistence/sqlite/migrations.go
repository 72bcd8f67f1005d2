package sqlite

import (
	"database/sql"
	"time"

	pkgerrors "isometry-backend/pkg/errors"
)

// migration is one step of the schema history. Steps are applied in
// order inside a transaction each; a failed step leaves the recorded
// version at the last completed step.
type migration struct {
	Version     int
	Description string
	Statements  []string
}

// migrations is the full schema history. Append only; never edit an
// applied step.
var migrations = []migration{
	{
		Version:     1,
		Description: "base node and edge tables",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS nodes (
				id             TEXT PRIMARY KEY,
				type           TEXT NOT NULL,
				name           TEXT NOT NULL,
				content        TEXT NOT NULL DEFAULT '',
				latitude       REAL,
				longitude      REAL,
				altitude       REAL,
				created_at     TEXT NOT NULL,
				modified_at    TEXT NOT NULL,
				due_at         TEXT,
				completed_at   TEXT,
				event_start    TEXT,
				event_end      TEXT,
				tags           TEXT NOT NULL DEFAULT '[]',
				folder         TEXT NOT NULL DEFAULT '',
				priority       INTEGER NOT NULL DEFAULT 0,
				importance     INTEGER NOT NULL DEFAULT 0,
				deleted_at     TEXT,
				version        INTEGER NOT NULL DEFAULT 1,
				sync_version   INTEGER NOT NULL DEFAULT 0,
				last_synced_at TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS edges (
				id             TEXT PRIMARY KEY,
				type           TEXT NOT NULL,
				source_id      TEXT NOT NULL,
				target_id      TEXT NOT NULL,
				label          TEXT NOT NULL DEFAULT '',
				weight         REAL NOT NULL DEFAULT 1.0,
				directed       INTEGER NOT NULL DEFAULT 1,
				sequence_order INTEGER,
				properties     TEXT NOT NULL DEFAULT '{}',
				created_at     TEXT NOT NULL,
				modified_at    TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_nodes_type    ON nodes(type)`,
			`CREATE INDEX IF NOT EXISTS idx_nodes_folder  ON nodes(folder)`,
			`CREATE INDEX IF NOT EXISTS idx_nodes_deleted ON nodes(deleted_at)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_source  ON edges(source_id)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_target  ON edges(target_id)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_type    ON edges(type)`,
		},
	},
	{
		Version:     2,
		Description: "composite indexes for typed endpoint queries",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_edges_source_type ON edges(source_id, type)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_target_type ON edges(target_id, type)`,
		},
	},
}

const versionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at  TEXT NOT NULL
)`

// runMigrations brings the database up to the latest schema version.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(versionTable); err != nil {
		return pkgerrors.NewDatabaseError("create version table", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("read schema version", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return pkgerrors.NewDatabaseError("begin migration", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.Statements {
		if _, err := tx.Exec(stmt); err != nil {
			return pkgerrors.Wrapf(err, "migration %d (%s) failed", m.Version, m.Description)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, encodeTime(time.Now()),
	); err != nil {
		return pkgerrors.NewDatabaseError("record schema version", err)
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("commit migration", err)
	}
	return nil
}
