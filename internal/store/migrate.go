package store

import (
	"embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one schema change, shipped as a forward/reverse script pair.
// The reverse script fully undoes the forward one so any version can be
// rolled back.
type Migration struct {
	Version  int
	Name     string
	UpFile   string
	DownFile string
}

// Migrations lists every schema change in application order. Versions are
// contiguous starting at 1 and recorded in PRAGMA user_version. The slice
// is fixed at init and must be treated as read-only; the migrate CLI reads
// it to render status.
var Migrations = []Migration{
	{
		Version:  1,
		Name:     "core tables",
		UpFile:   "migrations/0001_core_tables.up.sql",
		DownFile: "migrations/0001_core_tables.down.sql",
	},
	{
		Version:  2,
		Name:     "import runs",
		UpFile:   "migrations/0002_import_runs.up.sql",
		DownFile: "migrations/0002_import_runs.down.sql",
	},
}

// CurrentSchemaVersion is the version a fully migrated database reports.
// Derived from Migrations at init; read-only.
var CurrentSchemaVersion = Migrations[len(Migrations)-1].Version

// SchemaVersion returns the database's applied schema version.
func SchemaVersion(db *sqlx.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending forward scripts. The scripts use existence
// checks throughout, so re-running an already applied migration is a no-op
// rather than an error.
func Migrate(db *sqlx.DB) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range Migrations {
		if m.Version <= version {
			continue
		}
		if err := runScript(db, m.UpFile); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.Version, m.Name, err)
		}
		if err := setVersion(db, m.Version); err != nil {
			return err
		}
		slog.Info("migration applied", "version", m.Version, "name", m.Name)
		version = m.Version
	}

	return nil
}

// MigrateDown rolls the schema back to target by running reverse scripts in
// reverse order. A target of 0 drops everything.
func MigrateDown(db *sqlx.DB, target int) error {
	if target < 0 || target > CurrentSchemaVersion {
		return fmt.Errorf("invalid target version %d", target)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for i := len(Migrations) - 1; i >= 0; i-- {
		m := Migrations[i]
		if m.Version > version || m.Version <= target {
			continue
		}
		if err := runScript(db, m.DownFile); err != nil {
			return fmt.Errorf("roll back v%d (%s): %w", m.Version, m.Name, err)
		}
		if err := setVersion(db, m.Version-1); err != nil {
			return err
		}
		slog.Info("migration rolled back", "version", m.Version, "name", m.Name)
	}

	return nil
}

func runScript(db *sqlx.DB, file string) error {
	script, err := migrationFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := db.Exec(string(script)); err != nil {
		return fmt.Errorf("execute %s: %w", file, err)
	}
	return nil
}

func setVersion(db *sqlx.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version = %d: %w", version, err)
	}
	return nil
}
