package db

import "fmt"

func (d *DB) migrate() error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var version int
	err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	migrations := []func(*DB) error{
		migrateV1,
		migrateV2,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration.
func (d *DB) SchemaVersion() (int, error) {
	var version int
	if err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

func execAll(d *DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			head := stmt
			if len(head) > 50 {
				head = head[:50]
			}
			return fmt.Errorf("executing %q: %w", head, err)
		}
	}
	return nil
}

func migrateV1(d *DB) error {
	return execAll(d, []string{
		`CREATE TABLE auth_tokens (
			source_id TEXT PRIMARY KEY,
			token_data BLOB,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE mod_cache (
			source_id TEXT NOT NULL,
			content_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			class_id INTEGER NOT NULL,
			metadata TEXT NOT NULL,
			cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(source_id, content_id)
		)`,
	})
}

func migrateV2(d *DB) error {
	return execAll(d, []string{
		`CREATE TABLE install_history (
			id TEXT PRIMARY KEY,
			game_dir TEXT NOT NULL,
			content_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			action TEXT NOT NULL,
			file_id INTEGER,
			file_name TEXT,
			error TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_install_history_game ON install_history(game_dir, created_at)`,
	})
}
