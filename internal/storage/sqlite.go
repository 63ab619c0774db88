// Package storage provides SQLite-based persistence for the preset catalog.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
// The catalog is a queryable index of loaded content, not a second source
// of truth: live presets always come from the content library.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/contentforge/internal/content"
)

// Store manages the SQLite database connection for the preset catalog.
type Store struct {
	db *sql.DB
}

// PackageRow is one indexed content package.
type PackageRow struct {
	Name         string
	FriendlyName string
	Author       string
	Description  string
	Version      int
	PresetCount  int
	IndexedAt    time.Time
}

// PresetRow is one indexed preset.
type PresetRow struct {
	Package      string
	Class        string
	Name         string
	Groups       []string
	SourceFile   string
	RandomWeight int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS packages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			friendly_name TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 0,
			preset_count INTEGER NOT NULL DEFAULT 0,
			indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS presets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			package TEXT NOT NULL,
			class TEXT NOT NULL,
			name TEXT NOT NULL,
			groups TEXT NOT NULL DEFAULT '',
			source_file TEXT NOT NULL DEFAULT '',
			random_weight INTEGER NOT NULL DEFAULT 100
		);
		CREATE INDEX IF NOT EXISTS idx_presets_package ON presets(package);
		CREATE INDEX IF NOT EXISTS idx_presets_class ON presets(class);
		CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IndexPackage replaces the catalog rows for one loaded package with its
// current contents.
func (s *Store) IndexPackage(p *content.Package) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM packages WHERE name = ?", p.FileName()); err != nil {
		return fmt.Errorf("storage: cannot clear package row: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM presets WHERE package = ?", p.FileName()); err != nil {
		return fmt.Errorf("storage: cannot clear preset rows: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO packages (name, friendly_name, author, description, version, preset_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.FileName(), p.FriendlyName(), p.Author(), p.Description(), p.Version(), p.PresetCount(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot insert package row: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO presets (package, class, name, groups, source_file, random_weight)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare preset insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range p.PresetEntries() {
		e := entry.Preset
		_, err := stmt.Exec(
			p.FileName(),
			e.Class().Name(),
			e.PresetName(),
			joinGroups(e.Groups()),
			entry.Source,
			e.RandomWeight(),
		)
		if err != nil {
			return fmt.Errorf("storage: cannot insert preset row: %w", err)
		}
	}

	return tx.Commit()
}

// Packages retrieves every indexed package, ordered by name.
func (s *Store) Packages() ([]PackageRow, error) {
	rows, err := s.db.Query(
		`SELECT name, friendly_name, author, description, version, preset_count, indexed_at
		 FROM packages
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query packages: %w", err)
	}
	defer rows.Close()

	var entries []PackageRow
	for rows.Next() {
		var row PackageRow
		var indexedAt any
		if err := rows.Scan(&row.Name, &row.FriendlyName, &row.Author, &row.Description,
			&row.Version, &row.PresetCount, &indexedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		row.IndexedAt = parseTime(indexedAt)
		entries = append(entries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// PresetsByClass retrieves the indexed presets of one class, across every
// package, ordered by package then name. An empty class matches all.
func (s *Store) PresetsByClass(class string) ([]PresetRow, error) {
	query := `SELECT package, class, name, groups, source_file, random_weight
		 FROM presets`
	args := []any{}
	if class != "" {
		query += " WHERE class = ?"
		args = append(args, class)
	}
	query += " ORDER BY package, name"
	return s.queryPresets(query, args...)
}

// PresetsByGroup retrieves the indexed presets tagged with a group.
func (s *Store) PresetsByGroup(group string) ([]PresetRow, error) {
	return s.queryPresets(
		`SELECT package, class, name, groups, source_file, random_weight
		 FROM presets
		 WHERE groups LIKE ?
		 ORDER BY package, name`,
		"%,"+group+",%",
	)
}

// PresetsByPackage retrieves the indexed presets of one package in
// insertion order.
func (s *Store) PresetsByPackage(pkg string) ([]PresetRow, error) {
	return s.queryPresets(
		`SELECT package, class, name, groups, source_file, random_weight
		 FROM presets
		 WHERE package = ?
		 ORDER BY id`,
		pkg,
	)
}

// SearchPresets retrieves presets whose name contains the term.
func (s *Store) SearchPresets(term string) ([]PresetRow, error) {
	return s.queryPresets(
		`SELECT package, class, name, groups, source_file, random_weight
		 FROM presets
		 WHERE name LIKE ?
		 ORDER BY package, name`,
		"%"+term+"%",
	)
}

func (s *Store) queryPresets(query string, args ...any) ([]PresetRow, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query presets: %w", err)
	}
	defer rows.Close()

	var entries []PresetRow
	for rows.Next() {
		var row PresetRow
		var groups string
		if err := rows.Scan(&row.Package, &row.Class, &row.Name, &groups,
			&row.SourceFile, &row.RandomWeight); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		row.Groups = splitGroups(groups)
		entries = append(entries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// joinGroups stores group sets with sentinel commas on both ends so a LIKE
// probe for ",group," matches whole names only.
func joinGroups(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return "," + strings.Join(groups, ",") + ","
}

func splitGroups(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parseTime handles the datetime both as time.Time and as string,
// depending on how the driver returns it.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
