package db

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/careline/migrations"
	"gorm.io/gorm"
)

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)
)

type embeddedMigration struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

// migrator applies the forward-only SQL files of one dialect and records
// each applied version in schema_migrations.
type migrator struct {
	database *gorm.DB
	dialect  string
}

func applyEmbeddedMigrations(database *gorm.DB, dialect string) error {
	return migrator{database: database, dialect: dialect}.run()
}

func (m migrator) run() error {
	if err := m.ensureVersionTable(); err != nil {
		return err
	}
	pending, err := loadEmbeddedMigrations(m.dialect)
	if err != nil {
		return err
	}
	applied, err := m.appliedVersions()
	if err != nil {
		return err
	}

	for _, migration := range pending {
		if _, done := applied[migration.Version]; done {
			continue
		}
		if err := m.apply(migration); err != nil {
			return err
		}
	}
	return nil
}

func (m migrator) ensureVersionTable() error {
	appliedAtType := "DATETIME"
	if m.dialect == DriverPostgres {
		appliedAtType = "TIMESTAMPTZ"
	}
	statement := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, appliedAtType)
	if err := m.database.Exec(statement).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (m migrator) appliedVersions() (map[string]struct{}, error) {
	var versions []string
	if err := m.database.Raw(`SELECT version FROM schema_migrations`).Scan(&versions).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}

	applied := make(map[string]struct{}, len(versions))
	for _, version := range versions {
		applied[version] = struct{}{}
	}
	return applied, nil
}

// apply runs one file inside a transaction. ALTER TABLE ... ADD COLUMN
// statements are skipped when the column is already there, so databases
// created from an older model snapshot can still be upgraded.
func (m migrator) apply(migration embeddedMigration) error {
	statements := splitSQLStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s: %w", migration.Name, errors.New("no SQL statements"))
	}

	return m.database.Transaction(func(tx *gorm.DB) error {
		scoped := migrator{database: tx, dialect: m.dialect}
		for _, statement := range statements {
			present, err := scoped.addsExistingColumn(statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if present {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`,
			migration.Version,
			migration.Name,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

func (m migrator) addsExistingColumn(statement string) (bool, error) {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if len(matches) != 3 {
		return false, nil
	}
	return m.columnExists(unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
}

func (m migrator) columnExists(table string, column string) (bool, error) {
	if m.dialect == DriverPostgres {
		var count int64
		if err := m.database.Raw(
			`SELECT COUNT(*) FROM information_schema.columns WHERE table_name = ? AND column_name = ?`,
			table,
			column,
		).Scan(&count).Error; err != nil {
			return false, fmt.Errorf("load columns for %s: %w", table, err)
		}
		return count > 0, nil
	}

	var names []string
	query := fmt.Sprintf(`SELECT name FROM pragma_table_info('%s')`, strings.ReplaceAll(table, `'`, `''`))
	if err := m.database.Raw(query).Scan(&names).Error; err != nil {
		return false, fmt.Errorf("load table_info for %s: %w", table, err)
	}
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			return true, nil
		}
	}
	return false, nil
}

// loadEmbeddedMigrations returns the dialect's migration files ordered by
// their numeric prefix.
func loadEmbeddedMigrations(dialect string) ([]embeddedMigration, error) {
	entries, err := fs.ReadDir(embeddedmigrations.Files, dialect)
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations for %s: %w", dialect, err)
	}

	migrations := make([]embeddedMigration, 0, len(entries))
	byVersion := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(name)
		if entry.IsDir() || len(matches) != 2 {
			continue
		}

		version := matches[1]
		if previous, duplicate := byVersion[version]; duplicate {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		byVersion[version] = name

		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}
		body, err := fs.ReadFile(embeddedmigrations.Files, path.Join(dialect, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		migrations = append(migrations, embeddedMigration{Version: version, Order: order, Name: name, SQL: string(body)})
	}

	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

func splitSQLStatements(sqlText string) []string {
	var statements []string
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
