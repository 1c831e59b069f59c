// Package catalog stores data catalog metadata (catalogs, schemas, tables,
// columns and functions) in SQLite and exposes it as read-only tools.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS catalogs (
	name TEXT PRIMARY KEY,
	comment TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS schemas (
	catalog_name TEXT NOT NULL REFERENCES catalogs(name) ON DELETE CASCADE,
	name TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (catalog_name, name)
);
CREATE TABLE IF NOT EXISTS tables (
	catalog_name TEXT NOT NULL,
	schema_name TEXT NOT NULL,
	name TEXT NOT NULL,
	table_type TEXT NOT NULL DEFAULT '',
	data_source_format TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	storage_location TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (catalog_name, schema_name, name),
	FOREIGN KEY (catalog_name, schema_name) REFERENCES schemas(catalog_name, name) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS columns (
	catalog_name TEXT NOT NULL,
	schema_name TEXT NOT NULL,
	table_name TEXT NOT NULL,
	name TEXT NOT NULL,
	position INTEGER NOT NULL,
	type_name TEXT NOT NULL,
	nullable INTEGER NOT NULL DEFAULT 1,
	comment TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (catalog_name, schema_name, table_name, name),
	FOREIGN KEY (catalog_name, schema_name, table_name) REFERENCES tables(catalog_name, schema_name, name) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS functions (
	catalog_name TEXT NOT NULL,
	schema_name TEXT NOT NULL,
	name TEXT NOT NULL,
	data_type TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	definition TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (catalog_name, schema_name, name),
	FOREIGN KEY (catalog_name, schema_name) REFERENCES schemas(catalog_name, name) ON DELETE CASCADE
);`

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

var (
	// ErrNotFound is returned when a catalog, schema or table does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for a malformed three-part name.
	ErrInvalidName = errors.New("invalid name")
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store persists catalog metadata in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog: sqlite path is required")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("catalog: create data directory: %w", err)
			}
		}
	}

	// foreign_keys is a per-connection pragma, so it goes in the DSN.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("catalog: sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: sqlite set WAL mode: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: sqlite create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListCatalogs returns all catalogs ordered by name.
func (s *Store) ListCatalogs(ctx context.Context) ([]Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, comment, owner FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list catalogs: %w", err)
	}
	defer rows.Close()

	out := []Catalog{}
	for rows.Next() {
		var c Catalog
		if err := rows.Scan(&c.Name, &c.Comment, &c.Owner); err != nil {
			return nil, fmt.Errorf("catalog: scan catalog: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListSchemas returns the schemas of catalogName ordered by name.
func (s *Store) ListSchemas(ctx context.Context, catalogName string) ([]Schema, error) {
	if err := s.requireCatalog(ctx, catalogName); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT catalog_name, name, comment, owner
FROM schemas
WHERE catalog_name = ?
ORDER BY name`, catalogName)
	if err != nil {
		return nil, fmt.Errorf("catalog: list schemas: %w", err)
	}
	defer rows.Close()

	out := []Schema{}
	for rows.Next() {
		var sc Schema
		if err := rows.Scan(&sc.CatalogName, &sc.Name, &sc.Comment, &sc.Owner); err != nil {
			return nil, fmt.Errorf("catalog: scan schema: %w", err)
		}
		sc.FullName = fullName(sc.CatalogName, sc.Name)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ListTables returns the tables of a schema ordered by name, without columns.
func (s *Store) ListTables(ctx context.Context, catalogName, schemaName string) ([]Table, error) {
	if err := s.requireSchema(ctx, catalogName, schemaName); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT catalog_name, schema_name, name, table_type, data_source_format, comment, owner, storage_location
FROM tables
WHERE catalog_name = ? AND schema_name = ?
ORDER BY name`, catalogName, schemaName)
	if err != nil {
		return nil, fmt.Errorf("catalog: list tables: %w", err)
	}
	defer rows.Close()
	return scanTables(rows)
}

// GetTable returns the table named catalog.schema.table with its columns.
func (s *Store) GetTable(ctx context.Context, name string) (Table, error) {
	parts, err := splitFullName(name, 3)
	if err != nil {
		return Table{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT catalog_name, schema_name, name, table_type, data_source_format, comment, owner, storage_location
FROM tables
WHERE catalog_name = ? AND schema_name = ? AND name = ?`, parts[0], parts[1], parts[2])
	if err != nil {
		return Table{}, fmt.Errorf("catalog: get table: %w", err)
	}
	tables, err := scanTables(rows)
	rows.Close()
	if err != nil {
		return Table{}, err
	}
	if len(tables) == 0 {
		return Table{}, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}
	t := tables[0]

	colRows, err := s.db.QueryContext(ctx, `
SELECT name, position, type_name, nullable, comment
FROM columns
WHERE catalog_name = ? AND schema_name = ? AND table_name = ?
ORDER BY position`, parts[0], parts[1], parts[2])
	if err != nil {
		return Table{}, fmt.Errorf("catalog: get columns: %w", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var c Column
		if err := colRows.Scan(&c.Name, &c.Position, &c.TypeName, &c.Nullable, &c.Comment); err != nil {
			return Table{}, fmt.Errorf("catalog: scan column: %w", err)
		}
		t.Columns = append(t.Columns, c)
	}
	return t, colRows.Err()
}

// ListFunctions returns the functions of a schema ordered by name.
func (s *Store) ListFunctions(ctx context.Context, catalogName, schemaName string) ([]Function, error) {
	if err := s.requireSchema(ctx, catalogName, schemaName); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT catalog_name, schema_name, name, data_type, comment, definition
FROM functions
WHERE catalog_name = ? AND schema_name = ?
ORDER BY name`, catalogName, schemaName)
	if err != nil {
		return nil, fmt.Errorf("catalog: list functions: %w", err)
	}
	defer rows.Close()

	out := []Function{}
	for rows.Next() {
		var f Function
		if err := rows.Scan(&f.CatalogName, &f.SchemaName, &f.Name, &f.DataType, &f.Comment, &f.Definition); err != nil {
			return nil, fmt.Errorf("catalog: scan function: %w", err)
		}
		f.FullName = fullName(f.CatalogName, f.SchemaName, f.Name)
		out = append(out, f)
	}
	return out, rows.Err()
}

// SearchTables matches query case-insensitively against table names and
// comments across all catalogs. limit <= 0 uses the default; it is capped.
func (s *Store) SearchTables(ctx context.Context, query string, limit int) ([]Table, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx, `
SELECT catalog_name, schema_name, name, table_type, data_source_format, comment, owner, storage_location
FROM tables
WHERE lower(name) LIKE ? ESCAPE '\' OR lower(comment) LIKE ? ESCAPE '\'
ORDER BY catalog_name, schema_name, name
LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search tables: %w", err)
	}
	defer rows.Close()
	return scanTables(rows)
}

// UpsertCatalog inserts or replaces a catalog.
func (s *Store) UpsertCatalog(ctx context.Context, c Catalog) error {
	return upsertCatalog(ctx, s.db, c)
}

// UpsertSchema inserts or replaces a schema. The catalog must exist.
func (s *Store) UpsertSchema(ctx context.Context, sc Schema) error {
	return upsertSchema(ctx, s.db, sc)
}

// UpsertTable inserts or replaces a table and replaces its columns.
func (s *Store) UpsertTable(ctx context.Context, t Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin: %w", err)
	}
	if err := upsertTable(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpsertFunction inserts or replaces a function. The schema must exist.
func (s *Store) UpsertFunction(ctx context.Context, f Function) error {
	return upsertFunction(ctx, s.db, f)
}

func upsertCatalog(ctx context.Context, db execer, c Catalog) error {
	if c.Name == "" {
		return fmt.Errorf("catalog name: %w", ErrInvalidName)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO catalogs (name, comment, owner) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET comment = excluded.comment, owner = excluded.owner`,
		c.Name, c.Comment, c.Owner)
	if err != nil {
		return fmt.Errorf("catalog: upsert catalog %s: %w", c.Name, err)
	}
	return nil
}

func upsertSchema(ctx context.Context, db execer, sc Schema) error {
	if sc.CatalogName == "" || sc.Name == "" {
		return fmt.Errorf("schema name: %w", ErrInvalidName)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO schemas (catalog_name, name, comment, owner) VALUES (?, ?, ?, ?)
ON CONFLICT(catalog_name, name) DO UPDATE SET comment = excluded.comment, owner = excluded.owner`,
		sc.CatalogName, sc.Name, sc.Comment, sc.Owner)
	if err != nil {
		return fmt.Errorf("catalog: upsert schema %s.%s: %w", sc.CatalogName, sc.Name, err)
	}
	return nil
}

func upsertTable(ctx context.Context, db execer, t Table) error {
	if t.CatalogName == "" || t.SchemaName == "" || t.Name == "" {
		return fmt.Errorf("table name: %w", ErrInvalidName)
	}
	name := fullName(t.CatalogName, t.SchemaName, t.Name)
	_, err := db.ExecContext(ctx, `
INSERT INTO tables (catalog_name, schema_name, name, table_type, data_source_format, comment, owner, storage_location)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(catalog_name, schema_name, name) DO UPDATE SET
	table_type = excluded.table_type,
	data_source_format = excluded.data_source_format,
	comment = excluded.comment,
	owner = excluded.owner,
	storage_location = excluded.storage_location`,
		t.CatalogName, t.SchemaName, t.Name, t.TableType, t.DataSourceFormat, t.Comment, t.Owner, t.StorageLocation)
	if err != nil {
		return fmt.Errorf("catalog: upsert table %s: %w", name, err)
	}

	if _, err := db.ExecContext(ctx, `
DELETE FROM columns WHERE catalog_name = ? AND schema_name = ? AND table_name = ?`,
		t.CatalogName, t.SchemaName, t.Name); err != nil {
		return fmt.Errorf("catalog: clear columns of %s: %w", name, err)
	}
	for i, c := range t.Columns {
		pos := c.Position
		if pos == 0 {
			pos = i
		}
		_, err := db.ExecContext(ctx, `
INSERT INTO columns (catalog_name, schema_name, table_name, name, position, type_name, nullable, comment)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.CatalogName, t.SchemaName, t.Name, c.Name, pos, c.TypeName, c.Nullable, c.Comment)
		if err != nil {
			return fmt.Errorf("catalog: insert column %s.%s: %w", name, c.Name, err)
		}
	}
	return nil
}

func upsertFunction(ctx context.Context, db execer, f Function) error {
	if f.CatalogName == "" || f.SchemaName == "" || f.Name == "" {
		return fmt.Errorf("function name: %w", ErrInvalidName)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO functions (catalog_name, schema_name, name, data_type, comment, definition)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(catalog_name, schema_name, name) DO UPDATE SET
	data_type = excluded.data_type,
	comment = excluded.comment,
	definition = excluded.definition`,
		f.CatalogName, f.SchemaName, f.Name, f.DataType, f.Comment, f.Definition)
	if err != nil {
		return fmt.Errorf("catalog: upsert function %s.%s.%s: %w", f.CatalogName, f.SchemaName, f.Name, err)
	}
	return nil
}

func (s *Store) requireCatalog(ctx context.Context, catalogName string) error {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalogs WHERE name = ?`, catalogName).Scan(&n)
	if err != nil {
		return fmt.Errorf("catalog: lookup catalog: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("catalog %q: %w", catalogName, ErrNotFound)
	}
	return nil
}

func (s *Store) requireSchema(ctx context.Context, catalogName, schemaName string) error {
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM schemas WHERE catalog_name = ? AND name = ?`, catalogName, schemaName).Scan(&n)
	if err != nil {
		return fmt.Errorf("catalog: lookup schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schema %q: %w", fullName(catalogName, schemaName), ErrNotFound)
	}
	return nil
}

func scanTables(rows *sql.Rows) ([]Table, error) {
	out := []Table{}
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.CatalogName, &t.SchemaName, &t.Name, &t.TableType,
			&t.DataSourceFormat, &t.Comment, &t.Owner, &t.StorageLocation); err != nil {
			return nil, fmt.Errorf("catalog: scan table: %w", err)
		}
		t.FullName = fullName(t.CatalogName, t.SchemaName, t.Name)
		out = append(out, t)
	}
	return out, rows.Err()
}

// splitFullName splits a dotted name into exactly n non-empty parts.
func splitFullName(name string, n int) ([]string, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) != n {
		return nil, fmt.Errorf("%q must have %d dot-separated parts: %w", name, n, ErrInvalidName)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%q has an empty part: %w", name, ErrInvalidName)
		}
	}
	return parts, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
