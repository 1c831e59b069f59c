package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/uc-mcp/internal/common"
)

// SeedFile is the YAML structure of a catalog seed file.
type SeedFile struct {
	Catalogs []SeedCatalog `yaml:"catalogs"`
}

// SeedCatalog is one catalog entry with its nested schemas.
type SeedCatalog struct {
	Name    string       `yaml:"name"`
	Comment string       `yaml:"comment"`
	Owner   string       `yaml:"owner"`
	Schemas []SeedSchema `yaml:"schemas"`
}

// SeedSchema is one schema entry with its tables and functions.
type SeedSchema struct {
	Name      string         `yaml:"name"`
	Comment   string         `yaml:"comment"`
	Owner     string         `yaml:"owner"`
	Tables    []SeedTable    `yaml:"tables"`
	Functions []SeedFunction `yaml:"functions"`
}

// SeedTable is one table entry.
type SeedTable struct {
	Name             string       `yaml:"name"`
	TableType        string       `yaml:"table_type"`
	DataSourceFormat string       `yaml:"data_source_format"`
	Comment          string       `yaml:"comment"`
	Owner            string       `yaml:"owner"`
	StorageLocation  string       `yaml:"storage_location"`
	Columns          []SeedColumn `yaml:"columns"`
}

// SeedColumn is one column entry. Nullable defaults to true when omitted.
type SeedColumn struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable *bool  `yaml:"nullable"`
	Comment  string `yaml:"comment"`
}

// SeedFunction is one function entry.
type SeedFunction struct {
	Name       string `yaml:"name"`
	DataType   string `yaml:"data_type"`
	Comment    string `yaml:"comment"`
	Definition string `yaml:"definition"`
}

// LoadSeed reads and parses a YAML seed file.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Seed writes every entry of seed into store in a single transaction.
// Existing entries with the same names are updated; nothing is deleted.
func Seed(ctx context.Context, store *Store, seed *SeedFile, logger *common.Logger) error {
	if seed == nil {
		return nil
	}

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin seed: %w", err)
	}
	defer tx.Rollback()

	tables := 0
	for _, c := range seed.Catalogs {
		if err := upsertCatalog(ctx, tx, Catalog{Name: c.Name, Comment: c.Comment, Owner: c.Owner}); err != nil {
			return err
		}
		for _, sc := range c.Schemas {
			schema := Schema{CatalogName: c.Name, Name: sc.Name, Comment: sc.Comment, Owner: sc.Owner}
			if err := upsertSchema(ctx, tx, schema); err != nil {
				return err
			}
			for _, t := range sc.Tables {
				if err := upsertTable(ctx, tx, t.toTable(c.Name, sc.Name)); err != nil {
					return err
				}
				tables++
			}
			for _, f := range sc.Functions {
				fn := Function{
					CatalogName: c.Name,
					SchemaName:  sc.Name,
					Name:        f.Name,
					DataType:    f.DataType,
					Comment:     f.Comment,
					Definition:  f.Definition,
				}
				if err := upsertFunction(ctx, tx, fn); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit seed: %w", err)
	}

	logger.Info().
		Int("catalogs", len(seed.Catalogs)).
		Int("tables", tables).
		Msg("catalog seeded")
	return nil
}

// SeedFromFile loads path and seeds store with it.
func SeedFromFile(ctx context.Context, store *Store, path string, logger *common.Logger) error {
	seed, err := LoadSeed(path)
	if err != nil {
		return err
	}
	return Seed(ctx, store, seed, logger)
}

func (t SeedTable) toTable(catalogName, schemaName string) Table {
	out := Table{
		CatalogName:      catalogName,
		SchemaName:       schemaName,
		Name:             t.Name,
		TableType:        t.TableType,
		DataSourceFormat: t.DataSourceFormat,
		Comment:          t.Comment,
		Owner:            t.Owner,
		StorageLocation:  t.StorageLocation,
	}
	for i, c := range t.Columns {
		nullable := true
		if c.Nullable != nil {
			nullable = *c.Nullable
		}
		out.Columns = append(out.Columns, Column{
			Name:     c.Name,
			Position: i,
			TypeName: c.Type,
			Nullable: nullable,
			Comment:  c.Comment,
		})
	}
	return out
}
