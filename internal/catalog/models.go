package catalog

import "strings"

// Catalog is the top level of the three-level namespace.
type Catalog struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// Schema groups tables and functions within a catalog.
type Schema struct {
	CatalogName string `json:"catalog_name"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Comment     string `json:"comment,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// Table describes a table or view. Columns is only populated by GetTable.
type Table struct {
	CatalogName      string   `json:"catalog_name"`
	SchemaName       string   `json:"schema_name"`
	Name             string   `json:"name"`
	FullName         string   `json:"full_name"`
	TableType        string   `json:"table_type,omitempty"`
	DataSourceFormat string   `json:"data_source_format,omitempty"`
	Comment          string   `json:"comment,omitempty"`
	Owner            string   `json:"owner,omitempty"`
	StorageLocation  string   `json:"storage_location,omitempty"`
	Columns          []Column `json:"columns,omitempty"`
}

// Column is one column of a table, ordered by Position.
type Column struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	TypeName string `json:"type_name"`
	Nullable bool   `json:"nullable"`
	Comment  string `json:"comment,omitempty"`
}

// Function is a user-defined function registered in a schema.
type Function struct {
	CatalogName string `json:"catalog_name"`
	SchemaName  string `json:"schema_name"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	DataType    string `json:"data_type,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Definition  string `json:"routine_definition,omitempty"`
}

func fullName(parts ...string) string {
	return strings.Join(parts, ".")
}
