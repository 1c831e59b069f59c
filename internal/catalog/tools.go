package catalog

import (
	"context"

	"github.com/bobmcallan/uc-mcp/internal/tools"
)

type listSchemasArgs struct {
	CatalogName string `json:"catalog_name" jsonschema_description:"Name of the catalog"`
}

type schemaArgs struct {
	CatalogName string `json:"catalog_name" jsonschema_description:"Name of the catalog"`
	SchemaName  string `json:"schema_name" jsonschema_description:"Name of the schema within the catalog"`
}

type getTableArgs struct {
	FullName string `json:"full_name" jsonschema_description:"Three-part table name: catalog.schema.table"`
}

type searchTablesArgs struct {
	Query string `json:"query" jsonschema_description:"Text matched against table names and comments"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results (default 50, max 200)"`
}

// NewTools returns the read-only catalog tools backed by store. Each name is
// prefixed with prefix, which may be empty.
func NewTools(store *Store, prefix string) []tools.Tool {
	return []tools.Tool{
		tools.NewTypedTool(prefix+"list_catalogs",
			"List all catalogs in the metastore.",
			tools.ReadOnlyAnnotations("List catalogs"),
			func(ctx context.Context, _ tools.NoArgs) (any, error) {
				catalogs, err := store.ListCatalogs(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"catalogs": catalogs}, nil
			},
		),
		tools.NewTypedTool(prefix+"list_schemas",
			"List the schemas in a catalog.",
			tools.ReadOnlyAnnotations("List schemas"),
			func(ctx context.Context, args listSchemasArgs) (any, error) {
				schemas, err := store.ListSchemas(ctx, args.CatalogName)
				if err != nil {
					return nil, err
				}
				return map[string]any{"schemas": schemas}, nil
			},
		),
		tools.NewTypedTool(prefix+"list_tables",
			"List the tables in a schema. Columns are not included; use get_table for details.",
			tools.ReadOnlyAnnotations("List tables"),
			func(ctx context.Context, args schemaArgs) (any, error) {
				tables, err := store.ListTables(ctx, args.CatalogName, args.SchemaName)
				if err != nil {
					return nil, err
				}
				return map[string]any{"tables": tables}, nil
			},
		),
		tools.NewTypedTool(prefix+"get_table",
			"Get a table by its three-part name, including its columns.",
			tools.ReadOnlyAnnotations("Get table"),
			func(ctx context.Context, args getTableArgs) (any, error) {
				return store.GetTable(ctx, args.FullName)
			},
		),
		tools.NewTypedTool(prefix+"list_functions",
			"List the functions in a schema.",
			tools.ReadOnlyAnnotations("List functions"),
			func(ctx context.Context, args schemaArgs) (any, error) {
				functions, err := store.ListFunctions(ctx, args.CatalogName, args.SchemaName)
				if err != nil {
					return nil, err
				}
				return map[string]any{"functions": functions}, nil
			},
		),
		tools.NewTypedTool(prefix+"search_tables",
			"Search tables across all catalogs by name or comment.",
			tools.ReadOnlyAnnotations("Search tables"),
			func(ctx context.Context, args searchTablesArgs) (any, error) {
				tables, err := store.SearchTables(ctx, args.Query, args.Limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"tables": tables, "count": len(tables)}, nil
			},
		),
	}
}
