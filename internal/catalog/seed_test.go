package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/uc-mcp/internal/common"
)

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed("testdata/seed.yaml")
	require.NoError(t, err)

	require.Len(t, seed.Catalogs, 2)
	primary := seed.Catalogs[0]
	assert.Equal(t, "main", primary.Name)
	require.Len(t, primary.Schemas, 2)
	require.Len(t, primary.Schemas[0].Tables, 2)
	orderID := primary.Schemas[0].Tables[0].Columns[0]
	require.NotNil(t, orderID.Nullable)
	assert.False(t, *orderID.Nullable)
	assert.Nil(t, primary.Schemas[0].Tables[0].Columns[1].Nullable)
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("catalogs: [\n  - name: x\n  bad"), 0644))
	_, err = LoadSeed(bad)
	assert.Error(t, err)
}

func TestSeed_IsIdempotent(t *testing.T) {
	store := newSeededStore(t)

	require.NoError(t, SeedFromFile(context.Background(), store, "testdata/seed.yaml", common.NewSilentLogger()))

	tables, err := store.ListTables(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestSeed_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)

	seed := &SeedFile{Catalogs: []SeedCatalog{
		{Name: "good"},
		{Name: "broken", Schemas: []SeedSchema{{Name: ""}}},
	}}
	err := Seed(context.Background(), store, seed, common.NewSilentLogger())
	require.Error(t, err)

	catalogs, err := store.ListCatalogs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalogs, "partial seed must not be committed")
}

func TestSeed_Nil(t *testing.T) {
	assert.NoError(t, Seed(context.Background(), newTestStore(t), nil, common.NewSilentLogger()))
}
