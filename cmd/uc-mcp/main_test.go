package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSearchPaths_Deduplicated(t *testing.T) {
	paths := configSearchPaths()

	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		require.NoError(t, err)
		assert.False(t, seen[abs], "duplicate search path %s", p)
		seen[abs] = true
	}
	assert.Contains(t, paths, "config/uc-mcp.toml")
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "uc-mcp version dev"))
}

func TestToolsCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "uc-mcp.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[catalog]
path = "`+filepath.ToSlash(filepath.Join(dir, "catalog.db"))+`"
tool_prefix = "uc_"

[metrics]
enabled = false
`), 0644))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"tools", "--config", cfgPath})

	require.NoError(t, root.Execute())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "get_version"))
	assert.True(t, strings.HasPrefix(lines[1], "uc_list_catalogs"))
}

func TestToolsCommand_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[server]\nport = 99999\n"), 0644))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"tools", "-c", cfgPath})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
