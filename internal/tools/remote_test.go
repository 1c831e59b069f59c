package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/uc-mcp/internal/auth"
	"github.com/bobmcallan/uc-mcp/internal/common"
	"github.com/bobmcallan/uc-mcp/internal/config"
)

type capturedRequest struct {
	method string
	uri    string
	email  string
	body   map[string]any
}

func newUpstream(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.uri = r.URL.RequestURI()
		captured.email = r.Header.Get(auth.HeaderForwardedEmail)
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			json.Unmarshal(b, &captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func tableTool(client *RemoteClient) *RemoteTool {
	return NewRemoteTool(config.RemoteToolConfig{
		Name:        "get_table_lineage",
		Title:       "Table lineage",
		Description: "Lineage for a table",
		Method:      "GET",
		Path:        "/api/lineage/{table}",
		ReadOnly:    true,
		Params: []config.RemoteParamConfig{
			{Name: "table", Type: "string", In: "path", Required: true},
			{Name: "depth", Type: "number", In: "query"},
		},
	}, client)
}

func TestRemoteTool_PathAndQuery(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusOK, `{"edges":[]}`)
	tool := tableTool(NewRemoteClient(srv.URL, 5*time.Second, common.NewSilentLogger()))

	res, err := tool.Invoke(context.Background(), map[string]any{"table": "main.sales/orders", "depth": 2})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, http.MethodGet, captured.method)
	assert.Equal(t, "/api/lineage/main.sales%2Forders?depth=2", captured.uri)
	assert.Equal(t, `{"edges":[]}`, resultText(t, res))
}

func TestRemoteTool_MissingRequiredParam(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusOK, `{}`)
	tool := tableTool(NewRemoteClient(srv.URL, 5*time.Second, common.NewSilentLogger()))

	res, err := tool.Invoke(context.Background(), map[string]any{})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: table parameter is required", resultText(t, res))
	assert.Empty(t, captured.method, "upstream must not be called")
}

func TestRemoteTool_BodyAndIdentityForwarding(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusOK, `{"rows":1}`)
	tool := NewRemoteTool(config.RemoteToolConfig{
		Name:   "run_query",
		Method: "post",
		Path:   "/api/queries",
		Params: []config.RemoteParamConfig{
			{Name: "sql", Type: "string", In: "body", Required: true},
		},
	}, NewRemoteClient(srv.URL+"/", 5*time.Second, common.NewSilentLogger()))

	ctx := auth.WithIdentity(context.Background(), auth.Identity{
		Label:  "analyst@example.com",
		Method: auth.MethodForwardedEmail,
	})
	res, err := tool.Invoke(ctx, map[string]any{"sql": "SELECT 1"})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/api/queries", captured.uri)
	assert.Equal(t, "analyst@example.com", captured.email)
	assert.Equal(t, "SELECT 1", captured.body["sql"])
}

func TestRemoteTool_UpstreamErrorBecomesToolError(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusNotFound, `{"detail":"table not found"}`)
	tool := tableTool(NewRemoteClient(srv.URL, 5*time.Second, common.NewSilentLogger()))

	res, err := tool.Invoke(context.Background(), map[string]any{"table": "main.missing"})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: table not found", resultText(t, res))
}

func TestRemoteTool_Annotations(t *testing.T) {
	tool := tableTool(nil)
	ann := tool.Annotations()

	assert.Equal(t, "Table lineage", ann.Title)
	require.NotNil(t, ann.ReadOnlyHint)
	assert.True(t, *ann.ReadOnlyHint)
	require.NotNil(t, ann.DestructiveHint)
	assert.False(t, *ann.DestructiveHint)
}

func TestRemoteSchema(t *testing.T) {
	var schema struct {
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	raw := remoteSchema([]config.RemoteParamConfig{
		{Name: "table", Type: "string", Required: true, Description: "Full table name"},
		{Name: "depth", Type: "number"},
		{Name: "columns", Type: "array"},
	})
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Equal(t, []string{"table"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["table"]["type"])
	assert.Equal(t, "Full table name", schema.Properties["table"]["description"])
	assert.Equal(t, "number", schema.Properties["depth"]["type"])
	assert.Equal(t, "array", schema.Properties["columns"]["type"])
}

func TestNewRemoteTools_NoneConfigured(t *testing.T) {
	assert.Nil(t, NewRemoteTools(config.NewDefaultConfig(), common.NewSilentLogger()))
}
