package server

import (
	"net/http"

	"github.com/bobmcallan/uc-mcp/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Unauthenticated
	mux.Handle("/", s.app.RootHandler)
	mux.Handle("/health", s.app.HealthHandler)
	mux.Handle("/api/version", s.app.VersionHandler)
	if s.app.Metrics != nil {
		mux.Handle("/metrics", s.app.Metrics.Handler())
	}

	// MCP endpoint, gated by the authenticator. Both the bare mount path and
	// anything below it reach the adapter.
	mcpHandler := s.app.Authenticator.Middleware(s.app.Adapter)
	mount := s.app.Config.MCP.MountPath
	mux.Handle(mount, mcpHandler)
	mux.Handle(mount+"/", mcpHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "Not Found")
}
