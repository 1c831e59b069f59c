package handlers

import (
	"net/http"

	"github.com/bobmcallan/uc-mcp/internal/common"
	"github.com/bobmcallan/uc-mcp/internal/config"
)

// VersionHandler handles version information requests.
type VersionHandler struct {
	name   string
	logger *common.Logger
}

// NewVersionHandler creates a new version handler reporting name.
func NewVersionHandler(name string, logger *common.Logger) *VersionHandler {
	return &VersionHandler{name: name, logger: logger}
}

// ServeHTTP handles GET /api/version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, config.GetVersionInfo(h.name))
}
