package handler

import (
	"encoding/json"
	"net/http"

	"github.com/crownfall/farm-coordinator/internal/http/response"
	"github.com/crownfall/farm-coordinator/internal/observability"
	"github.com/crownfall/farm-coordinator/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.settings.ServiceEnabled(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]bool{"enabled": enabled})
}

func (h *SettingsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	if err := h.settings.SetServiceEnabled(r.Context(), body.Enabled); err != nil {
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "settings.status", "enabled", body.Enabled)
	response.JSON(w, r, http.StatusOK, map[string]bool{"enabled": body.Enabled})
}

func (h *SettingsHandler) GetServer(w http.ResponseWriter, r *http.Request) {
	name, err := h.settings.MatchmakingServer(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"server": name})
}

func (h *SettingsHandler) SetServer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Server string `json:"server"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Server == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "server is required")
		return
	}
	if err := h.settings.SetMatchmakingServer(r.Context(), body.Server); err != nil {
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "settings.server", "server", body.Server)
	response.JSON(w, r, http.StatusOK, map[string]string{"server": body.Server})
}
