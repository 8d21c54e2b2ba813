package handler

import (
	"encoding/json"
	"net/http"

	"github.com/crownfall/farm-coordinator/internal/http/response"
	"github.com/crownfall/farm-coordinator/internal/observability"
	"github.com/crownfall/farm-coordinator/internal/service"
)

type LauncherHandler struct {
	launcher *service.LauncherService
}

func NewLauncherHandler(launcher *service.LauncherService) *LauncherHandler {
	return &LauncherHandler{launcher: launcher}
}

func (h *LauncherHandler) Get(w http.ResponseWriter, r *http.Request) {
	launcher, err := h.launcher.GetLauncher(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, launcher)
}

func (h *LauncherHandler) SetVersion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Version == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "version is required")
		return
	}
	if err := h.launcher.SetVersion(r.Context(), body.Version); err != nil {
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "launcher.publish", "version", body.Version)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "published"})
}

// Download streams the published archive. The file response bypasses the
// JSON envelope.
func (h *LauncherHandler) Download(w http.ResponseWriter, r *http.Request) {
	path, err := h.launcher.ArchivePath(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	http.ServeFile(w, r, path)
}
