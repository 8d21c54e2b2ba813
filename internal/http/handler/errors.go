package handler

import (
	"errors"
	"net/http"

	"github.com/crownfall/farm-coordinator/internal/http/response"
	"github.com/crownfall/farm-coordinator/internal/repository"
	"github.com/crownfall/farm-coordinator/internal/service"
)

// writeError maps domain errors onto the response envelope. Anything not
// recognized is a 500 with no internals leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrAccountNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrLobbyNotFound),
		errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrVPNAccountNotFound),
		errors.Is(err, repository.ErrLauncherNotFound),
		errors.Is(err, service.ErrLauncherArchiveNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, repository.ErrUserExists),
		errors.Is(err, repository.ErrAccountExists),
		errors.Is(err, repository.ErrVPNAccountExists):
		response.Error(w, r, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, service.ErrSessionActionForbidden):
		response.Error(w, r, http.StatusBadRequest, "ACTION_FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrInvalidToken):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
