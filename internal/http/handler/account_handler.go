package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crownfall/farm-coordinator/internal/http/middleware"
	"github.com/crownfall/farm-coordinator/internal/http/response"
	"github.com/crownfall/farm-coordinator/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	account, err := h.accounts.GetAccount(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	var input service.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "username is required")
		return
	}
	account, err := h.accounts.CreateAccount(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, account)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.accounts.RemoveAccount(r.Context(), username); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
