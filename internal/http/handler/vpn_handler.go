package handler

import (
	"encoding/json"
	"net/http"

	"github.com/crownfall/farm-coordinator/internal/http/response"
	"github.com/crownfall/farm-coordinator/internal/service"
)

type VPNHandler struct {
	vpn *service.VPNService
}

func NewVPNHandler(vpn *service.VPNService) *VPNHandler {
	return &VPNHandler{vpn: vpn}
}

func (h *VPNHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.vpn.GetAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, accounts)
}

func (h *VPNHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateVPNInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "username is required")
		return
	}
	account, err := h.vpn.CreateAccount(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, account)
}

func (h *VPNHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	account, err := h.vpn.AcquireAccount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}
