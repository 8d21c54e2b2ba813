package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/http/response"
	"github.com/crownfall/farm-coordinator/internal/service"
)

// ClientHandler exposes the farm agent surface: client CRUD, the session
// workflow, and failure reports.
type ClientHandler struct {
	clients *service.ClientService
	reports *service.ReportService
}

func NewClientHandler(clients *service.ClientService, reports *service.ReportService) *ClientHandler {
	return &ClientHandler{clients: clients, reports: reports}
}

func clientID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_ID", "client id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	client, err := h.clients.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	page, err := h.clients.GetClients(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	client, err := h.clients.CreateClient(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	var input service.UpdateClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	if err := h.clients.UpdateClient(r.Context(), id, input); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	if err := h.clients.RemoveClient(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ClientHandler) AcquireAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	account, err := h.clients.AcquireSessionAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}

func (h *ClientHandler) AcquireLobby(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	role, err := h.clients.AcquireSessionLobby(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]domain.SessionRole{"role": role})
}

func (h *ClientHandler) GetLobby(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	lobby, err := h.clients.GetSessionLobby(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, lobby)
}

func (h *ClientHandler) SetLobbySteamID(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	var body struct {
		SteamID string `json:"steam_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SteamID == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "steam_id is required")
		return
	}
	if err := h.clients.SetSessionLobbySteamID(r.Context(), id, body.SteamID); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ClientHandler) SetLobbyState(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	var body struct {
		State domain.LobbyState `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	if body.State != domain.LobbyInvitesSent && body.State != domain.LobbySearchStarted {
		response.Error(w, r, http.StatusBadRequest, "INVALID_STATE", "state must be InvitesSent or SearchStarted")
		return
	}
	if err := h.clients.SetSessionLobbyState(r.Context(), id, body.State); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ClientHandler) SetAccepted(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, service.SessionAccepted)
}

func (h *ClientHandler) SetLoaded(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, service.SessionLoaded)
}

func (h *ClientHandler) setFlag(w http.ResponseWriter, r *http.Request, flag service.SessionFlag) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	if err := h.clients.SetSessionFlag(r.Context(), id, flag); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ClientHandler) AcquireGame(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	var body struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.GameID == "" {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "game_id is required")
		return
	}
	if err := h.clients.AcquireSessionGame(r.Context(), id, body.GameID); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "bound"})
}

func (h *ClientHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	game, err := h.clients.GetSessionGame(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, game)
}

func (h *ClientHandler) SetAccountFarmed(w http.ResponseWriter, r *http.Request) {
	h.setAccountOutcome(w, r, service.AccountFarmed)
}

func (h *ClientHandler) SetAccountFailed(w http.ResponseWriter, r *http.Request) {
	h.setAccountOutcome(w, r, service.AccountFailed)
}

func (h *ClientHandler) setAccountOutcome(w http.ResponseWriter, r *http.Request, outcome service.AccountOutcome) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	if err := h.clients.SetSessionAccount(r.Context(), id, outcome); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ClientHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	if err := h.clients.ReleaseSession(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "released"})
}

func (h *ClientHandler) Success(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	if err := h.clients.SetSuccess(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *ClientHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	var input service.CreateReportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	report, err := h.reports.CreateReport(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, report)
}

func (h *ClientHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	id, ok := clientID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	page, err := h.reports.GetClientReports(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}
