package handler

import (
	"net/http"

	"github.com/mmeshcher/supplyhub/internal/service"
)

type createChatSessionRequest struct {
	SalesRepID int64  `json:"sales_rep_id"`
	OrderID    *int64 `json:"order_id,omitempty"`
}

// CreateChatSession открывает чат текущего потребителя с торговым представителем.
func (h *Handler) CreateChatSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createChatSessionRequest
	if !decodeJSON(r, &req) || req.SalesRepID <= 0 || (req.OrderID != nil && *req.OrderID <= 0) {
		badRequest(w)
		return
	}

	cs, err := h.service.CreateChatSession(r.Context(), userID, service.ChatSessionRequest{
		SalesRepID: req.SalesRepID,
		OrderID:    req.OrderID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toChatSessionResponse(*cs))
}

// GetChatSessions возвращает чаты текущего пользователя.
func (h *Handler) GetChatSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	f, ok := listFilter(w, r)
	if !ok {
		return
	}

	sessions, err := h.service.ListChatSessions(r.Context(), userID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(h, w, mapSlice(sessions, toChatSessionResponse))
}

// GetChatSession возвращает один чат участнику.
func (h *Handler) GetChatSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cs, err := h.service.GetChatSession(r.Context(), userID, sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toChatSessionResponse(*cs))
}
