package handler

import (
	"net/http"

	"github.com/mmeshcher/supplyhub/internal/model"
)

type linkRequest struct {
	SupplierID int64 `json:"supplier_id"`
}

type statusRequest struct {
	Status     string  `json:"status"`
	Resolution *string `json:"resolution,omitempty"`
}

// RequestLink создаёт запрос текущего потребителя на связь с поставщиком.
func (h *Handler) RequestLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req linkRequest
	if !decodeJSON(r, &req) || req.SupplierID <= 0 {
		badRequest(w)
		return
	}

	link, err := h.service.RequestLink(r.Context(), userID, req.SupplierID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toLinkResponse(*link))
}

// GetLinks возвращает связи текущего потребителя.
func (h *Handler) GetLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	f, ok := listFilter(w, r)
	if !ok {
		return
	}

	links, err := h.service.ListLinks(r.Context(), userID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(h, w, mapSlice(links, toLinkResponse))
}

// GetIncomingLinks возвращает связи поставщика, которым управляет текущий пользователь.
func (h *Handler) GetIncomingLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	supplierID, ok := supplierQuery(w, r)
	if !ok {
		return
	}
	f, ok := listFilter(w, r)
	if !ok {
		return
	}

	links, err := h.service.ListIncomingLinks(r.Context(), userID, supplierID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(h, w, mapSlice(links, toLinkResponse))
}

// GetLink возвращает одну связь.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	linkID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	link, err := h.service.GetLink(r.Context(), userID, linkID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toLinkResponse(*link))
}

// UpdateLinkStatus меняет статус связи.
func (h *Handler) UpdateLinkStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	linkID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(r, &req) || req.Status == "" {
		badRequest(w)
		return
	}

	link, err := h.service.UpdateLinkStatus(r.Context(), userID, linkID, model.LinkStatus(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toLinkResponse(*link))
}

// writeList отдаёт список; пустой список отдаётся как 204.
func writeList[T any](h *Handler, w http.ResponseWriter, items []T) {
	if len(items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}
