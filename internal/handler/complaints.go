package handler

import (
	"net/http"

	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/service"
)

type createComplaintRequest struct {
	OrderID     int64  `json:"order_id"`
	SalesRepID  int64  `json:"sales_rep_id"`
	ManagerID   int64  `json:"manager_id"`
	Description string `json:"description"`
}

// CreateComplaint регистрирует жалобу по заказу текущего потребителя.
func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createComplaintRequest
	if !decodeJSON(r, &req) || req.OrderID <= 0 || req.SalesRepID <= 0 || req.ManagerID <= 0 {
		badRequest(w)
		return
	}

	c, err := h.service.CreateComplaint(r.Context(), userID, service.ComplaintRequest{
		OrderID:     req.OrderID,
		SalesRepID:  req.SalesRepID,
		ManagerID:   req.ManagerID,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toComplaintResponse(*c))
}

// GetComplaints возвращает жалобы, доступные текущему пользователю.
func (h *Handler) GetComplaints(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	f, ok := listFilter(w, r)
	if !ok {
		return
	}

	complaints, err := h.service.ListComplaints(r.Context(), userID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(h, w, mapSlice(complaints, toComplaintResponse))
}

// GetComplaint возвращает одну жалобу.
func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.service.GetComplaint(r.Context(), userID, complaintID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toComplaintResponse(*c))
}

// UpdateComplaintStatus меняет статус жалобы; для закрытия передаётся resolution.
func (h *Handler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(r, &req) || req.Status == "" {
		badRequest(w)
		return
	}

	c, err := h.service.UpdateComplaintStatus(r.Context(), userID, complaintID, model.ComplaintStatus(req.Status), req.Resolution)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toComplaintResponse(*c))
}
