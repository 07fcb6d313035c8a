// Package handler содержит HTTP-обработчики API платформы заказов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/middleware"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RequestLink(ctx context.Context, userID, supplierID int64) (*model.Link, error)
	GetLink(ctx context.Context, userID, linkID int64) (*model.Link, error)
	UpdateLinkStatus(ctx context.Context, userID, linkID int64, to model.LinkStatus) (*model.Link, error)
	ListLinks(ctx context.Context, userID int64, f model.ListFilter) ([]model.Link, error)
	ListIncomingLinks(ctx context.Context, userID, supplierID int64, f model.ListFilter) ([]model.Link, error)

	CreateOrder(ctx context.Context, userID, supplierID int64, items []model.OrderLine) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)
	ListOrders(ctx context.Context, userID, supplierID int64, f model.ListFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, userID, orderID int64, to model.OrderStatus) (*model.Order, error)

	CreateComplaint(ctx context.Context, userID int64, req service.ComplaintRequest) (*model.Complaint, error)
	GetComplaint(ctx context.Context, userID, complaintID int64) (*model.Complaint, error)
	ListComplaints(ctx context.Context, userID int64, f model.ListFilter) ([]model.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, userID, complaintID int64, to model.ComplaintStatus, resolution *string) (*model.Complaint, error)

	CreateProduct(ctx context.Context, userID, supplierID int64, in service.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, userID, productID int64, patch service.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, userID, productID int64) error
	Catalog(ctx context.Context, userID, supplierID int64, f model.ListFilter) ([]model.Product, error)
	AddStaff(ctx context.Context, userID, supplierID, staffUserID int64, role string) (*model.SupplierStaff, error)

	CreateChatSession(ctx context.Context, userID int64, req service.ChatSessionRequest) (*model.ChatSession, error)
	GetChatSession(ctx context.Context, userID, sessionID int64) (*model.ChatSession, error)
	ListChatSessions(ctx context.Context, userID int64, f model.ListFilter) ([]model.ChatSession, error)
}

// Handler реализует HTTP-обработчики API платформы заказов.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

// writeError переводит вид ошибки в HTTP-статус. Неизвестные ошибки логируются и отдаются как 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrMissingRequiredField),
		errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err), zap.String("method", r.Method), zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(status), status)
		return
	}

	http.Error(w, err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v) == nil
}

func badRequest(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

// currentUser извлекает пользователя из контекста; при его отсутствии отвечает 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return userID, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w)
		return 0, false
	}
	return id, true
}

// queryInt разбирает необязательный целочисленный параметр запроса.
func queryInt(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func listFilter(w http.ResponseWriter, r *http.Request) (model.ListFilter, bool) {
	limit, ok1 := queryInt(r, "limit")
	offset, ok2 := queryInt(r, "offset")
	if !ok1 || !ok2 {
		badRequest(w)
		return model.ListFilter{}, false
	}
	return model.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  int(limit),
		Offset: int(offset),
	}, true
}

func supplierQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := queryInt(r, "supplier_id")
	if !ok {
		badRequest(w)
	}
	return id, ok
}

// Health отвечает на проверку живости сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
