package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/supplyhub/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Route("/links", func(r chi.Router) {
			r.Post("/requests", h.RequestLink)
			r.Get("/", h.GetLinks)
			r.Get("/incoming", h.GetIncomingLinks)
			r.Get("/{id}", h.GetLink)
			r.Patch("/{id}/status", h.UpdateLinkStatus)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/", h.GetOrders)
			r.Get("/{id}", h.GetOrder)
			r.Patch("/{id}/status", h.UpdateOrderStatus)
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Post("/", h.CreateComplaint)
			r.Get("/", h.GetComplaints)
			r.Get("/{id}", h.GetComplaint)
			r.Patch("/{id}/status", h.UpdateComplaintStatus)
		})

		r.Route("/suppliers/{id}", func(r chi.Router) {
			r.Get("/products", h.GetCatalog)
			r.Post("/products", h.CreateProduct)
			r.Post("/staff", h.AddStaff)
		})

		r.Patch("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Route("/chats/sessions", func(r chi.Router) {
			r.Post("/", h.CreateChatSession)
			r.Get("/", h.GetChatSessions)
			r.Get("/{id}", h.GetChatSession)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
