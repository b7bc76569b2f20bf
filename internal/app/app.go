// Package app содержит HTTP-хендлеры приложения.
package app

import (
	"github.com/go-chi/chi/v5"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/services"
)

// Handler агрегирует зависимости HTTP-хендлеров.
type Handler struct {
	linkService services.LinkService
}

// InitHandlers собирает роутер приложения.
func InitHandlers(linkService services.LinkService) *chi.Mux {
	h := &Handler{linkService: linkService}
	r := chi.NewRouter()
	r.Use(h.GzipMiddleware)
	r.Use(logger.RequestLogger)

	r.Post("/api/links", h.PostLinkHandler)
	r.Get("/api/user/links", h.GetUserLinks)
	r.Put("/api/links/{id}", h.PutLinkHandler)
	r.Delete("/api/links/{id}", h.DeleteLinkHandler)
	r.Put("/api/user/links/order", h.PutLinkOrderHandler)
	r.Delete("/api/user/links", h.DeleteUserLinks)
	r.Get("/u/{userID}", h.GetPublicPage)
	r.Get("/ping", h.GetDBPing)
	r.Get("/api/internal/stats", h.GetInternalStats)

	return r
}
