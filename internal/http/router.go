package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Route("/api/cart/{ownerID}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{itemID}", h.UpdateItem)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Post("/stock-sync", h.SyncStock)
	})

	r.Route("/api/wishlist/{ownerID}", func(r chi.Router) {
		r.Get("/", h.GetWishlist)
		r.Post("/", h.AddWishlistItem)
		r.Delete("/{productID}", h.RemoveWishlistItem)
	})

	r.Route("/api/recently-viewed/{ownerID}", func(r chi.Router) {
		r.Get("/", h.GetRecentlyViewed)
		r.Post("/", h.MarkViewed)
	})

	return r
}
