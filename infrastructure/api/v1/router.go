// Package v1 implements the versioned HTTP API routes.
package v1

import (
	"github.com/go-chi/chi/v5"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/infrastructure/api/middleware"
)

// Mount registers all v1 routes under /api/v1 on the given router.
func Mount(router chi.Router, client *photolens.Client) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Logging(client.Logger()))

		r.Mount("/search", NewSearchRouter(client).Routes())
		r.Mount("/index", NewIndexRouter(client).Routes())
		r.Mount("/photos", NewPhotosRouter(client).Routes())
		r.Mount("/models", NewModelsRouter(client).Routes())
	})
}
