package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/infrastructure/api/middleware"
)

// PhotosResponse is the body for GET /api/v1/photos.
type PhotosResponse struct {
	Photos []string `json:"photos"`
	Count  int64    `json:"count"`
}

// DeleteResponse reports how many records a delete removed.
type DeleteResponse struct {
	Removed int64 `json:"removed"`
}

// PhotosRouter handles stored-record management endpoints.
type PhotosRouter struct {
	client *photolens.Client
	logger *slog.Logger
}

// NewPhotosRouter creates a new PhotosRouter.
func NewPhotosRouter(client *photolens.Client) *PhotosRouter {
	return &PhotosRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for photo endpoints.
func (r *PhotosRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	router.Delete("/", r.Delete)
	router.Post("/clear", r.Clear)
	return router
}

// List handles GET /api/v1/photos.
func (r *PhotosRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	paths, err := r.client.Library.PhotoPaths(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	count, err := r.client.Library.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if paths == nil {
		paths = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, PhotosResponse{Photos: paths, Count: count})
}

// Delete handles DELETE /api/v1/photos?path=...&aspect=... An empty aspect
// removes the photo's records across all aspects.
func (r *PhotosRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	path := req.URL.Query().Get("path")
	if path == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}
	aspect := req.URL.Query().Get("aspect")

	removed, err := r.client.Library.Delete(ctx, path, aspect)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, DeleteResponse{Removed: removed})
}

// Clear handles POST /api/v1/photos/clear.
func (r *PhotosRouter) Clear(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if err := r.client.Library.Clear(ctx); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
