package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/infrastructure/api/middleware"
)

// ModelsResponse is the body for GET /api/v1/models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// ModelsRouter handles model listing endpoints.
type ModelsRouter struct {
	client *photolens.Client
	logger *slog.Logger
}

// NewModelsRouter creates a new ModelsRouter.
func NewModelsRouter(client *photolens.Client) *ModelsRouter {
	return &ModelsRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for model endpoints.
func (r *ModelsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	return router
}

// List handles GET /api/v1/models?filter=...
func (r *ModelsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	models, err := r.client.Models.List(ctx, req.URL.Query().Get("filter"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if models == nil {
		models = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, ModelsResponse{Models: models})
}
