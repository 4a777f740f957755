package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/application/service"
	"github.com/photolens/photolens/infrastructure/api/middleware"
)

// IndexRequest is the body for POST /api/v1/index. Dir must name a directory
// readable by the server.
type IndexRequest struct {
	Dir          string `json:"dir"`
	Aspect       string `json:"aspect,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
	Concurrency  int    `json:"concurrency,omitempty"`
	SkipExisting bool   `json:"skip_existing,omitempty"`
}

// IndexItem reports one failed photo within a run.
type IndexItem struct {
	PhotoPath string `json:"photo_path"`
	Error     string `json:"error"`
}

// IndexResponse summarizes an indexing run.
type IndexResponse struct {
	Indexed    int         `json:"indexed"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	Failures   []IndexItem `json:"failures,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// IndexRouter handles indexing endpoints.
type IndexRouter struct {
	client *photolens.Client
	logger *slog.Logger
}

// NewIndexRouter creates a new IndexRouter.
func NewIndexRouter(client *photolens.Client) *IndexRouter {
	return &IndexRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for indexing endpoints.
func (r *IndexRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Index)
	return router
}

// Index handles POST /api/v1/index. The request blocks until the run
// completes; per-photo failures are reported in the response, not as an
// error status.
func (r *IndexRouter) Index(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body IndexRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if body.Dir == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "dir is required"})
		return
	}

	report, err := r.client.Indexing.Run(ctx, service.IndexParams{
		Dir:          body.Dir,
		Aspect:       body.Aspect,
		Prompt:       body.Prompt,
		Concurrency:  body.Concurrency,
		SkipExisting: body.SkipExisting,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := IndexResponse{
		Indexed:    report.Indexed,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		DurationMS: report.Duration.Milliseconds(),
	}
	for _, item := range report.Items {
		if item.Status == service.ItemFailed {
			response.Failures = append(response.Failures, IndexItem{
				PhotoPath: item.PhotoPath,
				Error:     item.Err.Error(),
			})
		}
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}
