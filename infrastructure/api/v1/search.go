package v1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/application/service"
	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/infrastructure/api/middleware"
)

// SearchRequest is the body for POST /api/v1/search. Exactly one of Text and
// Image must be set; Image carries base64-encoded image bytes.
type SearchRequest struct {
	Text   string `json:"text,omitempty"`
	Image  string `json:"image,omitempty"`
	Aspect string `json:"aspect,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SearchResult is one ranked match.
type SearchResult struct {
	PhotoPath   string  `json:"photo_path"`
	Aspect      string  `json:"aspect"`
	Distance    float64 `json:"distance"`
	Description string  `json:"description"`
}

// SearchResponse is the body for a successful search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchRouter handles similarity search endpoints.
type SearchRouter struct {
	client *photolens.Client
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *photolens.Client) *SearchRouter {
	return &SearchRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Search)
	return router
}

// Search handles POST /api/v1/search.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	params := service.SearchParams{Aspect: body.Aspect, Limit: body.Limit}

	var results []photo.Result
	var err error
	switch {
	case body.Text != "" && body.Image != "":
		err = fmt.Errorf("%w: text and image are mutually exclusive", photo.ErrNoQueryInput)
	case body.Text != "":
		results, err = r.client.Search.ByText(ctx, body.Text, params)
	case body.Image != "":
		var image []byte
		image, err = base64.StdEncoding.DecodeString(body.Image)
		if err != nil {
			err = fmt.Errorf("%w: image is not valid base64", photo.ErrNoQueryInput)
			break
		}
		results, err = r.client.Search.ByImage(ctx, image, params)
	default:
		err = photo.ErrNoQueryInput
	}
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, buildSearchResponse(results))
}

func buildSearchResponse(results []photo.Result) SearchResponse {
	out := SearchResponse{Results: make([]SearchResult, len(results))}
	for i, res := range results {
		out.Results[i] = SearchResult{
			PhotoPath:   res.PhotoPath(),
			Aspect:      res.AspectName(),
			Distance:    res.Distance(),
			Description: res.Description(),
		}
	}
	return out
}
