package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photolens/photolens"
	v1 "github.com/photolens/photolens/infrastructure/api/v1"
)

// stubProvider answers every describe with one description and every embed
// with a fixed vector.
type stubProvider struct {
	embedding []float64
}

func (s *stubProvider) DescribeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return "a stub description", nil
}

func (s *stubProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return s.embedding, nil
}

func (s *stubProvider) Models(ctx context.Context) ([]string, error) {
	return []string{"stub-model:latest"}, nil
}

func (s *stubProvider) Close() error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *photolens.Client) {
	t.Helper()

	client, err := photolens.New(
		photolens.WithSQLite(filepath.Join(t.TempDir(), "test.db")),
		photolens.WithProvider(&stubProvider{embedding: []float64{1, 0, 0}}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	router := chi.NewRouter()
	v1.Mount(router, client)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, client
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSearchRoute_Text(t *testing.T) {
	server, client := newTestServer(t)
	ctx := context.Background()

	// Seed one record directly through the index.
	_, err := client.Indexing.IndexFile(ctx, seedPhoto(t), "", "")
	require.NoError(t, err)

	resp := postJSON(t, server.URL+"/api/v1/search", v1.SearchRequest{Text: "stub"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body v1.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "a stub description", body.Results[0].Description)
	assert.InDelta(t, 0.0, body.Results[0].Distance, 1e-9)
}

func TestSearchRoute_RejectsEmptyQuery(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/search", v1.SearchRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchRoute_RejectsTextAndImageTogether(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/search", v1.SearchRequest{Text: "x", Image: "aGVsbG8="})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPhotosRoute_ListAndDelete(t *testing.T) {
	server, client := newTestServer(t)
	ctx := context.Background()

	photoPath := seedPhoto(t)
	_, err := client.Indexing.IndexFile(ctx, photoPath, "", "")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/v1/photos")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list v1.PhotosResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []string{photoPath}, list.Photos)
	assert.Equal(t, int64(1), list.Count)

	req, err := http.NewRequest(http.MethodDelete,
		server.URL+"/api/v1/photos?path="+photoPath, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = delResp.Body.Close() })
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	var deleted v1.DeleteResponse
	require.NoError(t, json.NewDecoder(delResp.Body).Decode(&deleted))
	assert.Equal(t, int64(1), deleted.Removed)
}

func TestPhotosRoute_DeleteRequiresPath(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/photos", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModelsRoute(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/models")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body v1.ModelsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"stub-model:latest"}, body.Models)
}

func TestIndexRoute_RequiresDir(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/index", v1.IndexRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexRoute_IndexesDirectory(t *testing.T) {
	server, _ := newTestServer(t)

	dir := filepath.Dir(seedPhoto(t))
	resp := postJSON(t, server.URL+"/api/v1/index", v1.IndexRequest{Dir: dir})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body v1.IndexResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Indexed)
	assert.Equal(t, 0, body.Failed)
}
