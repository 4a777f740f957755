package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingTransport_CachesPOST(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"embedding":[1,2,3]}`))
	}))
	t.Cleanup(server.Close)

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	post := func() string {
		resp, err := client.Post(server.URL, "application/json", strings.NewReader(`{"prompt":"hi"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	first := post()
	second := post()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits, "second POST must replay from cache")
}

func TestCachingTransport_DistinctBodiesMiss(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	for _, body := range []string{`{"prompt":"a"}`, `{"prompt":"b"}`} {
		resp, err := client.Post(server.URL, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2, hits)
}

func TestCachingTransport_SkipsGET(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2, hits)
}

func TestCachingTransport_SkipsErrorResponses(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	for i := 0; i < 2; i++ {
		resp, err := client.Post(server.URL, "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2, hits, "non-2xx responses are never cached")
}
