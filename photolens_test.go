package photolens_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photolens/photolens"
	"github.com/photolens/photolens/application/service"
)

func writeTestPhoto(t *testing.T) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 32), G: uint8(y * 32), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

type fakeProvider struct {
	embedding []float64
}

func (f *fakeProvider) DescribeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return "a test description", nil
}

func (f *fakeProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return f.embedding, nil
}

func (f *fakeProvider) Models(ctx context.Context) ([]string, error) {
	return []string{"fake:latest"}, nil
}

func (f *fakeProvider) Close() error { return nil }

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := photolens.New(photolens.WithProvider(&fakeProvider{}))

	assert.ErrorIs(t, err, photolens.ErrNoDatabase)
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := photolens.New(photolens.WithSQLite(filepath.Join(t.TempDir(), "t.db")))

	assert.ErrorIs(t, err, photolens.ErrNoProvider)
}

func TestClient_Lifecycle(t *testing.T) {
	client, err := photolens.New(
		photolens.WithSQLite(filepath.Join(t.TempDir(), "t.db")),
		photolens.WithProvider(&fakeProvider{embedding: []float64{1, 0}}),
	)
	require.NoError(t, err)

	require.NotNil(t, client.Indexing)
	require.NotNil(t, client.Search)
	require.NotNil(t, client.Library)
	require.NotNil(t, client.Models)
	require.NotNil(t, client.Index())
	require.NotNil(t, client.Logger())

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), photolens.ErrClientClosed)
}

func TestClient_IndexAndSearchRoundTrip(t *testing.T) {
	client, err := photolens.New(
		photolens.WithSQLite(filepath.Join(t.TempDir(), "t.db")),
		photolens.WithProvider(&fakeProvider{embedding: []float64{0.3, 0.4, 0.5}}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	photoPath := writeTestPhoto(t)

	record, err := client.Indexing.IndexFile(ctx, photoPath, "", "")
	require.NoError(t, err)
	assert.Equal(t, photoPath, record.PhotoPath())
	assert.Equal(t, "a test description", record.Description())

	results, err := client.Search.ByText(ctx, "anything", service.SearchParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, photoPath, results[0].PhotoPath())
	assert.InDelta(t, 0.0, results[0].Distance(), 1e-9)

	count, err := client.Library.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
