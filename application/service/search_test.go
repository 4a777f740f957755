package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/infrastructure/imaging"
	"github.com/photolens/photolens/infrastructure/provider"
)

func testImageBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func seedIndex(t *testing.T, index *fakeIndex) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, index.Upsert(ctx,
		photo.NewRecord("/photos/match.jpg", "default", "matching", []float64{1, 0, 0})))
	require.NoError(t, index.Upsert(ctx,
		photo.NewRecord("/photos/other.jpg", "default", "other", []float64{0, 1, 0})))
	require.NoError(t, index.Upsert(ctx,
		photo.NewRecord("/photos/match.jpg", "people", "a person", []float64{0.9, 0.1, 0})))
}

func TestSearch_ByText(t *testing.T) {
	index := newFakeIndex()
	seedIndex(t, index)
	p := newFakeProvider()
	p.embedding = []float64{1, 0, 0}

	search := NewSearch(index, p, nil)

	results, err := search.ByText(context.Background(), "something matching", SearchParams{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "/photos/match.jpg", results[0].PhotoPath())
	assert.InDelta(t, 0.0, results[0].Distance(), 1e-9)
}

func TestSearch_ByText_EmptyQuery(t *testing.T) {
	search := NewSearch(newFakeIndex(), newFakeProvider(), nil)

	_, err := search.ByText(context.Background(), "", SearchParams{})
	assert.ErrorIs(t, err, photo.ErrNoQueryInput)
}

func TestSearch_ByText_AspectFilter(t *testing.T) {
	index := newFakeIndex()
	seedIndex(t, index)
	search := NewSearch(index, newFakeProvider(), nil)

	results, err := search.ByText(context.Background(), "person", SearchParams{Aspect: "people"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "people", results[0].AspectName())
}

func TestSearch_ByText_LimitApplies(t *testing.T) {
	index := newFakeIndex()
	seedIndex(t, index)
	search := NewSearch(index, newFakeProvider(), nil)

	results, err := search.ByText(context.Background(), "anything", SearchParams{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_ByText_ProviderFailureIsTerminal(t *testing.T) {
	index := newFakeIndex()
	seedIndex(t, index)
	p := newFakeProvider()
	p.embedErr = provider.NewProviderError("embed_text", 503, "overloaded", nil)

	search := NewSearch(index, p, nil)

	results, err := search.ByText(context.Background(), "query", SearchParams{})
	require.Error(t, err)
	assert.Nil(t, results)

	var provErr *provider.ProviderError
	assert.True(t, errors.As(err, &provErr))
}

func TestSearch_ByImage(t *testing.T) {
	index := newFakeIndex()
	seedIndex(t, index)
	p := newFakeProvider()
	p.embedding = []float64{1, 0, 0}

	search := NewSearch(index, p, nil)

	results, err := search.ByImage(context.Background(), testImageBytes(t), SearchParams{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "/photos/match.jpg", results[0].PhotoPath())

	// Image queries go through describe first, then embed the description.
	assert.Equal(t, 1, p.describeCalls)
	assert.Equal(t, 1, p.embedCalls)
}

func TestSearch_ByImage_EmptyInput(t *testing.T) {
	search := NewSearch(newFakeIndex(), newFakeProvider(), nil)

	_, err := search.ByImage(context.Background(), nil, SearchParams{})
	assert.ErrorIs(t, err, photo.ErrNoQueryInput)
}

func TestSearch_ByImage_UnreadableImage(t *testing.T) {
	search := NewSearch(newFakeIndex(), newFakeProvider(), nil)

	_, err := search.ByImage(context.Background(), []byte("garbage"), SearchParams{})
	assert.ErrorIs(t, err, imaging.ErrUnreadableImage)
}

func TestSearch_ByImage_DescribeFailureIsTerminal(t *testing.T) {
	index := newFakeIndex()
	seedIndex(t, index)
	p := newFakeProvider()
	p.describeErr = provider.NewProviderError("describe_image", 500, "boom", nil)

	search := NewSearch(index, p, nil)

	_, err := search.ByImage(context.Background(), testImageBytes(t), SearchParams{})
	require.Error(t, err)

	var provErr *provider.ProviderError
	assert.True(t, errors.As(err, &provErr))
	assert.Equal(t, 0, p.embedCalls)
}

func TestSearch_EmptyIndexYieldsNoResults(t *testing.T) {
	search := NewSearch(newFakeIndex(), newFakeProvider(), nil)

	results, err := search.ByText(context.Background(), "anything", SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
