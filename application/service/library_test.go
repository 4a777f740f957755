package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_DeleteSingleAspect(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	seedIndex(t, index)
	library := NewLibrary(index, nil)

	removed, err := library.Delete(ctx, "/photos/match.jpg", "people")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	exists, err := library.Exists(ctx, "/photos/match.jpg", "default")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLibrary_DeleteAllAspects(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	seedIndex(t, index)
	library := NewLibrary(index, nil)

	removed, err := library.Delete(ctx, "/photos/match.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	paths, err := library.PhotoPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/photos/other.jpg"}, paths)
}

func TestLibrary_ExistsDefaultsAspect(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	seedIndex(t, index)
	library := NewLibrary(index, nil)

	exists, err := library.Exists(ctx, "/photos/match.jpg", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLibrary_Clear(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	seedIndex(t, index)
	library := NewLibrary(index, nil)

	require.NoError(t, library.Clear(ctx))

	count, err := library.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestModels_ListWithFilter(t *testing.T) {
	p := newFakeProvider()
	p.models = []string{"llava-phi3:latest", "nomic-embed-text:latest", "mistral:7b"}
	models := NewModels(p)

	all, err := models.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := models.List(context.Background(), "EMBED")
	require.NoError(t, err)
	assert.Equal(t, []string{"nomic-embed-text:latest"}, filtered)
}
