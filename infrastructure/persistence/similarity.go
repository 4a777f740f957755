package persistence

import (
	"math"
	"sort"
)

// CosineDistance computes 1 minus the cosine similarity of two vectors,
// so 0 means identical direction and 2 means opposite. Returns 1 (maximally
// dissimilar short of opposite) when either vector has zero magnitude or
// the lengths differ.
func CosineDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(magA)*math.Sqrt(magB))
}

// rankedMatch pairs a stored row with its distance to the query embedding.
type rankedMatch struct {
	entity   sqlitePhotoEntity
	distance float64
}

// rankNearest scores every entity against the query embedding and returns
// the k nearest in ascending distance order. Ties keep their input order,
// so repeated calls over identical state produce identical orderings.
func rankNearest(query []float64, entities []sqlitePhotoEntity, k int) []rankedMatch {
	if len(entities) == 0 || k <= 0 {
		return []rankedMatch{}
	}

	matches := make([]rankedMatch, 0, len(entities))
	for _, e := range entities {
		matches = append(matches, rankedMatch{
			entity:   e,
			distance: CosineDistance(query, e.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}
