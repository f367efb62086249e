package service

import (
	"github.com/jharjadi/jdgen/internal/model"
)

// FilterBySimilarity drops chunks whose vector similarity is below floor.
// Chunks found only by full-text search have no similarity and are kept so
// long as a reranker scored them or the floor is disabled (floor <= 0).
func FilterBySimilarity(chunks []model.Chunk, floor float64, reranked bool) []model.Chunk {
	if floor <= 0 {
		return chunks
	}
	out := make([]model.Chunk, 0, len(chunks))
	for _, c := range chunks {
		switch {
		case c.VecRank > 0 && c.Similarity >= floor:
		case c.VecRank == 0 && reranked:
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// NoCandidates reports whether both searches came back empty. The pipeline
// still returns a draft in that case, built from the caller's input alone.
func NoCandidates(vecCount, ftsCount int) bool {
	return vecCount == 0 && ftsCount == 0
}
