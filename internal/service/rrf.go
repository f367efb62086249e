package service

import (
	"cmp"
	"slices"

	"github.com/jharjadi/jdgen/internal/model"
)

// MergeRRF fuses the vector and full-text rankings with Reciprocal Rank
// Fusion: score(d) = sum over lists of 1/(k + rank(d)), rank 1-based.
// A chunk found by both searches keeps its similarity from the vector list
// and its FTS score from the full-text list. Ties order by chunk ID.
func MergeRRF(vecResults, ftsResults []model.Chunk, rrfK int) []model.Chunk {
	merged := make(map[string]*model.Chunk, len(vecResults)+len(ftsResults))

	for i := range vecResults {
		c := vecResults[i]
		rank := i + 1
		score := 1.0 / float64(rrfK+rank)
		if existing, ok := merged[c.ID]; ok {
			existing.RRFScore += score
			existing.Similarity = c.Similarity
			existing.VecRank = rank
			continue
		}
		c.RRFScore = score
		c.VecRank = rank
		merged[c.ID] = &c
	}

	for i := range ftsResults {
		c := ftsResults[i]
		rank := i + 1
		score := 1.0 / float64(rrfK+rank)
		if existing, ok := merged[c.ID]; ok {
			existing.RRFScore += score
			existing.FTSScore = c.FTSScore
			existing.FTSRank = rank
			continue
		}
		c.RRFScore = score
		c.FTSRank = rank
		merged[c.ID] = &c
	}

	results := make([]model.Chunk, 0, len(merged))
	for _, c := range merged {
		results = append(results, *c)
	}
	slices.SortFunc(results, func(a, b model.Chunk) int {
		return cmp.Or(cmp.Compare(b.RRFScore, a.RRFScore), cmp.Compare(a.ID, b.ID))
	})
	return results
}
