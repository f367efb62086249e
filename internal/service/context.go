package service

import (
	"github.com/jharjadi/jdgen/internal/model"
)

// EstimateTokens approximates the token count of text at four bytes per
// token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// SelectExamples keeps the leading chunks that fit the example budget.
// maxTokens is the total context budget, overhead is reserved for the
// system prompt, requirements and leveling guidance, and maxExamples caps
// the count. It returns the selection and its estimated token total.
func SelectExamples(chunks []model.Chunk, maxTokens, overhead, maxExamples int) ([]model.Chunk, int) {
	budget := maxTokens - overhead
	if budget <= 0 {
		return nil, 0
	}

	var selected []model.Chunk
	totalTokens := 0
	for _, c := range chunks {
		if len(selected) >= maxExamples {
			break
		}
		n := EstimateTokens(c.Content)
		if totalTokens+n > budget {
			break
		}
		selected = append(selected, c)
		totalTokens += n
	}
	return selected, totalTokens
}
