package service

import (
	"log/slog"
	"regexp"

	"github.com/jharjadi/jdgen/internal/model"
)

// citationRegex matches [example:<CHUNK_ID>] markers in LLM output.
// Chunk IDs are UUIDs: 8-4-4-4-12 hex characters.
var citationRegex = regexp.MustCompile(`\[example:([0-9a-fA-F-]{36})\]`)

// ParseCitations extracts the example citations in responseText, keeping
// only those that refer to chunks actually sent to the LLM. Invented IDs are
// dropped with a warning.
func ParseCitations(responseText string, contextChunks []model.Chunk) []model.Citation {
	chunkMap := make(map[string]model.Chunk, len(contextChunks))
	for _, c := range contextChunks {
		chunkMap[c.ID] = c
	}

	matches := citationRegex.FindAllStringSubmatch(responseText, -1)
	citations := []model.Citation{}
	seen := make(map[string]bool)
	for _, match := range matches {
		chunkID := match[1]
		if seen[chunkID] {
			continue
		}
		seen[chunkID] = true

		chunk, ok := chunkMap[chunkID]
		if !ok {
			slog.Warn("hallucinated citation dropped",
				"chunk_id", chunkID,
				"context_chunk_count", len(contextChunks),
			)
			continue
		}
		citations = append(citations, model.Citation{
			ChunkID:    chunk.ID,
			Heading:    chunk.Heading,
			Department: chunk.Department,
		})
	}
	return citations
}
