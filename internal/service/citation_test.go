package service

import (
	"testing"

	"github.com/jharjadi/jdgen/internal/model"
)

func makeContextChunks() []model.Chunk {
	return []model.Chunk{
		{
			ID:         "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
			Heading:    "Senior Backend Engineer",
			Department: "Engineering",
		},
		{
			ID:         "11111111-2222-3333-4444-555555555555",
			Heading:    "Product Designer",
			Department: "Design",
		},
	}
}

func TestParseCitations_ValidCitation(t *testing.T) {
	ctx := makeContextChunks()
	text := "Own the payments API [example:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee]."

	citations := ParseCitations(text, ctx)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].ChunkID != "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee" {
		t.Errorf("wrong chunk_id: %s", citations[0].ChunkID)
	}
	if citations[0].Heading != "Senior Backend Engineer" {
		t.Errorf("wrong heading: %s", citations[0].Heading)
	}
	if citations[0].Department != "Engineering" {
		t.Errorf("wrong department: %s", citations[0].Department)
	}
}

func TestParseCitations_MultipleCitations(t *testing.T) {
	ctx := makeContextChunks()
	text := "X [example:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee] and Y [example:11111111-2222-3333-4444-555555555555]."

	citations := ParseCitations(text, ctx)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
}

func TestParseCitations_DuplicateCitation(t *testing.T) {
	ctx := makeContextChunks()
	text := "X [example:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee] and also [example:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee]."

	citations := ParseCitations(text, ctx)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation (deduped), got %d", len(citations))
	}
}

func TestParseCitations_HallucinatedCitation(t *testing.T) {
	ctx := makeContextChunks()
	text := "X [example:99999999-9999-9999-9999-999999999999]."

	citations := ParseCitations(text, ctx)
	if len(citations) != 0 {
		t.Fatalf("expected 0 citations (hallucinated dropped), got %d", len(citations))
	}
}

func TestParseCitations_NoCitations(t *testing.T) {
	citations := ParseCitations("A plain job description.", makeContextChunks())
	if citations == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(citations) != 0 {
		t.Fatalf("expected 0 citations, got %d", len(citations))
	}
}

func TestParseCitations_OtherMarkerIgnored(t *testing.T) {
	text := "X [chunk:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee]."
	if got := ParseCitations(text, makeContextChunks()); len(got) != 0 {
		t.Fatalf("expected 0 citations for non-example marker, got %d", len(got))
	}
}

func TestParseCitations_EmptyContext(t *testing.T) {
	text := "X [example:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee]."
	citations := ParseCitations(text, nil)
	if len(citations) != 0 {
		t.Fatalf("expected 0 citations with empty context, got %d", len(citations))
	}
}
