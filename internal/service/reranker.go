package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jharjadi/jdgen/internal/model"
)

const cohereRerankURL = "https://api.cohere.com/v2/rerank"

// maxRerankWords keeps each document inside Cohere's per-document limit.
const maxRerankWords = 512

// RerankResult holds the outcome of a rerank attempt.
type RerankResult struct {
	Chunks  []model.Chunk
	Used    bool   // reranker scores were applied
	Skipped bool   // reranker was skipped or failed open
	Error   string // failure detail, empty on success
	Latency time.Duration
}

// RerankerService reorders retrieved chunks with Cohere, failing open when
// configured to.
type RerankerService struct {
	apiKey   string
	model    string
	url      string
	maxDocs  int
	failOpen bool
	client   *http.Client
}

// NewRerankerService creates a new RerankerService.
func NewRerankerService(apiKey, rerankModel string, timeout time.Duration, maxDocs int, failOpen bool) *RerankerService {
	return &RerankerService{
		apiKey:   apiKey,
		model:    rerankModel,
		url:      cohereRerankURL,
		maxDocs:  maxDocs,
		failOpen: failOpen,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled returns true if the reranker has an API key configured.
func (s *RerankerService) Enabled() bool {
	return s.apiKey != ""
}

// BuildEnhancedQuery phrases the rerank query as a description of the job
// posting being sought, which ranks full postings better than the bare
// search terms do.
func BuildEnhancedQuery(title, department string, requirements []string, year int) string {
	reqContext := "Open to various technical backgrounds"
	if len(requirements) > 0 {
		reqContext = "Must have: " + strings.Join(requirements, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current %d job posting for %s position in %s department.\n", year, title, department)
	sb.WriteString(reqContext)
	sb.WriteString("\n\nLooking for job descriptions with:\n")
	sb.WriteString("- Modern development practices and tools\n")
	sb.WriteString("- Current market compensation and benefits\n")
	sb.WriteString("- Recent technology requirements\n")
	sb.WriteString("- Relevant experience levels and qualifications\n\n")
	sb.WriteString("Prioritize recent, well-structured job descriptions that match the role requirements.")
	return sb.String()
}

func truncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + "..."
}

// Rerank sends chunks to Cohere. Without an API key it returns the input
// unchanged and marked skipped.
func (s *RerankerService) Rerank(ctx context.Context, query string, chunks []model.Chunk) *RerankResult {
	start := time.Now()

	if !s.Enabled() {
		return &RerankResult{
			Chunks:  chunks,
			Skipped: true,
			Error:   "no API key configured",
			Latency: time.Since(start),
		}
	}
	if len(chunks) == 0 {
		return &RerankResult{Chunks: chunks, Latency: time.Since(start)}
	}

	toRerank := chunks
	if len(toRerank) > s.maxDocs {
		toRerank = toRerank[:s.maxDocs]
	}

	docs := make([]string, len(toRerank))
	for i, c := range toRerank {
		docs[i] = truncateWords(c.Content, maxRerankWords)
	}

	var rerankResp cohereRerankResponse
	err := postJSON(ctx, s.client, "cohere", s.url,
		map[string]string{"Authorization": "Bearer " + s.apiKey},
		cohereRerankRequest{
			Model:           s.model,
			Query:           query,
			Documents:       docs,
			TopN:            len(docs),
			ReturnDocuments: false,
		}, &rerankResp)
	if err != nil {
		return s.handleError(chunks, start, err.Error())
	}

	reranked := make([]model.Chunk, 0, len(rerankResp.Results))
	for _, r := range rerankResp.Results {
		if r.Index < 0 || r.Index >= len(toRerank) {
			slog.Warn("reranker returned invalid index", "index", r.Index, "total", len(toRerank))
			continue
		}
		chunk := toRerank[r.Index]
		chunk.RerankScore = r.RelevanceScore
		reranked = append(reranked, chunk)
	}

	return &RerankResult{
		Chunks:  reranked,
		Used:    true,
		Latency: time.Since(start),
	}
}

// handleError returns the original chunks when failing open and none
// otherwise.
func (s *RerankerService) handleError(originalChunks []model.Chunk, start time.Time, errMsg string) *RerankResult {
	slog.Warn("reranker failed", "error", errMsg, "fail_open", s.failOpen)

	if s.failOpen {
		return &RerankResult{
			Chunks:  originalChunks,
			Skipped: true,
			Error:   errMsg,
			Latency: time.Since(start),
		}
	}
	return &RerankResult{
		Error:   errMsg,
		Latency: time.Since(start),
	}
}

type cohereRerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n"`
	ReturnDocuments bool     `json:"return_documents"`
}

type cohereRerankResponse struct {
	ID      string               `json:"id"`
	Results []cohereRerankResult `json:"results"`
}

type cohereRerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}
