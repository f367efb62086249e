// Package model defines the domain types for the job-description API.
package model

import "time"

// GenerateRequest is the POST /v1/generate request body.
type GenerateRequest struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Requirements []string `json:"requirements"`
	TargetLevel  string   `json:"target_level,omitempty"`
	Debug        bool     `json:"debug"`
}

// GenerateResponse is the POST /v1/generate response body.
type GenerateResponse struct {
	GeneratedJD   string         `json:"generated_jd,omitempty"`
	Draft         *Draft         `json:"draft"`
	Prompt        string         `json:"prompt"`
	SearchQuery   string         `json:"search_query"`
	SimilarChunks []ChunkSummary `json:"similar_chunks"`
	Citations     []Citation     `json:"citations"`
	Guides        []string       `json:"guides,omitempty"`
	Debug         *GenerateDebug `json:"debug,omitempty"`
}

// Draft is the deterministic job description assembled from retrieved
// examples without an LLM.
type Draft struct {
	Title      string        `json:"title"`
	Department string        `json:"department"`
	Sections   DraftSections `json:"sections"`
	Metadata   DraftMetadata `json:"metadata"`
}

// DraftSections holds the extracted sections of a draft.
type DraftSections struct {
	Intro            string   `json:"intro"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	NiceToHaves      []string `json:"nice_to_haves"`
}

// DraftMetadata describes how a draft was produced.
type DraftMetadata struct {
	Generated        bool   `json:"generated"`
	SimilarJobsUsed  int    `json:"similar_jobs_used"`
	GenerationMethod string `json:"generation_method"`
}

// GenerateDebug contains retrieval diagnostics when debug=true.
type GenerateDebug struct {
	VecCandidates    int       `json:"vec_candidates"`
	FTSCandidates    int       `json:"fts_candidates"`
	MergedCandidates int       `json:"merged_candidates"`
	RerankerUsed     bool      `json:"reranker_used"`
	RerankerSkipped  bool      `json:"reranker_skipped"`
	RerankerError    string    `json:"reranker_error,omitempty"`
	TopScores        []float64 `json:"top_scores,omitempty"`
	Examples         int       `json:"examples"`
	ExampleTokensEst int       `json:"example_tokens_est"`
	ContextBytes     int       `json:"context_bytes"`
}

// LevelRequest is the POST /v1/level request body.
type LevelRequest struct {
	JobDescription string `json:"job_description"`
	TargetLevel    string `json:"target_level"`
	MaxGuides      int    `json:"max_guides"`
}

// LevelResponse is the POST /v1/level response body.
type LevelResponse struct {
	TargetLevel  string   `json:"target_level"`
	Guides       []string `json:"guides"`
	ContextBytes int      `json:"context_bytes"`
	Prompt       string   `json:"prompt"`
	LeveledJD    string   `json:"leveled_jd,omitempty"`
}

// IngestRequest is the POST /v1/ingest request body.
type IngestRequest struct {
	Content    string `json:"content"`
	Heading    string `json:"heading,omitempty"`
	Department string `json:"department,omitempty"`
}

// IngestResponse is the POST /v1/ingest response body.
type IngestResponse struct {
	ChunkID string `json:"chunk_id"`
	Result  string `json:"result"`
}

// TokenResponse is the POST /v1/auth/token response body.
type TokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Citation is an example chunk the LLM referenced in its answer.
type Citation struct {
	ChunkID    string `json:"chunk_id"`
	Heading    string `json:"heading"`
	Department string `json:"department"`
}

// HealthResponse is the GET /health response body.
type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Guides int    `json:"guides"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Chunk is a job-description chunk from the vector store with its scores.
type Chunk struct {
	ID         string
	Content    string
	Heading    string
	Department string
	CreatedAt  time.Time

	// Similarity is the cosine similarity to the query (1 - distance).
	Similarity  float64
	FTSScore    float64
	RRFScore    float64
	RerankScore float64

	// Rank positions (1-based, 0 when absent from that list)
	VecRank int
	FTSRank int
}

// ChunkSummary is the API view of a chunk.
type ChunkSummary struct {
	ChunkID    string    `json:"chunk_id"`
	Heading    string    `json:"heading,omitempty"`
	Department string    `json:"department,omitempty"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Summarize converts chunks to their API view.
func Summarize(chunks []Chunk) []ChunkSummary {
	out := make([]ChunkSummary, len(chunks))
	for i, c := range chunks {
		out[i] = ChunkSummary{
			ChunkID:    c.ID,
			Heading:    c.Heading,
			Department: c.Department,
			Content:    c.Content,
			Similarity: c.Similarity,
			CreatedAt:  c.CreatedAt,
		}
	}
	return out
}

// ChunkListResponse is the GET /v1/chunks response body.
type ChunkListResponse struct {
	Chunks []ChunkSummary `json:"chunks"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// GuideInfo describes a loaded leveling guide.
type GuideInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Bytes        int    `json:"bytes"`
	Truncated    bool   `json:"truncated"`
	OriginalSize int    `json:"original_size"`
}

// GuideListResponse is the GET /v1/guides response body.
type GuideListResponse struct {
	Guides []GuideInfo `json:"guides"`
}

// Pagination holds normalized page/limit values.
type Pagination struct {
	Page  int
	Limit int
}

// DefaultPagination clamps page to >= 1 and limit to 1..100 (default 20).
func DefaultPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the SQL offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// GenerationLog holds all fields for the structured per-request generation log line.
type GenerationLog struct {
	Timestamp           time.Time
	RequestID           string
	QueryHash           string
	TargetLevel         string
	KVec                int
	KFTS                int
	NumVecCandidates    int
	NumFTSCandidates    int
	NumMergedCandidates int
	RerankerUsed        bool
	RerankerSkipped     bool
	NumExamples         int
	ExampleTokensEst    int
	NumGuides           int
	ContextBytes        int
	LLMUsed             bool
	LLMPromptTokens     int
	LLMCompletionTokens int
	LatencyMSEmbed      int64
	LatencyMSRetrieve   int64
	LatencyMSRerank     int64
	LatencyMSLLM        int64
	LatencyMSTotal      int64
	HTTPStatus          int
}

// LevelingLog holds all fields for the structured per-request leveling log line.
type LevelingLog struct {
	Timestamp      time.Time
	RequestID      string
	JDHash         string
	TargetLevel    string
	NumGuides      int
	ContextBytes   int
	LLMUsed        bool
	LatencyMSLLM   int64
	LatencyMSTotal int64
	HTTPStatus     int
}
