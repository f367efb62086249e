package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jharjadi/jdgen/internal/config"
	"github.com/jharjadi/jdgen/internal/guides"
	"github.com/jharjadi/jdgen/internal/leveling"
	"github.com/jharjadi/jdgen/internal/model"
)

// Field bounds for ingestion.
const (
	MaxHeadingBytes = 200
	maxTopScores    = 5
)

// Reranker reorders merged candidates.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []model.Chunk) *RerankResult
}

// Pipeline runs generation, leveling and ingestion end to end. It is shared
// by the HTTP handlers and the MCP tools.
type Pipeline struct {
	cfg      *config.Config
	embedder Embedder
	searcher Searcher
	chunks   ChunkStore
	reranker Reranker
	llm      Generator
	guides   *guides.Store
	now      func() time.Time
}

// NewPipeline wires the collaborators. llm may be nil, in which case only
// the prompt and the extraction draft are returned.
func NewPipeline(cfg *config.Config, embedder Embedder, searcher Searcher, chunks ChunkStore,
	reranker Reranker, llm Generator, guideStore *guides.Store) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		embedder: embedder,
		searcher: searcher,
		chunks:   chunks,
		reranker: reranker,
		llm:      llm,
		guides:   guideStore,
		now:      time.Now,
	}
}

// Guides returns the guide store in effect.
func (p *Pipeline) Guides() *guides.Store { return p.guides }

// SearchQuery composes the retrieval query "<title> <department> <reqs...>".
func SearchQuery(title, department string, requirements []string) string {
	parts := append([]string{title, department}, requirements...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Generate retrieves similar job descriptions and builds the generation
// prompt, the extraction draft and, when an LLM is configured, the generated
// text. The returned log is never nil.
func (p *Pipeline) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, *model.GenerationLog, error) {
	glog := &model.GenerationLog{
		Timestamp: p.now().UTC(),
		KVec:      p.cfg.KVec,
		KFTS:      p.cfg.KFTS,
	}

	title, err := model.NewBoundedText("title", req.Title, MaxTitleBytes)
	if err != nil {
		return nil, glog, err
	}
	dept, err := model.NewBoundedText("department", req.Department, MaxDepartmentBytes)
	if err != nil {
		return nil, glog, err
	}
	if len(req.Requirements) > MaxRequirements {
		return nil, glog, &model.ValidationError{
			Field:  "requirements",
			Reason: fmt.Sprintf("at most %d requirements allowed", MaxRequirements),
		}
	}
	reqItems, err := model.NewBoundedList("requirements", req.Requirements, MaxRequirementBytes)
	if err != nil {
		return nil, glog, err
	}
	reqs := model.Strings(reqItems)

	var level leveling.Level
	if strings.TrimSpace(req.TargetLevel) != "" {
		if level, err = leveling.ParseLevel(req.TargetLevel); err != nil {
			return nil, glog, err
		}
		glog.TargetLevel = level.String()
	}

	query := SearchQuery(title.String(), dept.String(), reqs)
	if len(query) > model.MaxEmbedInputBytes {
		return nil, glog, &model.ValidationError{
			Field:  "requirements",
			Reason: fmt.Sprintf("combined query exceeds maximum length of %d bytes", model.MaxEmbedInputBytes),
		}
	}
	glog.QueryHash = HashText(query)

	embedStart := time.Now()
	vec, err := p.embedder.Embed(ctx, query)
	glog.LatencyMSEmbed = time.Since(embedStart).Milliseconds()
	if err != nil {
		return nil, glog, fmt.Errorf("embed query: %w", err)
	}

	retrieveStart := time.Now()
	result, err := p.searcher.Retrieve(ctx, query, vec, p.cfg.KVec, p.cfg.KFTS)
	glog.LatencyMSRetrieve = time.Since(retrieveStart).Milliseconds()
	if err != nil {
		return nil, glog, fmt.Errorf("retrieve: %w", err)
	}
	glog.NumVecCandidates = len(result.VecResults)
	glog.NumFTSCandidates = len(result.FTSResults)

	merged := MergeRRF(result.VecResults, result.FTSResults, p.cfg.RRFK)
	glog.NumMergedCandidates = len(merged)

	rerank := &RerankResult{Chunks: merged, Skipped: true}
	if !NoCandidates(len(result.VecResults), len(result.FTSResults)) {
		rerankStart := time.Now()
		enhanced := BuildEnhancedQuery(title.String(), dept.String(), reqs, p.now().Year())
		rerank = p.reranker.Rerank(ctx, enhanced, merged)
		glog.LatencyMSRerank = time.Since(rerankStart).Milliseconds()
		if !rerank.Used && !rerank.Skipped {
			return nil, glog, model.Upstream("cohere", 0, "%s", rerank.Error)
		}
	}
	glog.RerankerUsed = rerank.Used
	glog.RerankerSkipped = rerank.Skipped

	candidates := FilterBySimilarity(rerank.Chunks, p.cfg.MinSimilarity, rerank.Used)
	if len(candidates) > p.cfg.MatchCount {
		candidates = candidates[:p.cfg.MatchCount]
	}
	examples, exampleTokens := SelectExamples(candidates, p.cfg.MaxContextTokens, p.cfg.ContextOverheadTokens, p.cfg.MaxExamples)
	glog.NumExamples = len(examples)
	glog.ExampleTokensEst = exampleTokens

	prompt, err := BuildGenerationPrompt(title.String(), dept.String(), reqs, FormatExamples(examples))
	if err != nil {
		return nil, glog, err
	}

	var guideIDs []string
	if !level.IsZero() {
		guideCtx, ids, err := p.levelingContext(level, p.cfg.MaxGuides)
		if err != nil {
			return nil, glog, err
		}
		guideIDs = ids
		glog.NumGuides = len(ids)
		glog.ContextBytes = len(guideCtx)
		prompt = AppendLevelingGuidance(prompt, level, guideCtx)
	}

	resp := &model.GenerateResponse{
		Draft:         BuildDraft(title.String(), dept.String(), reqs, examples),
		Prompt:        prompt,
		SearchQuery:   query,
		SimilarChunks: model.Summarize(examples),
		Citations:     []model.Citation{},
		Guides:        guideIDs,
	}

	if p.llm != nil {
		llmStart := time.Now()
		out, err := p.llm.Generate(ctx, GenerationSystemPrompt, prompt)
		glog.LatencyMSLLM = time.Since(llmStart).Milliseconds()
		if err != nil {
			return nil, glog, fmt.Errorf("generate: %w", err)
		}
		glog.LLMUsed = true
		glog.LLMPromptTokens = out.PromptTokens
		glog.LLMCompletionTokens = out.CompletionTokens
		resp.GeneratedJD = out.Text
		resp.Citations = ParseCitations(out.Text, examples)
	}

	if req.Debug {
		resp.Debug = &model.GenerateDebug{
			VecCandidates:    glog.NumVecCandidates,
			FTSCandidates:    glog.NumFTSCandidates,
			MergedCandidates: glog.NumMergedCandidates,
			RerankerUsed:     rerank.Used,
			RerankerSkipped:  rerank.Skipped,
			RerankerError:    rerank.Error,
			TopScores:        TopScores(rerank.Chunks, rerank.Used, maxTopScores),
			Examples:         glog.NumExamples,
			ExampleTokensEst: glog.ExampleTokensEst,
			ContextBytes:     glog.ContextBytes,
		}
	}
	return resp, glog, nil
}

// Level selects and assembles leveling guides for the target level and
// builds the re-leveling prompt. The returned log is never nil.
func (p *Pipeline) Level(ctx context.Context, req model.LevelRequest) (*model.LevelResponse, *model.LevelingLog, error) {
	llog := &model.LevelingLog{Timestamp: p.now().UTC()}

	jd, err := model.NewBoundedText("job_description", req.JobDescription, model.MaxEmbedInputBytes)
	if err != nil {
		return nil, llog, err
	}
	llog.JDHash = HashText(jd.String())

	level, err := leveling.ParseLevel(req.TargetLevel)
	if err != nil {
		return nil, llog, err
	}
	llog.TargetLevel = level.String()

	maxGuides := req.MaxGuides
	if maxGuides <= 0 {
		maxGuides = p.cfg.MaxGuides
	}

	guideCtx, ids, err := p.levelingContext(level, maxGuides)
	if err != nil {
		return nil, llog, err
	}
	llog.NumGuides = len(ids)
	llog.ContextBytes = len(guideCtx)

	prompt, err := BuildLevelingPrompt(jd.String(), level, guideCtx)
	if err != nil {
		return nil, llog, err
	}

	resp := &model.LevelResponse{
		TargetLevel:  level.String(),
		Guides:       ids,
		ContextBytes: len(guideCtx),
		Prompt:       prompt,
	}

	if p.llm != nil {
		llmStart := time.Now()
		out, err := p.llm.Generate(ctx, LevelingSystemPrompt, prompt)
		llog.LatencyMSLLM = time.Since(llmStart).Milliseconds()
		if err != nil {
			return nil, llog, fmt.Errorf("level: %w", err)
		}
		llog.LLMUsed = true
		resp.LeveledJD = out.Text
	}
	return resp, llog, nil
}

// levelingContext selects guides for level and assembles them within the
// configured caps. It returns only the identifiers that made it into the
// assembled text.
func (p *Pipeline) levelingContext(level leveling.Level, maxGuides int) (string, []string, error) {
	repo := p.guides.Current()
	ids := leveling.SelectGuides(level, repo.IDs(), maxGuides)
	sections := repo.Sections(ids)

	text, n, err := leveling.AssembleCount(sections, p.cfg.GuidePerDocCap, p.cfg.GuideTotalCap)
	if err != nil {
		return "", nil, err
	}
	included := make([]string, n)
	for i := range included {
		included[i] = sections[i].ID
	}
	return text, included, nil
}

// Ingest embeds content and stores it as a new example chunk.
func (p *Pipeline) Ingest(ctx context.Context, req model.IngestRequest) (model.Chunk, error) {
	content, err := model.NewBoundedText("content", req.Content, model.MaxEmbedInputBytes)
	if err != nil {
		return model.Chunk{}, err
	}
	heading := strings.TrimSpace(req.Heading)
	if len(heading) > MaxHeadingBytes {
		return model.Chunk{}, &model.ValidationError{
			Field:  "heading",
			Reason: fmt.Sprintf("exceeds maximum length of %d bytes", MaxHeadingBytes),
		}
	}
	dept := strings.TrimSpace(req.Department)
	if len(dept) > MaxDepartmentBytes {
		return model.Chunk{}, &model.ValidationError{
			Field:  "department",
			Reason: fmt.Sprintf("exceeds maximum length of %d bytes", MaxDepartmentBytes),
		}
	}

	vec, err := p.embedder.Embed(ctx, content.String())
	if err != nil {
		return model.Chunk{}, fmt.Errorf("embed content: %w", err)
	}

	chunk := model.Chunk{
		ID:         uuid.NewString(),
		Content:    content.String(),
		Heading:    heading,
		Department: dept,
	}
	stored, err := p.chunks.Insert(ctx, chunk, vec)
	if err != nil {
		return model.Chunk{}, fmt.Errorf("store chunk: %w", err)
	}
	return stored, nil
}

// TopScores returns the first n rerank scores, or RRF scores when the
// reranker was not used.
func TopScores(chunks []model.Chunk, useRerank bool, n int) []float64 {
	n = min(n, len(chunks))
	if n == 0 {
		return nil
	}
	scores := make([]float64, n)
	for i := range scores {
		if useRerank {
			scores[i] = chunks[i].RerankScore
		} else {
			scores[i] = chunks[i].RRFScore
		}
	}
	return scores
}
