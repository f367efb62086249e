package service

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/jharjadi/jdgen/internal/model"
)

// HashText returns the SHA-256 hex of the lower-cased, trimmed text. Request
// logs carry this instead of caller-supplied text.
func HashText(s string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(h[:])
}

// EmitGenerationLog writes the structured per-request generation log line.
func EmitGenerationLog(l *model.GenerationLog, httpStatus int, totalStart time.Time) {
	l.HTTPStatus = httpStatus
	l.LatencyMSTotal = time.Since(totalStart).Milliseconds()

	slog.Info("generate",
		"ts", l.Timestamp.Format(time.RFC3339),
		"request_id", l.RequestID,
		"query_hash", l.QueryHash,
		"target_level", l.TargetLevel,
		"k_vec", l.KVec,
		"k_fts", l.KFTS,
		"num_vec_candidates", l.NumVecCandidates,
		"num_fts_candidates", l.NumFTSCandidates,
		"num_merged_candidates", l.NumMergedCandidates,
		"reranker_used", l.RerankerUsed,
		"reranker_skipped", l.RerankerSkipped,
		"num_examples", l.NumExamples,
		"example_tokens_est", l.ExampleTokensEst,
		"num_guides", l.NumGuides,
		"context_bytes", l.ContextBytes,
		"llm_used", l.LLMUsed,
		"llm_prompt_tokens", l.LLMPromptTokens,
		"llm_completion_tokens", l.LLMCompletionTokens,
		"latency_ms_embed", l.LatencyMSEmbed,
		"latency_ms_retrieve", l.LatencyMSRetrieve,
		"latency_ms_rerank", l.LatencyMSRerank,
		"latency_ms_llm", l.LatencyMSLLM,
		"latency_ms_total", l.LatencyMSTotal,
		"http_status", l.HTTPStatus,
	)
}

// EmitLevelingLog writes the structured per-request leveling log line.
func EmitLevelingLog(l *model.LevelingLog, httpStatus int, totalStart time.Time) {
	l.HTTPStatus = httpStatus
	l.LatencyMSTotal = time.Since(totalStart).Milliseconds()

	slog.Info("level",
		"ts", l.Timestamp.Format(time.RFC3339),
		"request_id", l.RequestID,
		"jd_hash", l.JDHash,
		"target_level", l.TargetLevel,
		"num_guides", l.NumGuides,
		"context_bytes", l.ContextBytes,
		"llm_used", l.LLMUsed,
		"latency_ms_llm", l.LatencyMSLLM,
		"latency_ms_total", l.LatencyMSTotal,
		"http_status", l.HTTPStatus,
	)
}
