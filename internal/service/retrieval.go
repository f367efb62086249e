// Package service implements the generation and leveling pipelines.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/jharjadi/jdgen/internal/model"
)

// RetrievalResult holds the results of parallel vector + FTS retrieval.
type RetrievalResult struct {
	VecResults []model.Chunk
	FTSResults []model.Chunk
}

// Searcher runs the hybrid search behind generation.
type Searcher interface {
	Retrieve(ctx context.Context, query string, embedding []float32, kVec, kFTS int) (*RetrievalResult, error)
}

// ChunkStore manages the example corpus.
type ChunkStore interface {
	Insert(ctx context.Context, c model.Chunk, embedding []float32) (model.Chunk, error)
	List(ctx context.Context, p model.Pagination) ([]model.Chunk, int, error)
	Get(ctx context.Context, id string) (model.Chunk, error)
	Delete(ctx context.Context, id string) error
}

// RetrievalService handles vector and FTS search and chunk storage in
// PostgreSQL with pgvector.
type RetrievalService struct {
	pool *pgxpool.Pool
}

// NewRetrievalService creates a new RetrievalService.
func NewRetrievalService(pool *pgxpool.Pool) *RetrievalService {
	return &RetrievalService{pool: pool}
}

// Retrieve runs vector search and FTS search in parallel, returning both
// result sets. Either failure cancels the other search.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, embedding []float32, kVec, kFTS int) (*RetrievalResult, error) {
	var res RetrievalResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		res.VecResults, err = s.vectorSearch(gctx, embedding, kVec)
		if err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		res.FTSResults, err = s.ftsSearch(gctx, query, kFTS)
		if err != nil {
			return fmt.Errorf("FTS search: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, &model.UpstreamError{Service: "postgres", Err: err}
	}
	return &res, nil
}

// ValidateChunkRow checks the shape of a row read from the store. Vector
// rows must carry a cosine similarity in [-1, 1].
func ValidateChunkRow(c model.Chunk, vectorRow bool) error {
	switch {
	case c.ID == "":
		return errors.New("empty chunk_id")
	case c.Content == "":
		return errors.New("empty content")
	case vectorRow && (c.Similarity < -1 || c.Similarity > 1 || math.IsNaN(c.Similarity)):
		return fmt.Errorf("similarity %v out of range", c.Similarity)
	}
	return nil
}

// vectorSearch performs cosine similarity search.
func (s *RetrievalService) vectorSearch(ctx context.Context, embedding []float32, k int) ([]model.Chunk, error) {
	query := `
		SELECT
			chunk_id::text,
			content,
			coalesce(heading, ''),
			coalesce(department, ''),
			created_at,
			1 - (embedding <=> $1) AS similarity
		FROM jd_chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	var results []model.Chunk
	rank := 1
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Heading, &c.Department, &c.CreatedAt, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		if err := ValidateChunkRow(c, true); err != nil {
			slog.Warn("dropping invalid vector row", "chunk_id", c.ID, "error", err)
			continue
		}
		c.VecRank = rank
		rank++
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector rows iteration: %w", err)
	}
	return results, nil
}

// ftsSearch performs full-text search using websearch_to_tsquery and ts_rank_cd.
func (s *RetrievalService) ftsSearch(ctx context.Context, question string, k int) ([]model.Chunk, error) {
	query := `
		SELECT
			chunk_id::text,
			content,
			coalesce(heading, ''),
			coalesce(department, ''),
			created_at,
			ts_rank_cd(to_tsvector('english', content), websearch_to_tsquery('english', $1)) AS fts_score
		FROM jd_chunks
		WHERE to_tsvector('english', content) @@ websearch_to_tsquery('english', $1)
		ORDER BY fts_score DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, question, k)
	if err != nil {
		return nil, fmt.Errorf("FTS query: %w", err)
	}
	defer rows.Close()

	var results []model.Chunk
	rank := 1
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Heading, &c.Department, &c.CreatedAt, &c.FTSScore); err != nil {
			return nil, fmt.Errorf("scan FTS row: %w", err)
		}
		if err := ValidateChunkRow(c, false); err != nil {
			slog.Warn("dropping invalid FTS row", "chunk_id", c.ID, "error", err)
			continue
		}
		c.FTSRank = rank
		rank++
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FTS rows iteration: %w", err)
	}
	return results, nil
}

// Insert stores a chunk with its embedding and returns it with created_at
// filled in.
func (s *RetrievalService) Insert(ctx context.Context, c model.Chunk, embedding []float32) (model.Chunk, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO jd_chunks (chunk_id, content, heading, department, embedding)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		c.ID, c.Content, c.Heading, c.Department, pgvector.NewVector(embedding),
	).Scan(&c.CreatedAt)
	if err != nil {
		return model.Chunk{}, &model.UpstreamError{Service: "postgres", Err: fmt.Errorf("insert chunk: %w", err)}
	}
	return c, nil
}

// List returns a page of chunks, newest first, and the total count.
func (s *RetrievalService) List(ctx context.Context, p model.Pagination) ([]model.Chunk, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM jd_chunks`).Scan(&total); err != nil {
		return nil, 0, &model.UpstreamError{Service: "postgres", Err: fmt.Errorf("count chunks: %w", err)}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT chunk_id::text, content, coalesce(heading, ''), coalesce(department, ''), created_at
		FROM jd_chunks
		ORDER BY created_at DESC, chunk_id
		LIMIT $1 OFFSET $2`, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, &model.UpstreamError{Service: "postgres", Err: fmt.Errorf("list chunks: %w", err)}
	}
	defer rows.Close()

	chunks := []model.Chunk{}
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Heading, &c.Department, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("chunk rows iteration: %w", err)
	}
	return chunks, total, nil
}

// Get returns one chunk by ID, or model.ErrNotFound.
func (s *RetrievalService) Get(ctx context.Context, id string) (model.Chunk, error) {
	var c model.Chunk
	err := s.pool.QueryRow(ctx, `
		SELECT chunk_id::text, content, coalesce(heading, ''), coalesce(department, ''), created_at
		FROM jd_chunks
		WHERE chunk_id = $1`, id,
	).Scan(&c.ID, &c.Content, &c.Heading, &c.Department, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Chunk{}, model.ErrNotFound
	}
	if err != nil {
		return model.Chunk{}, &model.UpstreamError{Service: "postgres", Err: fmt.Errorf("get chunk: %w", err)}
	}
	return c, nil
}

// Delete removes one chunk by ID, or returns model.ErrNotFound.
func (s *RetrievalService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jd_chunks WHERE chunk_id = $1`, id)
	if err != nil {
		return &model.UpstreamError{Service: "postgres", Err: fmt.Errorf("delete chunk: %w", err)}
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *RetrievalService) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM jd_chunks`).Scan(&n); err != nil {
		return 0, &model.UpstreamError{Service: "postgres", Err: fmt.Errorf("count chunks: %w", err)}
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *RetrievalService) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
