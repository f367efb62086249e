package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	authmw "github.com/jharjadi/jdgen/internal/middleware"
	"github.com/jharjadi/jdgen/internal/model"
	"github.com/jharjadi/jdgen/internal/service"
)

// Pipeline is the subset of *service.Pipeline the tools drive.
type Pipeline interface {
	Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, *model.GenerationLog, error)
	Level(ctx context.Context, req model.LevelRequest) (*model.LevelResponse, *model.LevelingLog, error)
	Ingest(ctx context.Context, req model.IngestRequest) (model.Chunk, error)
}

// LocalBackend runs tool calls in-process against the pipeline and emits
// the same per-request log lines as the HTTP handlers.
type LocalBackend struct {
	p Pipeline
}

// NewLocalBackend creates a LocalBackend.
func NewLocalBackend(p Pipeline) *LocalBackend {
	return &LocalBackend{p: p}
}

// Generate implements Backend.
func (b *LocalBackend) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	start := time.Now()
	resp, glog, err := b.p.Generate(ctx, req)
	glog.RequestID = chimw.GetReqID(ctx)
	service.EmitGenerationLog(glog, logStatus(err), start)
	return resp, err
}

// Level implements Backend.
func (b *LocalBackend) Level(ctx context.Context, req model.LevelRequest) (*model.LevelResponse, error) {
	start := time.Now()
	resp, llog, err := b.p.Level(ctx, req)
	llog.RequestID = chimw.GetReqID(ctx)
	service.EmitLevelingLog(llog, logStatus(err), start)
	return resp, err
}

// Ingest implements Backend. Only admins may add examples.
func (b *LocalBackend) Ingest(ctx context.Context, req model.IngestRequest) (*model.IngestResponse, error) {
	if authmw.RoleFromContext(ctx) != service.RoleAdmin {
		return nil, model.ErrForbidden
	}
	chunk, err := b.p.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}
	return &model.IngestResponse{ChunkID: chunk.ID, Result: "created"}, nil
}

// logStatus maps a pipeline error to the status the REST surface would have
// answered with, so MCP calls log comparably.
func logStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidLevelFormat),
		errors.Is(err, model.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
