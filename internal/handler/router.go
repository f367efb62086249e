package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jharjadi/jdgen/internal/guides"
	authmw "github.com/jharjadi/jdgen/internal/middleware"
	"github.com/jharjadi/jdgen/internal/service"
)

// RouterDeps collects what NewRouter wires into routes.
type RouterDeps struct {
	Service     JDService
	Chunks      service.ChunkStore
	Guides      *guides.Store
	DB          Pinger
	Auth        *service.AuthService
	AuthEnabled bool
	Version     string

	// MCP, when set, is mounted at /mcp behind the auth middleware.
	MCP http.Handler
}

// NewRouter builds the chi router for the API.
func NewRouter(d RouterDeps) http.Handler {
	health := NewHealthHandler(d.DB, d.Guides, d.Version)
	authHandler := NewAuthHandler(d.Auth)
	generateHandler := NewGenerateHandler(d.Service)
	levelHandler := NewLevelHandler(d.Service)
	ingestHandler := NewIngestHandler(d.Service)
	chunkHandler := NewChunkHandler(d.Chunks)
	guideHandler := NewGuideHandler(d.Guides)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// No auth required
	r.Get("/", health.Root)
	r.Get("/health", health.Health)
	r.Post("/v1/auth/token", authHandler.Token)

	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(d.Auth, d.AuthEnabled))

		r.Post("/v1/generate", generateHandler.Handle)
		r.Post("/v1/level", levelHandler.Handle)
		r.Get("/v1/guides", guideHandler.List)
		r.Get("/v1/guides/{id}", guideHandler.Get)
		r.Get("/v1/chunks", chunkHandler.List)
		r.Get("/v1/chunks/{id}", chunkHandler.Get)

		if d.MCP != nil {
			r.Handle("/mcp", d.MCP)
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(service.RoleAdmin))
			r.Post("/v1/ingest", ingestHandler.Ingest)
			r.Delete("/v1/chunks/{id}", chunkHandler.Delete)
		})
	})

	return r
}
