// Package config loads all environment variables for the jdgen server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jharjadi/jdgen/internal/model"
)

// Embedding providers.
const (
	EmbedProviderOpenAI  = "openai"
	EmbedProviderSidecar = "sidecar"
	EmbedProviderGenAI   = "genai"
)

// Default embedding models per provider.
const (
	DefaultOpenAIEmbedModel = "text-embedding-3-small"
	DefaultGenAIEmbedModel  = "gemini-embedding-001"
)

// DefaultEmbedModel returns the model used when EMBED_MODEL is unset.
func DefaultEmbedModel(provider string) string {
	if provider == EmbedProviderGenAI {
		return DefaultGenAIEmbedModel
	}
	return DefaultOpenAIEmbedModel
}

// Config holds all configuration for the jdgen server.
type Config struct {
	// Server
	APIHost string
	APIPort string

	// Database
	DatabaseURL string

	// Retrieval
	KVec          int
	KFTS          int
	RRFK          int
	MatchCount    int
	MinSimilarity float64

	// Reranker (Cohere)
	CohereAPIKey        string
	CohereRerankerModel string
	RerankTimeoutMS     int
	RerankMaxDocs       int
	RerankFailOpen      bool

	// Example budgeting
	MaxContextTokens      int
	ContextOverheadTokens int
	MaxExamples           int

	// LLM
	LLMEnabled      bool
	LLMProvider     string
	LLMModel        string
	AnthropicAPIKey string
	LLMMaxTokens    int

	// Embeddings
	EmbedProvider   string
	EmbedEndpoint   string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	EmbedModel      string
	EmbedDimensions int
	GenAIAPIKey     string

	// Leveling guides. GuidesDir empty means the bundled defaults.
	GuidesDir       string
	GuidesWatch     bool
	GuideRawFileCap int
	GuidePerDocCap  int
	GuideTotalCap   int
	GuideMaxFiles   int
	MaxGuides       int

	// Auth. API keys are stored as bcrypt hashes only.
	AuthEnabled    bool
	APIKeyHash     string
	ReadAPIKeyHash string
	JWTSecret      string
	JWTExpiryHours int

	// Timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads configuration from environment variables with sensible defaults
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		APIHost: envOr("API_HOST", "0.0.0.0"),
		APIPort: envOr("API_PORT", "8000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KVec:          envInt("K_VEC", 20),
		KFTS:          envInt("K_FTS", 20),
		RRFK:          envInt("RRF_K", 60),
		MatchCount:    envInt("MATCH_COUNT", 5),
		MinSimilarity: envFloat("MIN_SIMILARITY", 0),

		CohereAPIKey:        os.Getenv("COHERE_API_KEY"),
		CohereRerankerModel: envOr("COHERE_RERANK_MODEL", "rerank-v3.5"),
		RerankTimeoutMS:     envInt("RERANK_TIMEOUT_MS", 3000),
		RerankMaxDocs:       envInt("RERANK_MAX_DOCS", 50),
		RerankFailOpen:      envBool("RERANK_FAIL_OPEN", true),

		MaxContextTokens:      envInt("MAX_CONTEXT_TOKENS", 6000),
		ContextOverheadTokens: envInt("CONTEXT_OVERHEAD_TOKENS", 1500),
		MaxExamples:           envInt("MAX_EXAMPLES", 5),

		LLMEnabled:      envBool("LLM_ENABLED", false),
		LLMProvider:     envOr("LLM_PROVIDER", "anthropic"),
		LLMModel:        envOr("LLM_MODEL", "claude-sonnet-4-20250514"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		LLMMaxTokens:    envInt("LLM_MAX_TOKENS", 2048),

		EmbedProvider:   envOr("EMBED_PROVIDER", EmbedProviderOpenAI),
		EmbedEndpoint:   envOr("EMBED_ENDPOINT", "http://embed:8001/embed"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		EmbedModel:      os.Getenv("EMBED_MODEL"),
		EmbedDimensions: envInt("EMBED_DIMENSIONS", 1536),
		GenAIAPIKey:     os.Getenv("GENAI_API_KEY"),

		GuidesDir:       os.Getenv("GUIDES_DIR"),
		GuidesWatch:     envBool("GUIDES_WATCH", false),
		GuideRawFileCap: envInt("GUIDE_RAW_FILE_CAP", 64*1024),
		GuidePerDocCap:  envInt("GUIDE_PER_DOC_CAP", 4000),
		GuideTotalCap:   envInt("GUIDE_TOTAL_CAP", 12000),
		GuideMaxFiles:   envInt("GUIDE_MAX_FILES", 256),
		MaxGuides:       envInt("MAX_GUIDES", 3),

		AuthEnabled:    envBool("AUTH_ENABLED", false),
		APIKeyHash:     os.Getenv("API_KEY_HASH"),
		ReadAPIKeyHash: os.Getenv("READ_API_KEY_HASH"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiryHours: envInt("JWT_EXPIRY_HOURS", 24),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel(cfg.EmbedProvider)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks caps and provider settings that would otherwise fail per
// request.
func (c *Config) Validate() error {
	for _, p := range []struct {
		name string
		v    int
	}{
		{"K_VEC", c.KVec},
		{"K_FTS", c.KFTS},
		{"RRF_K", c.RRFK},
		{"GUIDE_RAW_FILE_CAP", c.GuideRawFileCap},
		{"GUIDE_PER_DOC_CAP", c.GuidePerDocCap},
		{"GUIDE_TOTAL_CAP", c.GuideTotalCap},
		{"GUIDE_MAX_FILES", c.GuideMaxFiles},
		{"MAX_GUIDES", c.MaxGuides},
		{"EMBED_DIMENSIONS", c.EmbedDimensions},
		{"MATCH_COUNT", c.MatchCount},
		{"MAX_EXAMPLES", c.MaxExamples},
	} {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", model.ErrInvalidConfiguration, p.name, p.v)
		}
	}
	if c.GuideTotalCap < c.GuidePerDocCap {
		return fmt.Errorf("%w: GUIDE_TOTAL_CAP (%d) must be at least GUIDE_PER_DOC_CAP (%d)",
			model.ErrInvalidConfiguration, c.GuideTotalCap, c.GuidePerDocCap)
	}

	switch c.EmbedProvider {
	case EmbedProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for EMBED_PROVIDER=openai", model.ErrInvalidConfiguration)
		}
	case EmbedProviderGenAI:
		if c.GenAIAPIKey == "" {
			return fmt.Errorf("%w: GENAI_API_KEY is required for EMBED_PROVIDER=genai", model.ErrInvalidConfiguration)
		}
	case EmbedProviderSidecar:
	default:
		return fmt.Errorf("%w: unknown EMBED_PROVIDER %q", model.ErrInvalidConfiguration, c.EmbedProvider)
	}

	if c.LLMEnabled && c.AnthropicAPIKey == "" {
		return fmt.Errorf("%w: ANTHROPIC_API_KEY is required when LLM_ENABLED=true", model.ErrInvalidConfiguration)
	}
	if c.AuthEnabled {
		if c.JWTSecret == "" {
			return fmt.Errorf("%w: JWT_SECRET is required when AUTH_ENABLED=true", model.ErrInvalidConfiguration)
		}
		if c.APIKeyHash == "" && c.ReadAPIKeyHash == "" {
			return fmt.Errorf("%w: API_KEY_HASH or READ_API_KEY_HASH is required when AUTH_ENABLED=true", model.ErrInvalidConfiguration)
		}
	}
	return nil
}

// Addr returns the listen address as "host:port".
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.APIHost, c.APIPort)
}

// RerankTimeout returns the reranker timeout as a time.Duration.
func (c *Config) RerankTimeout() time.Duration {
	return time.Duration(c.RerankTimeoutMS) * time.Millisecond
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
