package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jharjadi/jdgen/internal/model"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion  = "2023-06-01"
)

// LLMResponse holds the LLM's response text and token usage.
type LLMResponse struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// Generator produces text from a system prompt and user message.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (*LLMResponse, error)
}

// LLMService sends prompts to the configured LLM provider.
type LLMService struct {
	provider  string
	model     string
	apiKey    string
	maxTokens int
	url       string
	client    *http.Client
}

// NewLLMService creates a new LLMService.
func NewLLMService(provider, llmModel, apiKey string, maxTokens int) *LLMService {
	return &LLMService{
		provider:  provider,
		model:     llmModel,
		apiKey:    apiKey,
		maxTokens: maxTokens,
		url:       anthropicMessagesURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Generate sends the system prompt and user message to the LLM and returns the response.
func (s *LLMService) Generate(ctx context.Context, systemPrompt, userMessage string) (*LLMResponse, error) {
	switch s.provider {
	case "anthropic":
		return s.generateAnthropic(ctx, systemPrompt, userMessage)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.provider)
	}
}

func (s *LLMService) generateAnthropic(ctx context.Context, systemPrompt, userMessage string) (*LLMResponse, error) {
	start := time.Now()

	var resp anthropicResponse
	err := postJSON(ctx, s.client, "anthropic", s.url,
		map[string]string{
			"x-api-key":         s.apiKey,
			"anthropic-version": anthropicAPIVersion,
		},
		anthropicRequest{
			Model:     s.model,
			MaxTokens: s.maxTokens,
			System:    systemPrompt,
			Messages:  []anthropicMessage{{Role: "user", Content: userMessage}},
		}, &resp)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, model.Upstream("anthropic", 0, "response contained no text")
	}

	return &LLMResponse{
		Text:             text.String(),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		Latency:          time.Since(start),
	}, nil
}

// Provider returns the configured LLM provider name.
func (s *LLMService) Provider() string {
	return s.provider
}

// Model returns the configured LLM model name.
func (s *LLMService) Model() string {
	return s.model
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string                  `json:"id"`
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
