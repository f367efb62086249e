package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/jharjadi/jdgen/internal/model"
)

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ValidateEmbedding checks that vec has exactly dims finite components.
func ValidateEmbedding(vec []float32, dims int) error {
	if len(vec) != dims {
		return fmt.Errorf("expected %d dimensions, got %d", dims, len(vec))
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("component %d is not finite", i)
		}
	}
	return nil
}

// maxErrorBody bounds how much of an upstream error body ends up in logs.
const maxErrorBody = 512

func postJSON(ctx context.Context, client *http.Client, service, url string, headers map[string]string, reqBody, out any) error {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return model.Upstream(service, 0, "HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Upstream(service, 0, "read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return model.Upstream(service, resp.StatusCode, "%s", string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return model.Upstream(service, 0, "unmarshal response: %w", err)
	}
	return nil
}

// SidecarEmbedder calls a local embedding sidecar that accepts
// {"texts": [...]} and returns {"embeddings": [[...]]}.
type SidecarEmbedder struct {
	endpoint string
	dims     int
	client   *http.Client
}

// NewSidecarEmbedder creates an embedder for the sidecar at endpoint.
func NewSidecarEmbedder(endpoint string, dims int) *SidecarEmbedder {
	return &SidecarEmbedder{
		endpoint: endpoint,
		dims:     dims,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sidecarRequest struct {
	Texts []string `json:"texts"`
}

type sidecarResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (s *SidecarEmbedder) Dimensions() int { return s.dims }

// Embed generates an embedding vector for the given text.
func (s *SidecarEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp sidecarResponse
	if err := postJSON(ctx, s.client, "embed-sidecar", s.endpoint, nil, sidecarRequest{Texts: []string{text}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, model.Upstream("embed-sidecar", 0, "no embeddings returned")
	}
	if err := ValidateEmbedding(resp.Embeddings[0], s.dims); err != nil {
		return nil, model.Upstream("embed-sidecar", 0, "invalid embedding: %w", err)
	}
	return resp.Embeddings[0], nil
}

// DefaultOpenAIBaseURL is the public OpenAI API root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIEmbedder calls the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	apiKey  string
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

// NewOpenAIEmbedder creates an embedder for the given model. An empty baseURL
// selects DefaultOpenAIBaseURL.
func NewOpenAIEmbedder(apiKey, baseURL, embedModel string, dims int) *OpenAIEmbedder {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIEmbedder{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   embedModel,
		dims:    dims,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type openAIEmbedRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (s *OpenAIEmbedder) Dimensions() int { return s.dims }

// Embed generates an embedding vector for the given text.
func (s *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp openAIEmbedResponse
	err := postJSON(ctx, s.client, "openai", s.baseURL+"/embeddings",
		map[string]string{"Authorization": "Bearer " + s.apiKey},
		openAIEmbedRequest{Model: s.model, Input: text, Dimensions: s.dims}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, model.Upstream("openai", 0, "no embeddings returned")
	}
	if err := ValidateEmbedding(resp.Data[0].Embedding, s.dims); err != nil {
		return nil, model.Upstream("openai", 0, "invalid embedding: %w", err)
	}
	return resp.Data[0].Embedding, nil
}

// GenAIEmbedder embeds text with the Gemini API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGenAIEmbedder creates a Gemini-backed embedder.
func NewGenAIEmbedder(ctx context.Context, apiKey, embedModel string, dims int) (*GenAIEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIEmbedder{client: client, model: embedModel, dims: dims}, nil
}

func (s *GenAIEmbedder) Dimensions() int { return s.dims }

// Embed generates an embedding vector for the given text.
func (s *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	dims := int32(s.dims)
	resp, err := s.client.Models.EmbedContent(ctx, s.model, contents, &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, model.Upstream("genai", 0, "embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, model.Upstream("genai", 0, "no embeddings returned")
	}
	vec := resp.Embeddings[0].Values
	if err := ValidateEmbedding(vec, s.dims); err != nil {
		return nil, model.Upstream("genai", 0, "invalid embedding: %w", err)
	}
	return vec, nil
}
