// Package gemini talks to the Google Generative Language API: the
// generateContent endpoint (through the genai SDK) for text tasks and the
// BidiGenerateContent websocket for live transcription.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"lumina/internal/services/ai"

	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when no API key is available at call time.
var ErrNoAPIKey = errors.New("gemini api key is not configured")

// ErrEmptyResponse is returned when a response carries no candidates.
var ErrEmptyResponse = errors.New("gemini returned no candidates")

// APIError is an error status returned by the API.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
	Status     string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// KeySource returns the API key to use for the next call.
type KeySource func() string

// EnvKey reads GEMINI_API_KEY on every call, falling back to fallback.
func EnvKey(fallback string) KeySource {
	return func() string {
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return fallback
	}
}

// Config configures a Client. BaseURL is the API root without a version;
// APIVersion defaults to the SDK's.
type Config struct {
	BaseURL    string
	APIVersion string
	Model      string
	Key        KeySource
	HTTPClient *http.Client
}

// Client calls generateContent.
type Client struct {
	cfg Config
}

// New creates a client. The SDK client is built per call so the API key
// is read when the request is made.
func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Key == nil {
		cfg.Key = EnvKey("")
	}
	if cfg.BaseURL != "" && !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	cfg.Model = strings.TrimPrefix(cfg.Model, "models/")
	return &Client{cfg: cfg}
}

func (c *Client) sdk(ctx context.Context, key string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.cfg.BaseURL,
			APIVersion: c.cfg.APIVersion,
		},
	})
}

func toContents(req ai.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Inline != nil {
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{
				MIMEType: p.Inline.MIMEType,
				Data:     p.Inline.Data,
			}})
			continue
		}
		parts = append(parts, &genai.Part{Text: p.Text})
	}
	return []*genai.Content{{Role: string(genai.RoleUser), Parts: parts}}
}

// Generate sends req and returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	key := c.cfg.Key()
	if key == "" {
		return "", ErrNoAPIKey
	}

	client, err := c.sdk(ctx, key)
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	temperature, topP := req.Temperature, req.TopP
	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, toContents(req), &genai.GenerateContentConfig{
		Temperature: &temperature,
		TopP:        &topP,
	})
	if err != nil {
		return "", asAPIError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

// asAPIError converts the SDK's status error, keeping other errors wrapped.
func asAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.Code, Message: apiErr.Message, Status: apiErr.Status}
	}
	return fmt.Errorf("generate content: %w", err)
}
