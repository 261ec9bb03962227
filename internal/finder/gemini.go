package finder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/sakif/scholarship-globe/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const promptTemplate = "List 8 legitimate scholarships for students in %s. " +
	"Return ONLY JSON array of objects with fields: name, provider, deadline, url. " +
	"Deadlines as YYYY-MM-DD or 'unknown'. URLs must be real."

// Gemini asks a Gemini model for listings.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// GeminiOption customises the client NewGemini builds.
type GeminiOption func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint, such as a test server.
func WithBaseURL(url string) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = url }
}

// WithHTTPClient sets the HTTP client used for model calls.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPClient = hc }
}

// NewGemini creates a Gemini finder for the Gemini Developer API.
func NewGemini(ctx context.Context, apiKey, modelName string, logger *slog.Logger, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("finder: Gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("finder: creating Gemini client: %w", err)
	}
	return &Gemini{client: client, model: modelName, logger: logger}, nil
}

// Find implements Finder.
func (g *Gemini) Find(ctx context.Context, query string) ([]model.Scholarship, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(fmt.Sprintf(promptTemplate, query)),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.2),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("finder: Gemini request failed: %w", err)
	}

	listings, err := Parse(resp.Text())
	if err != nil {
		return nil, err
	}

	g.logger.Debug("gemini listings",
		slog.String("query", query),
		slog.Int("count", len(listings)),
	)
	return listings, nil
}
