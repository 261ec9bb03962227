// Package finder looks up scholarships for a country or keyword.
//
// The production finder asks a Gemini model for a JSON array of listings.
// Without an API key, or whenever the model call or its output fails, the
// API answers with a single demo listing instead of an error, so the globe
// always has something to show.
package finder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/scholarship-globe/internal/model"
)

// Field length limits applied to every listing a model returns.
const (
	maxNameLen     = 300
	maxProviderLen = 300
	maxDeadlineLen = 50
)

// ErrNoListings is returned when model output holds no JSON array.
var ErrNoListings = errors.New("finder: no JSON array in model output")

// Finder finds scholarships for a query.
type Finder interface {
	Find(ctx context.Context, query string) ([]model.Scholarship, error)
}

// DemoScholarship is returned when no real finder is available.
func DemoScholarship() model.Scholarship {
	return model.Scholarship{
		Name:     "Demo Scholarship",
		Provider: "Example Foundation",
		Deadline: model.Deadline(model.DeadlineUnknown),
		URL:      "https://example.org/scholarship",
	}
}

// Demo always returns the demo listing.
type Demo struct{}

// Find implements Finder.
func (Demo) Find(context.Context, string) ([]model.Scholarship, error) {
	return []model.Scholarship{DemoScholarship()}, nil
}

// WithFallback wraps primary so that any failure yields the demo listing.
func WithFallback(primary Finder, logger *slog.Logger) Finder {
	return &fallback{primary: primary, logger: logger}
}

type fallback struct {
	primary Finder
	logger  *slog.Logger
}

func (f *fallback) Find(ctx context.Context, query string) ([]model.Scholarship, error) {
	listings, err := f.primary.Find(ctx, query)
	if err != nil {
		f.logger.Warn("finder failed, returning demo listing",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return Demo{}.Find(ctx, query)
	}
	return listings, nil
}

// jsonArray matches the outermost array of objects in free text, such as a
// model answer wrapped in prose or a code fence.
var jsonArray = regexp.MustCompile(`(?s)(\[\s*\{.*\}\s*\])`)

// Parse extracts listings from model output and normalises them: strings
// are trimmed, over-long fields truncated, and missing fields defaulted
// (deadline to "unknown").
func Parse(text string) ([]model.Scholarship, error) {
	text = strings.TrimSpace(text)
	raw := text
	if m := jsonArray.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoListings, err)
	}

	listings := make([]model.Scholarship, 0, len(items))
	for _, it := range items {
		deadline := truncate(field(it, "deadline", model.DeadlineUnknown), maxDeadlineLen)
		listings = append(listings, model.Scholarship{
			Name:     truncate(field(it, "name", ""), maxNameLen),
			Provider: truncate(field(it, "provider", ""), maxProviderLen),
			Deadline: &deadline,
			URL:      field(it, "url", ""),
		})
	}
	return listings, nil
}

// field reads item[key] as trimmed text. Absent and null values give def;
// non-string values give their JSON text.
func field(item map[string]any, key, def string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return strings.TrimSpace(string(b))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
