package finder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/scholarship-globe/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listing(name, provider, deadline, url string) model.Scholarship {
	return model.Scholarship{Name: name, Provider: provider, Deadline: model.Deadline(deadline), URL: url}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.Scholarship
	}{
		{
			name: "bare array",
			text: `[{"name":"Fulbright","provider":"State Dept","deadline":"2025-10-01","url":"https://fulbright.org"}]`,
			want: []model.Scholarship{listing("Fulbright", "State Dept", "2025-10-01", "https://fulbright.org")},
		},
		{
			name: "wrapped in prose and a code fence",
			text: "Here you go:\n```json\n[\n {\"name\": \" Chevening \", \"provider\": \"FCDO\", \"url\": \"https://chevening.org\"}\n]\n```\nGood luck!",
			want: []model.Scholarship{listing("Chevening", "FCDO", "unknown", "https://chevening.org")},
		},
		{
			name: "nulls and non-strings",
			text: `[{"name": 42, "provider": null, "deadline": null, "url": "u"}]`,
			want: []model.Scholarship{listing("42", "", "unknown", "u")},
		},
		{
			name: "empty array",
			text: `[]`,
			want: []model.Scholarship{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Truncates(t *testing.T) {
	long := strings.Repeat("é", 400)
	text, _ := json.Marshal([]map[string]string{{
		"name": long, "provider": long, "deadline": long, "url": long,
	}})

	got, err := Parse(string(text))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, 300, len([]rune(got[0].Name)))
	assert.Equal(t, 300, len([]rune(got[0].Provider)))
	assert.Equal(t, 50, len([]rune(*got[0].Deadline)))
	assert.Equal(t, 400, len([]rune(got[0].URL)), "urls are not truncated")
}

func TestParse_NoArray(t *testing.T) {
	_, err := Parse("Sorry, I can't help with that.")
	assert.ErrorIs(t, err, ErrNoListings)
}

type stubFinder struct {
	listings []model.Scholarship
	err      error
}

func (s stubFinder) Find(context.Context, string) ([]model.Scholarship, error) {
	return s.listings, s.err
}

func TestWithFallback(t *testing.T) {
	ok := []model.Scholarship{listing("Real", "P", "unknown", "u")}

	got, err := WithFallback(stubFinder{listings: ok}, discardLogger()).Find(context.Background(), "Peru")
	require.NoError(t, err)
	assert.Equal(t, ok, got)

	got, err = WithFallback(stubFinder{err: errors.New("quota")}, discardLogger()).Find(context.Background(), "Peru")
	require.NoError(t, err)
	assert.Equal(t, []model.Scholarship{DemoScholarship()}, got)
}

func TestDemo(t *testing.T) {
	got, err := Demo{}.Find(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Demo Scholarship", got[0].Name)
	assert.Equal(t, "Example Foundation", got[0].Provider)
	assert.Equal(t, "unknown", got[0].DeadlineOrUnknown())
	assert.Equal(t, "https://example.org/scholarship", got[0].URL)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "", discardLogger())
	assert.Error(t, err)
}

func TestGemini_Find(t *testing.T) {
	answer := "```json\n[{\"name\":\"DAAD\",\"provider\":\"DAAD\",\"deadline\":\"2025-11-15\",\"url\":\"https://daad.de\"}]\n```"

	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "models/test-model:generateContent")

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": answer}},
				},
			}},
		})
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "test-key", "test-model", discardLogger(),
		WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	got, err := g.Find(context.Background(), "Germany")
	require.NoError(t, err)

	assert.Equal(t, []model.Scholarship{listing("DAAD", "DAAD", "2025-11-15", "https://daad.de")}, got)
	assert.Contains(t, prompt, "scholarships for students in Germany")
}
