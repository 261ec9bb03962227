package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/scholarship-globe/internal/config"
	"github.com/sakif/scholarship-globe/internal/geo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAPIConfig() config.APIConfig {
	cfg := config.DefaultConfig().API
	cfg.DatabaseURL = ":memory:"
	cfg.JWTSecret = "test-secret-at-least-16-chars!!"
	return cfg
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestNewAPI_SignupLoginSave(t *testing.T) {
	s, err := NewAPI(context.Background(), testAPIConfig(), testLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts.URL+"/auth/signup", "", map[string]string{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"password": "secret1", "confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tok struct {
		AccessToken string `json:"access_token"`
		FirstName   string `json:"first_name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	assert.Equal(t, "Ada", tok.FirstName)

	resp = postJSON(t, ts.URL+"/scholarships/save", tok.AccessToken, map[string]string{
		"name": "Demo Scholarship", "url": "https://example.org/scholarship",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/scholarships/save", "", map[string]string{"name": "x", "url": "y"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNewAPI_DemoFinderWithoutKey(t *testing.T) {
	s, err := NewAPI(context.Background(), testAPIConfig(), testLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts.URL+"/fetch-scholarships", "", map[string]string{"country": "Peru"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listings []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "Demo Scholarship", listings[0]["name"])
}

func TestNewAPI_CORSPreflight(t *testing.T) {
	s, err := NewAPI(context.Background(), testAPIConfig(), testLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	req := httptest.NewRequest(http.MethodOptions, "/scholarships/saved", nil)
	req.Header.Set("Origin", "null")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "null", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewAPI_ShortSecret(t *testing.T) {
	cfg := testAPIConfig()
	cfg.JWTSecret = "short"

	_, err := NewAPI(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

func testDashboardConfig(apiBase string) config.DashboardConfig {
	cfg := config.DefaultConfig().Dashboard
	cfg.APIBase = apiBase
	cfg.TickInterval = time.Millisecond
	return cfg
}

func TestNewDashboard_RequiresSession(t *testing.T) {
	s, err := NewDashboard(testDashboardConfig("http://127.0.0.1:1"), nil, testLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestNewDashboard_ServesPage(t *testing.T) {
	countries := []geo.CountryFeature{}
	s, err := NewDashboard(testDashboardConfig("http://127.0.0.1:1"), countries, testLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tok"})
	req.AddCookie(&http.Cookie{Name: "first_name", Value: "Ada"})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, `id="globe"`)

	req = httptest.NewRequest(http.MethodGet, "/globe.svg", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tok"})
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newServer("test", 0, testLogger())

	var ran, closed atomic.Bool
	s.background = append(s.background, func(ctx context.Context) error {
		ran.Store(true)
		<-ctx.Done()
		return nil
	})
	s.onShutdown = append(s.onShutdown, func() { closed.Store(true) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, closed.Load())
}
