package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/scholarship-globe/internal/apiclient"
	"github.com/sakif/scholarship-globe/internal/model"
	"github.com/sakif/scholarship-globe/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, h http.HandlerFunc, sess session.Session) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL, sess, testLogger())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRequest_InjectsBearerToken(t *testing.T) {
	var gotAuth, gotType string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, []any{})
	}, session.New("secret-token", "Ada"))

	_, err := c.Get(context.Background(), "/scholarships/saved")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotType)
}

func TestRequest_NoTokenNoAuthorizationHeader(t *testing.T) {
	var sawAuth bool
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}, session.Session{})

	_, err := c.Get(context.Background(), "/anything")
	require.NoError(t, err)
	assert.False(t, sawAuth, "Authorization header must not be sent without a token")
}

func TestRequest_CallerHeadersMerge(t *testing.T) {
	var got http.Header
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}, session.New("tok", ""))

	_, err := c.Request(context.Background(), "/x", apiclient.Options{
		Method: http.MethodPut,
		Header: http.Header{
			"Content-Type": {"text/plain"},
			"X-Trace":      {"abc"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "text/plain", got.Get("Content-Type"))
	assert.Equal(t, "abc", got.Get("X-Trace"))
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
}

func TestRequest_ParsesByContentType(t *testing.T) {
	t.Run("json is structured", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Saved"})
		}, session.Session{})

		body, err := c.Get(context.Background(), "/")
		require.NoError(t, err)
		assert.True(t, body.Structured)

		var out map[string]string
		require.NoError(t, body.Decode(&out))
		assert.Equal(t, "Saved", out["message"])
	})

	t.Run("text stays raw", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, "pong")
		}, session.Session{})

		body, err := c.Get(context.Background(), "/")
		require.NoError(t, err)
		assert.False(t, body.Structured)
		assert.Equal(t, "pong", body.Text())

		var out any
		assert.ErrorIs(t, body.Decode(&out), apiclient.ErrNotJSON)
	})
}

func TestRequest_ErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "detail wins",
			status:      http.StatusTooManyRequests,
			contentType: "application/json",
			body:        `{"detail":"rate limited","message":"ignored"}`,
			wantMessage: "rate limited",
		},
		{
			name:        "message fallback",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"error":"not_found","message":"scholarship not found with id 1"}`,
			wantMessage: "scholarship not found with id 1",
		},
		{
			name:        "empty detail falls through to message",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"detail":"","message":"bad"}`,
			wantMessage: "bad",
		},
		{
			name:        "non-string detail uses its JSON text",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"detail":[{"loc":["body","country"]}]}`,
			wantMessage: `[{"loc":["body","country"]}]`,
		},
		{
			name:        "unparseable body falls back to status line",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        `<html>oops</html>`,
			wantMessage: "502 Bad Gateway",
		},
		{
			name:        "json without known fields falls back to status line",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"error":"internal_error"}`,
			wantMessage: "500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, session.Session{})

			_, err := c.Get(context.Background(), "/")
			require.Error(t, err)

			var reqErr *apiclient.RequestError
			require.True(t, errors.As(err, &reqErr), "error should be a *RequestError")
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.wantMessage, reqErr.Error())
		})
	}
}

func TestRequest_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := apiclient.New(url, session.New("tok", ""), testLogger())
	_, err := c.Get(context.Background(), "/scholarships/saved")

	var reqErr *apiclient.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.NotEmpty(t, reqErr.Message)
}

func TestFetchScholarships(t *testing.T) {
	var gotBody map[string]string
	var gotPath, gotMethod string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"name": "Fulbright", "provider": "Dept", "deadline": "2025-01-01", "url": "http://a"},
			{"name": "Chevening", "provider": "FCDO", "deadline": nil, "url": "http://b"},
		})
	}, session.New("tok", ""))

	got, err := c.FetchScholarships(context.Background(), "US")
	require.NoError(t, err)

	assert.Equal(t, apiclient.PathFetch, gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, map[string]string{"country": "US"}, gotBody)

	require.Len(t, got, 2)
	assert.Equal(t, "Fulbright", got[0].Name)
	assert.Equal(t, "2025-01-01", got[0].DeadlineOrUnknown())
	assert.Nil(t, got[1].Deadline)
	assert.Equal(t, model.DeadlineUnknown, got[1].DeadlineOrUnknown())
}

func TestFetchScholarships_NullIsEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "null")
	}, session.Session{})

	got, err := c.FetchScholarships(context.Background(), "US")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveScholarship_SendsPayloadWithoutID(t *testing.T) {
	var got map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiclient.PathSave, r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Saved", "id": "x"})
	}, session.New("tok", ""))

	err := c.SaveScholarship(context.Background(), model.Scholarship{
		ID:       "should-not-be-sent",
		Name:     "Fulbright",
		Provider: "Dept",
		URL:      "http://a",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":     "Fulbright",
		"provider": "Dept",
		"deadline": nil,
		"url":      "http://a",
	}, got)
}

func TestDeleteSaved(t *testing.T) {
	var gotPath, gotMethod string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
	}, session.New("tok", ""))

	require.NoError(t, c.DeleteSaved(context.Background(), "cv37rs3pp9olc6atsptg"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/scholarships/saved/cv37rs3pp9olc6atsptg", gotPath)
}

func TestLogin(t *testing.T) {
	var got map[string]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "jwt-token",
			"token_type":   "bearer",
			"first_name":   "Ada",
			"user_id":      "u1",
		})
	}, session.Session{})

	sess, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.New("jwt-token", "Ada"), sess)
	assert.Equal(t, map[string]string{"email": "ada@example.com", "password": "secret1"}, got)
}

func TestLogin_Rejected(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "unauthorized",
			"message": "Invalid email or password",
		})
	}, session.Session{})

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")

	var reqErr *apiclient.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Invalid email or password", reqErr.Message)
}
