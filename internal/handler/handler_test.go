package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/scholarship-globe/internal/auth"
	"github.com/sakif/scholarship-globe/internal/finder"
	"github.com/sakif/scholarship-globe/internal/handler"
	"github.com/sakif/scholarship-globe/internal/model"
	"github.com/sakif/scholarship-globe/internal/repository/sqlstore"
	"github.com/sakif/scholarship-globe/internal/service"
)

// newTestAPI wires the handlers to an in-memory SQLite store and the demo
// finder, with the same routes the API server mounts.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", "scholarship-globe", time.Hour)
	require.NoError(t, err)

	accounts := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(4), logger)
	scholarships := service.NewScholarshipService(finder.Demo{}, db, logger)

	ah := handler.NewAuthHandler(accounts, logger)
	sh := handler.NewScholarshipHandler(scholarships, logger)

	r := chi.NewRouter()
	r.Post("/auth/signup", ah.HandleSignup)
	r.Post("/auth/login", ah.HandleLogin)
	r.Post("/fetch-scholarships", sh.HandleFetch)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/me", ah.HandleMe)
		r.Post("/scholarships/save", sh.HandleSave)
		r.Get("/scholarships/saved", sh.HandleListSaved)
		r.Delete("/scholarships/saved/{id}", sh.HandleDeleteSaved)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func signupBody(email string) handler.SignupRequest {
	return handler.SignupRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

// signupAndLogin creates an account and returns its token response.
func signupAndLogin(t *testing.T, h http.Handler, email string) handler.TokenResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/auth/signup", "", signupBody(email))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/auth/login", "", handler.LoginRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tok handler.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tok))
	return tok
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var e handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&e))
	return e
}

func TestAuthHandler_Signup(t *testing.T) {
	h := newTestAPI(t)

	t.Run("success", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/auth/signup", "", signupBody("ada@example.com"))
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"message":"Signup successful"}`, rr.Body.String())
	})

	t.Run("duplicate email", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/auth/signup", "", signupBody("ADA@example.com"))
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "conflict", decodeError(t, rr).Error)
	})

	t.Run("passwords do not match", func(t *testing.T) {
		body := signupBody("grace@example.com")
		body.ConfirmPassword = "other1"
		rr := do(t, h, http.MethodPost, "/auth/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Passwords do not match", decodeError(t, rr).Message)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/auth/signup", "", `{"first_name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Error)
	})
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	h := newTestAPI(t)
	tok := signupAndLogin(t, h, "ada@example.com")

	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "Ada", tok.FirstName)
	assert.NotEmpty(t, tok.UserID)

	rr := do(t, h, http.MethodGet, "/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var me handler.MeResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&me))
	assert.Equal(t, handler.MeResponse{
		ID:        tok.UserID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}, me)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	h := newTestAPI(t)
	signupAndLogin(t, h, "ada@example.com")

	rr := do(t, h, http.MethodPost, "/auth/login", "", handler.LoginRequest{Email: "ada@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, rr).Message)
}

func TestAuthHandler_MeRequiresToken(t *testing.T) {
	h := newTestAPI(t)

	for _, token := range []string{"", "garbage"} {
		rr := do(t, h, http.MethodGet, "/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "token %q", token)
		assert.Equal(t, "Invalid auth token", decodeError(t, rr).Message)
	}
}

func TestScholarshipHandler_Fetch(t *testing.T) {
	h := newTestAPI(t)

	t.Run("demo listing", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/fetch-scholarships", "", handler.FetchRequest{Country: "Kenya"})
		require.Equal(t, http.StatusOK, rr.Code)

		var got []model.Scholarship
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "Demo Scholarship", got[0].Name)
		assert.Equal(t, "unknown", got[0].DeadlineOrUnknown())
	})

	t.Run("empty country", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/fetch-scholarships", "", handler.FetchRequest{Country: " "})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestScholarshipHandler_SavedLifecycle(t *testing.T) {
	h := newTestAPI(t)
	ada := signupAndLogin(t, h, "ada@example.com")
	grace := signupAndLogin(t, h, "grace@example.com")

	// Save two listings; the second has no provider or deadline.
	rr := do(t, h, http.MethodPost, "/scholarships/save", ada.AccessToken, model.Scholarship{
		Name: "Chevening", Provider: "FCDO", Deadline: model.Deadline("2025-11-05"), URL: "https://chevening.org",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var first handler.MessageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&first))
	assert.Equal(t, "Saved", first.Message)
	assert.NotEmpty(t, first.ID)

	rr = do(t, h, http.MethodPost, "/scholarships/save", ada.AccessToken, map[string]string{
		"name": "Fulbright", "url": "https://fulbright.org",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Newest first, with defaults filled in.
	rr = do(t, h, http.MethodGet, "/scholarships/saved", ada.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var saved []model.Scholarship
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&saved))
	require.Len(t, saved, 2)
	assert.Equal(t, "Fulbright", saved[0].Name)
	assert.Equal(t, "", saved[0].Provider)
	assert.Equal(t, "unknown", saved[0].DeadlineOrUnknown())
	assert.Equal(t, "Chevening", saved[1].Name)

	// Another user sees nothing and cannot delete.
	rr = do(t, h, http.MethodGet, "/scholarships/saved", grace.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, h, http.MethodDelete, "/scholarships/saved/"+first.ID, grace.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The owner can delete, once.
	rr = do(t, h, http.MethodDelete, "/scholarships/saved/"+first.ID, ada.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Deleted"}`, rr.Body.String())

	rr = do(t, h, http.MethodDelete, "/scholarships/saved/"+first.ID, ada.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestScholarshipHandler_SaveRequiresAuth(t *testing.T) {
	h := newTestAPI(t)

	rr := do(t, h, http.MethodPost, "/scholarships/save", "", model.Scholarship{Name: "A", URL: "https://a"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestScholarshipHandler_SaveValidation(t *testing.T) {
	h := newTestAPI(t)
	tok := signupAndLogin(t, h, "ada@example.com")

	rr := do(t, h, http.MethodPost, "/scholarships/save", tok.AccessToken, model.Scholarship{Name: "A"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "url is required", decodeError(t, rr).Message)
}
