// Package handler contains the HTTP handlers of the scholarship API.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (path params, JSON body, auth context)
// 2. Call the service layer
// 3. Write the HTTP response (status code, JSON body)
//
// Business rules live in internal/service; handlers are the glue between
// HTTP and those services.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/auth"
	"github.com/sakif/scholarship-globe/internal/service"
)

// AuthHandler serves signup, login, and the current-user endpoint.
type AuthHandler struct {
	accounts *service.AuthService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login. The dashboard stores
// AccessToken and FirstName as its session.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	FirstName   string `json:"first_name"`
	UserID      string `json:"user_id"`
}

// MeResponse is the body of GET /me.
type MeResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// HandleSignup creates an account.
//
// HTTP: POST /auth/signup
// RESPONSE: 201 {"message": "Signup successful"}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	_, err := h.accounts.Signup(r.Context(), service.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Signup successful"})
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /auth/login
// RESPONSE: {"access_token": "...", "token_type": "bearer", "first_name": "...", "user_id": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		FirstName:   result.User.FirstName,
		UserID:      result.User.ID,
	})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /me (behind auth.RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Invalid auth token"))
		return
	}

	user, err := h.accounts.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Warn("HandleMe: lookup failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
}
