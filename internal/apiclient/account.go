package apiclient

import (
	"context"
	"fmt"

	"github.com/sakif/scholarship-globe/internal/session"
)

// PathLogin is the API's credential exchange route.
const PathLogin = "/auth/login"

// Login exchanges credentials for a session. The client itself may be
// anonymous; the returned session is what later clients are built with.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	body, err := c.Post(ctx, PathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return session.Session{}, err
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		FirstName   string `json:"first_name"`
	}
	if err := body.Decode(&tok); err != nil {
		return session.Session{}, &RequestError{
			Message: fmt.Sprintf("unexpected response: %v", err),
			Err:     err,
		}
	}
	if tok.AccessToken == "" {
		return session.Session{}, &RequestError{Message: "login response carried no access token"}
	}
	return session.New(tok.AccessToken, tok.FirstName), nil
}
