package apiclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// DefaultLoginPath is where the authentication service accepts credentials.
const DefaultLoginPath = "/auth/login"

// ErrNoToken is returned when login succeeded but no token came back.
var ErrNoToken = errors.New("login response carried no access token")

// Credentials are posted as-is to the authentication service.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	AccessToken string `json:"accessToken"`
}

// Session is the outcome of a successful login.
type Session struct {
	AccessToken string
	// ExpiresAt comes from the token's exp claim; zero when the token has none.
	ExpiresAt time.Time
}

// Token implements TokenSource.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// Expired reports whether the token is past its exp claim.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Auth talks to the external authentication service.
type Auth struct {
	c    *Client
	path string
}

// NewAuth creates an authentication client. An empty path uses DefaultLoginPath.
func NewAuth(c *Client, path string) *Auth {
	if path == "" {
		path = DefaultLoginPath
	}
	return &Auth{c: c, path: path}
}

// Login exchanges credentials for a session. A rejected login is a
// *TransportError carrying the server's message.
func (a *Auth) Login(ctx context.Context, creds Credentials) (*Session, error) {
	op := "log in"
	req, err := jsonRequest(op, http.MethodPost, a.path, creds)
	if err != nil {
		return nil, err
	}
	// Login is anonymous even if the client carries a stale token.
	env, status, err := a.c.WithTokens(nil).do(ctx, req)
	if err != nil {
		return nil, err
	}

	var data loginData
	if _, err := decodeData(op, status, env, &data); err != nil {
		return nil, err
	}
	if data.AccessToken == "" {
		return nil, ErrNoToken
	}

	return &Session{
		AccessToken: data.AccessToken,
		ExpiresAt:   tokenExpiry(data.AccessToken),
	}, nil
}

// tokenExpiry reads exp without verifying the signature: the API verifies
// tokens, the dashboard only needs to know when to ask for a new one.
func tokenExpiry(token string) time.Time {
	parser := gojwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, gojwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
