// Package middleware provides HTTP middleware for recruiter authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionHeader lets a client pin its reveal session when its token carries no subject.
const SessionHeader = "X-Session-ID"

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// sessionKey is the context key for storing the authenticated session.
const sessionKey ContextKey = "session"

// TokenValidator is an interface for checking bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (SubjectGetter, error)
}

// SubjectGetter is an interface for extracting the recruiter identity from token claims.
type SubjectGetter interface {
	GetSubject() string
}

// Session is the authenticated caller of a request.
type Session struct {
	Token   string // raw bearer token, forwarded to the backend
	Subject string // recruiter identity from the token, empty for opaque tokens
	Key     string // groups requests that share one reveal
}

// AuthMiddleware creates middleware that requires a bearer token and adds the session to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			session := &Session{
				Token:   tokenString,
				Subject: claims.GetSubject(),
			}
			session.Key = sessionKeyFor(session.Subject, r.Header.Get(SessionHeader))

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from a case-insensitive "Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// sessionKeyFor prefers the token subject, then the client's session header,
// and otherwise gives the request a session of its own.
func sessionKeyFor(subject, header string) string {
	if subject != "" {
		return "sub:" + subject
	}
	if header = strings.TrimSpace(header); header != "" {
		return "sid:" + header
	}
	return "anon:" + uuid.NewString()
}

// GetSession extracts the authenticated session from the request context.
func GetSession(r *http.Request) (*Session, error) {
	session, ok := r.Context().Value(sessionKey).(*Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in request context")
	}
	return session, nil
}

// WithSession returns a copy of ctx carrying session (for testing purposes).
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}
