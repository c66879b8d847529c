package server

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/jdstudio/internal/config"
	"github.com/jonathan/jdstudio/internal/server/middleware"
)

// Claims represents the recruiter session token issued by the backend.
type Claims struct {
	RecruiterID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// GetSubject returns the recruiter identity from the claims.
// This implements the middleware.SubjectGetter interface.
func (c *Claims) GetSubject() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.RecruiterID
}

// AsTokenValidator returns a TokenValidator adapter for this JWTService.
// This allows the JWTService to be used with middleware without creating import cycles.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return &jwtServiceValidator{service: s}
}

// jwtServiceValidator adapts JWTService to middleware.TokenValidator interface.
type jwtServiceValidator struct {
	service *JWTService
}

func (v *jwtServiceValidator) ValidateToken(tokenString string) (middleware.SubjectGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// JWTService pre-checks backend session tokens. With a secret configured it verifies
// HS256 signatures; otherwise it only rejects expired or not-yet-valid JWTs and lets
// opaque tokens through for the backend to judge.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	if cfg == nil {
		cfg = &config.JWTConfig{}
	}
	return &JWTService{
		config: cfg,
	}
}

// ValidateToken checks a token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	if s.config.Verifies() {
		return s.verify(tokenString)
	}
	return s.precheck(tokenString)
}

// verify parses the token and checks its signature and time claims.
func (s *JWTService) verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithLeeway(s.config.Leeway))

	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// precheck reads the claims without verifying the signature and checks only the time claims.
func (s *JWTService) precheck(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			// Not a JWT; the backend decides.
			return &Claims{}, nil
		}
		return nil, classifyTokenError(err)
	}

	if err := jwt.NewValidator(jwt.WithLeeway(s.config.Leeway)).Validate(claims); err != nil {
		return nil, classifyTokenError(err)
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("invalid token signature: %w", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("token expired: %w", err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("token not valid yet: %w", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("malformed token: %w", err)
	default:
		return fmt.Errorf("failed to parse token: %w", err)
	}
}
