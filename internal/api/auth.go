package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reelsmith/internal/logging"
)

// Claims are the JWT claims accepted on protected routes.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenValidator verifies HS256 bearer tokens.
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator returns a validator for tokens signed with secret.
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Validate parses tokenString and returns its claims.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for subject valid for ttl. A zero ttl
// produces a token without expiry.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			s.writeError(w, http.StatusUnauthorized, errorUnauthorized, "")
			return
		}
		if _, err := s.auth.Validate(strings.TrimSpace(tokenString)); err != nil {
			logging.WithContext(r.Context(), s.logger).Debug("rejected bearer token",
				logging.String(logging.FieldEventType, "auth_rejected"),
				logging.Error(err),
			)
			s.writeError(w, http.StatusUnauthorized, errorUnauthorized, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
