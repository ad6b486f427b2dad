package jwt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrKeysUnavailable = errors.New("signing keys unavailable")
)

const firebaseIssuerPrefix = "https://securetoken.google.com/"

// Claims represents the Firebase ID token claims read by the API
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// KeyProvider resolves a signing key by key id
type KeyProvider interface {
	Key(ctx context.Context, kid string) (interface{}, error)
}

// Verifier validates RS256 ID tokens issued for one Firebase project
type Verifier struct {
	projectID string
	keys      KeyProvider
	leeway    time.Duration
}

// NewVerifier creates a new token verifier
func NewVerifier(projectID string, keys KeyProvider) *Verifier {
	return &Verifier{
		projectID: projectID,
		keys:      keys,
		leeway:    30 * time.Second,
	}
}

// ValidateToken validates an ID token and returns its claims.
// Key retrieval failures are reported as ErrKeysUnavailable, not as a bad token.
func (v *Verifier) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if v.projectID == "" {
		return nil, ErrKeysUnavailable
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, ErrInvalidToken
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrKeysUnavailable):
			return nil, ErrKeysUnavailable
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || strings.TrimSpace(claims.Email) == "" {
		return nil, ErrInvalidToken
	}
	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))

	return claims, nil
}
