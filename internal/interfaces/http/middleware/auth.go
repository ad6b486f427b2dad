package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/internal/interfaces/http/response"
	"blood-donate.backend/pkg/jwt"
	"blood-donate.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// IdentityKey is the context key for the verified identity
	IdentityKey = "identity"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserKey is the context key for the stored user loaded by RequireRole
	UserKey = "user"
)

// IdentityVerifier turns a bearer token into a verified identity
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*entities.Identity, error)
}

// UserLookup loads a stored user by email
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// FirebaseIdentityVerifier adapts the ID token verifier to IdentityVerifier
type FirebaseIdentityVerifier struct {
	verifier *jwt.Verifier
}

func NewFirebaseIdentityVerifier(verifier *jwt.Verifier) *FirebaseIdentityVerifier {
	return &FirebaseIdentityVerifier{verifier: verifier}
}

func (f *FirebaseIdentityVerifier) VerifyIDToken(ctx context.Context, token string) (*entities.Identity, error) {
	claims, err := f.verifier.ValidateToken(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrKeysUnavailable):
			return nil, domainerrors.Upstream("identity provider unavailable", err)
		case errors.Is(err, jwt.ErrExpiredToken):
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Token has expired", domainerrors.ErrTokenExpired)
		}
		return nil, domainerrors.Unauthorized("Invalid token")
	}

	return &entities.Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

// AuthMiddleware requires a valid bearer ID token. Nothing downstream runs without one.
func AuthMiddleware(verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			abortWith(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortWith(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		identity, err := verifier.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn(c.Request.Context(), "Token verification failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortWith(c, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserEmailKey, identity.Email)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserEmailKey, identity.Email))

		c.Next()
	}
}

// GetIdentity gets the verified identity from context
func GetIdentity(c *gin.Context) (*entities.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*entities.Identity)
	return identity, ok && identity != nil
}

// GetUserEmail gets the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetUser gets the stored user loaded by RequireRole
func GetUser(c *gin.Context) (*entities.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok && user != nil
}

// RequireRole loads the caller by verified email and requires one of roles.
// Blocked and unknown callers are rejected with 403.
func RequireRole(users UserLookup, roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, exists := GetUserEmail(c)
		if !exists || email == "" {
			abortWith(c, domainerrors.Unauthorized("missing verified identity"))
			return
		}

		user, err := users.GetByEmail(c.Request.Context(), email)
		if errors.Is(err, domainerrors.ErrNotFound) {
			abortWith(c, domainerrors.Forbidden("User profile not found"))
			return
		}
		if err != nil {
			abortWith(c, err)
			return
		}
		if user.IsBlocked() {
			abortWith(c, domainerrors.UserBlocked())
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Set(UserKey, user)
				c.Next()
				return
			}
		}

		abortWith(c, domainerrors.Forbidden("Insufficient permissions"))
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin(users UserLookup) gin.HandlerFunc {
	return RequireRole(users, entities.UserRoleAdmin)
}

// RequireAdminOrVolunteer creates a middleware that requires admin or volunteer role
func RequireAdminOrVolunteer(users UserLookup) gin.HandlerFunc {
	return RequireRole(users, entities.UserRoleAdmin, entities.UserRoleVolunteer)
}

func abortWith(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
