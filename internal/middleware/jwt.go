package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextTokenKey stores the raw bearer token of the current request.
const ContextTokenKey = "currentToken"

// TokenValidator parses and checks access tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error)
}

// Authenticate requires a valid, not logged out bearer token and stores its
// claims on the context. Validator failures are returned unchanged so the
// route wrapper decides how they are rendered.
func Authenticate(c *gin.Context, validator TokenValidator) (*models.JWTClaims, error) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}
	if validator == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "token validator missing")
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	c.Set(ContextUserKey, claims)
	c.Set(ContextTokenKey, token)
	return claims, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// CurrentClaims returns the claims stored by Authenticate, if any.
func CurrentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
