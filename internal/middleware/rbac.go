package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
)

// AdminOnly wraps next so it only runs for an authenticated admin or super
// admin. Every failure is returned, never written, leaving rendering to the
// caller.
func AdminOnly(validator TokenValidator, next func(*gin.Context) error) func(*gin.Context) error {
	return func(c *gin.Context) error {
		claims, err := Authenticate(c, validator)
		if err != nil {
			return err
		}
		if err := RequireAdmin(claims); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireAdmin rejects missing claims with 401 and non-admin roles with 403.
func RequireAdmin(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if !claims.Role.IsAdmin() {
		return appErrors.ErrForbidden
	}
	return nil
}
