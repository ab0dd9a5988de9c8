package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedulifyx-api/internal/middleware"
	"github.com/noah-isme/schedulifyx-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentClaims(c)
}

func currentUserID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
