package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"prep-service/internal/cache"
	"prep-service/internal/models"
)

// Identity is forwarded by the gateway; this service trusts its headers.
const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
	headerUserTier  = "X-User-Tier"
)

func userID(c *gin.Context) string {
	return c.GetHeader(headerUserID)
}

func userTier(c *gin.Context) models.Tier {
	tier := models.Tier(c.GetHeader(headerUserTier))
	if tier == "" {
		tier = models.TierFree
	}
	return tier
}

// RequireUser rejects requests with no forwarded identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates editorial endpoints on the allowlist cache.
func RequireAdmin(allowlist *cache.AdminAllowlist) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(headerUserEmail)
		if !allowlist.Contains(context.Background(), email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
