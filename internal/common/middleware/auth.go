package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireModerator allows only the configured moderator accounts through.
// Depends on TelegramInitData having run first.
func RequireModerator(moderatorIDs []int64) gin.HandlerFunc {
	allowed := make(map[int64]struct{}, len(moderatorIDs))
	for _, id := range moderatorIDs {
		allowed[id] = struct{}{}
	}

	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if _, isModerator := allowed[userID]; !isModerator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Moderator access required"})
			return
		}
		c.Next()
	}
}
