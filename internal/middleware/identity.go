package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sproutlingo-backend/internal/logger"
)

const userIDKey = "user_id"

// IdentityMiddleware trusts the authenticating gateway in front of this
// service: the caller's identity arrives as the X-User-ID header.
// Authentication itself happens upstream.
type IdentityMiddleware struct {
	log *logger.Logger
}

func NewIdentityMiddleware(log *logger.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{log: log.With("middleware", "IdentityMiddleware")}
}

func (m *IdentityMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid identity"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFrom pulls the identity set by RequireIdentity.
func UserIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
