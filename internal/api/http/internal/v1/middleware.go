package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/souqly/backend/pkg/auth"
	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userId"
	roleCtx             = "userRole"
)

func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	id, role, err := h.parseAuthHeader(c)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			logger.Error("parse auth header failed", zap.Error(err))
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(userCtx, id)
	c.Set(roleCtx, role)
}

// adminIdentityMiddleware runs after userIdentityMiddleware and requires the
// admin role claim. Role assignment itself belongs to the auth service.
func (h *Handler) adminIdentityMiddleware(c *gin.Context) {
	if c.GetString(roleCtx) != auth.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
	}
}

func (h *Handler) parseAuthHeader(c *gin.Context) (string, string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", "", errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", "", errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return "", "", errors.New("token is empty")
	}

	return h.tokenManager.Parse(headerParts[1])
}

func (h *Handler) getUserUUID(c *gin.Context) (uuid.UUID, error) {
	id, ok := c.Get(userCtx)
	if !ok {
		return uuid.Nil, errors.New("user id not found")
	}

	raw, ok := id.(string)
	if !ok {
		return uuid.Nil, errors.New("user id has wrong type")
	}

	return uuid.Parse(raw)
}
