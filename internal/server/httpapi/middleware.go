package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// requireAuth resolves the bearer token into an Identity stored on the
// request. Requests without a valid token are answered with 401.
func (s *HTTPServer) requireAuth(c *gin.Context) {
	header := c.GetHeader(common.AuthorizationHeaderName)

	var token string
	if strings.HasPrefix(header, common.BearerPrefix) {
		token = strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
	}
	if token == "" {
		s.writeError(c, common.ErrMissingToken)
		return
	}

	identity, err := s.services.Users.ValidateToken(token)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Set(identityKey, identity)
	c.Next()
}

// ownerID returns the owner proven by requireAuth.
func ownerID(c *gin.Context) string {
	v, ok := c.Get(identityKey)
	if !ok {
		return ""
	}
	return v.(*models.Identity).OwnerID
}

func (s *HTTPServer) accessLog(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path

	c.Next()

	s.logger.Info(c.Request.Context(), "HTTP request",
		"method", c.Request.Method,
		"path", path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", rec)
		fail(c, http.StatusInternalServerError, internalMessage)
	})
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	})
}
