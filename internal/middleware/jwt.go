package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/classboard/classboard-api/internal/graph"
	"github.com/classboard/classboard-api/internal/service"
)

// ResolveIdentity attaches caller claims to the request context when a valid
// bearer token is presented. It never blocks a request: reads and signup/login
// are open, and the access gate inside mutation resolvers rejects anonymous
// callers. Missing, malformed and expired tokens all resolve to anonymous.
func ResolveIdentity(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := authService.ResolveToken(c.GetHeader("Authorization")); claims != nil {
			c.Request = c.Request.WithContext(graph.WithViewer(c.Request.Context(), claims))
		}
		c.Next()
	}
}
