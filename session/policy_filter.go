package session

import (
	"tenantry/authority"

	"github.com/gin-gonic/gin"
)

// PolicyFilter enforces policy for the matched route before the handler runs.
// It must be installed after SimpleAuthFilter.
func PolicyFilter(policy authority.Policy) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s := ExtractSessionFromGinContext(ctx)
		if err := policy.Authorize(ctx.Request.Method, ctx.FullPath(), s.Perms); err != nil {
			panic(err)
		}
		ctx.Next()
	}
}
