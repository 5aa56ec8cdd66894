package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentadmin/internal/app/middleware"
	domainrooms "rentadmin/internal/domain/rooms"
)

// TenantHeader names the tenant the caller acts for. The gateway in front of the admin API sets
// it after authenticating the session.
const TenantHeader = "X-Tenant-ID"

// RequireTenant rejects requests whose header is missing or names a different tenant than the
// path, and records the caller's tenant for the bus authorization middleware.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(TenantHeader))
		path := c.Param("tenant")
		if header == "" || !strings.EqualFold(header, path) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant access denied"})
			return
		}
		ctx := middleware.WithCallerTenant(c.Request.Context(), domainrooms.TenantID(header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
