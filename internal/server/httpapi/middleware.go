package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/server/auth"
	"github.com/tenantive/jobboard/internal/tenant"
)

const (
	ctxTenant    = "tenant"
	ctxRequestID = "request_id"
)

// requestID tags every request with a correlation id, echoed back in the
// X-Request-ID header and attached to the request logger.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// accessLog logs one line per request.
func accessLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetString(ctxRequestID),
		)
	}
}

// tenantResolver extracts the calling tenant: a bearer token with a
// tenant-id claim when the Authorization header is present, otherwise the
// ?tenant= query parameter. Requests without a resolvable tenant are
// rejected before reaching a handler.
func tenantResolver(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := resolveTenant(c, secretKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, errInvalidTenant)
			return
		}
		c.Set(ctxTenant, id)
		c.Next()
	}
}

func resolveTenant(c *gin.Context, secretKey []byte) (tenant.ID, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return 0, false
		}
		id, err := auth.TenantFromToken(token, secretKey)
		if err != nil {
			return 0, false
		}
		return id, true
	}

	id, err := tenant.ParseID(c.Query("tenant"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// tenantFromContext returns the tenant id stored by tenantResolver.
func tenantFromContext(c *gin.Context) tenant.ID {
	return c.MustGet(ctxTenant).(tenant.ID)
}
