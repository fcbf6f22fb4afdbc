package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/invoices_backend/utils"
)

const (
	CorrelationIdHeader = "x-correlation-id"

	maxCorrelationIdLength = 64
)

// CorrelationIdMiddleware reuses the caller's correlation id or generates one, and echoes it back.
// Ids that are too long or carry characters outside [A-Za-z0-9._-] are replaced.
func CorrelationIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(CorrelationIdHeader)
		if !validCorrelationId(cid) {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Header(CorrelationIdHeader, cid)
		c.Next()
	}
}

func validCorrelationId(cid string) bool {
	if cid == "" || len(cid) > maxCorrelationIdLength {
		return false
	}
	for i := 0; i < len(cid); i++ {
		switch ch := cid[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}
