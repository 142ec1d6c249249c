package middlewares

import (
	"strings"

	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/gin-gonic/gin"
)

const SessionHeader = "x-session-id"

// SessionMiddleware carries the client's view session, whose temporal
// transactions are merged into the counterparty lists. The header wins over
// the sesion query parameter.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.Request.Header.Get(SessionHeader))
		if sid == "" {
			sid = strings.TrimSpace(c.Query("sesion"))
		}
		if sid == "" {
			c.Next()
			return
		}
		ctx := utils.SetSessionIdInContext(c.Request.Context(), sid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
