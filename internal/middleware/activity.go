package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// ActivityRecorder accepts trail entries without blocking.
type ActivityRecorder interface {
	Record(entry models.ActivityLog)
}

// Activity records successful writes after the handler has run. Reads and
// failed requests are not recorded.
func Activity(recorder ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil || !isWrite(c.Request.Method) {
			return
		}
		status := c.Writer.Status()
		if status >= 400 {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := models.ActivityLog{
			Action:    actionFor(c.Request.Method),
			Resource:  resourceFor(path),
			Path:      c.Request.URL.Path,
			Status:    status,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: time.Now().UTC(),
		}
		if claims, ok := CurrentClaims(c); ok {
			id := claims.UserID
			entry.UserID = &id
		}
		recorder.Record(entry)
	}
}

func actionFor(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	}
	return strings.ToLower(method)
}

// resourceFor picks the first static segment after the version prefix,
// e.g. /api/v1/expenses/:id -> expenses.
func resourceFor(route string) string {
	for _, seg := range strings.Split(strings.Trim(route, "/"), "/") {
		if seg == "" || seg == "api" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			continue
		}
		if len(seg) > 1 && seg[0] == 'v' && seg[1] >= '0' && seg[1] <= '9' {
			continue
		}
		return seg
	}
	return "root"
}
