package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/pkg/middleware/requestid"
)

const responseMetaKey = "response_meta"

// responseMeta collects what handlers learn about a request while serving it.
type responseMeta struct {
	started  time.Time
	cacheHit *bool
}

// WithResponseMeta starts the per-request meta record read by ExtractMeta.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{started: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the payload came from the read cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if meta := metaOf(c); meta != nil {
		meta.cacheHit = &hit
	}
}

// ExtractMeta renders the envelope meta block: cache_hit when a cached read
// ran, the request id and the time spent so far.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := metaOf(c)
	if meta == nil {
		return nil
	}
	out := map[string]interface{}{
		"processing_time_ms": time.Since(meta.started).Milliseconds(),
	}
	if meta.cacheHit != nil {
		out["cache_hit"] = *meta.cacheHit
	}
	if id := requestid.Value(c); id != "" {
		out["request_id"] = id
	}
	return out
}

func metaOf(c *gin.Context) *responseMeta {
	if c == nil {
		return nil
	}
	v, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, _ := v.(*responseMeta)
	return meta
}
