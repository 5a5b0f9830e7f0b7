package middleware

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"portfolioapi/internal/auth"
)

// LoggerWithWriter logs each HTTP request as one JSON line to w.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path (route path only, no query string)
// - status
// - latency (in milliseconds, as float)
// - ts (in loc)
// - uid and email (Firebase claims on authenticated routes)
// - trace_id (when the request carries a sampled span)
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	var mu sync.Mutex
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := finalStatus(c, err)

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		entry := map[string]any{
			"ts":         start.In(loc).Format(time.RFC3339Nano),
			"level":      levelFor(status),
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if uid := auth.UserUID(c); uid != "" {
			entry["uid"] = uid
		}
		if email := auth.UserEmail(c); email != "" {
			entry["email"] = email
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			entry["trace_id"] = sc.TraceID().String()
		}

		mu.Lock()
		_ = enc.Encode(entry)
		mu.Unlock()

		return err
	}
}

func levelFor(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	default:
		return "info"
	}
}
