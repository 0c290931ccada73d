package middleware

import (
	"strings"
	"time"

	"EmotionLens/pkg/log"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

const maxLoggedField = 64

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := m.GetRequestID(c)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 {
			logFields["request_body"] = sanitizeRequestBody(string(c.Request().Header.ContentType()), body)
		}

		entry := m.log.WithFields(logFields)
		if status >= 500 {
			entry.Error("Server error")
		} else if status >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Success")
		}

		return err
	}
}

// sanitizeRequestBody hides secrets and truncates long values such as
// inline base64 images.
func sanitizeRequestBody(contentType string, body []byte) string {
	if !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		return "[non-JSON body]"
	}

	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal(body, &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	sensitiveFields := []string{
		"password", "token", "secret", "key", "auth",
		"credential", "authorization",
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	for k, v := range jsonBody {
		if s, ok := v.(string); ok && len(s) > maxLoggedField {
			jsonBody[k] = s[:maxLoggedField] + "...[truncated]"
		}
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
