package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type middleware struct {
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

type Option func(*middleware)

// WithRateLimit overrides the per-IP token bucket.
func WithRateLimit(reqRate rate.Limit, burstSize int) Option {
	return func(m *middleware) {
		m.rateLimitter = newRateLimiter(reqRate, burstSize)
	}
}

func New(logger *logrus.Logger, opts ...Option) Middleware {
	m := &middleware{
		rateLimitter:        newRateLimiter(50, 100),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}
