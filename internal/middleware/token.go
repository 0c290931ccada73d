package middleware

import (
	jwtPkg "EmotionLens/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	userToken, err := jwtPkg.VerifyTokenHeader(ctx, jwtPkg.AccessTokenSecret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"path":      ctx.Path(),
			"client_ip": ctx.IP(),
			"error":     err.Error(),
		}).Warn("Token verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		m.log.WithFields(logrus.Fields{
			"error": "Token claims are missing the subject",
		}).Warn("Token claims check")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	ctx.Locals("subject", jwtPkg.Subject{ID: sub})

	m.log.WithField("sub", sub).Debug("Authentication successful")
	return ctx.Next()
}
