package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"

// Subject is the authenticated caller stored in the request locals.
type Subject struct {
	ID string
}

func Sign(data map[string]interface{}, expiresIn time.Duration) (string, int64, error) {
	expiredAt := time.Now().Add(expiresIn).Unix()

	secret := os.Getenv(AccessTokenSecret)
	if secret == "" {
		return "", 0, fmt.Errorf("%s not set", AccessTokenSecret)
	}

	claims := jwt.MapClaims{}
	for k, v := range data {
		claims[k] = v
	}
	claims["exp"] = expiredAt
	claims["iat"] = time.Now().Unix()

	logrus.WithField("sub", claims["sub"]).Debug("Creating token")

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// Verify parses a raw token signed with the secret stored in secretEnvKey.
func Verify(accessToken, secretEnvKey string) (*jwt.Token, error) {
	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	return jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
}

func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get("Authorization")
	if header == "" {
		return nil, errors.New("empty Authorization header")
	}

	accessToken, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		log.Debug("Invalid Authorization format")
		return nil, errors.New("invalid Authorization format")
	}

	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, errors.New("empty token")
	}

	token, err := Verify(accessToken, secretEnvKey)
	if err != nil {
		log.WithError(err).Debug("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

func GetSubject(c *fiber.Ctx) (Subject, error) {
	subject, ok := c.Locals("subject").(Subject)
	if !ok || subject.ID == "" {
		return Subject{}, fiber.ErrUnauthorized
	}

	return subject, nil
}
