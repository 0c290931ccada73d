package handlerUtil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"EmotionLens/pkg/response"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	l := logrus.New()
	l.SetOutput(io.Discard)
	h := New(l)

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"response error", fmt.Errorf("wrap: %w", response.NewError(http.StatusServiceUnavailable, "not ready")), 503},
		{"timeout", fmt.Errorf("run: %w", context.DeadlineExceeded), 408},
		{"fiber error", fiber.ErrUnprocessableEntity, 422},
		{"unexpected", errors.New("boom"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tc.err, c.Path(), "test")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}
