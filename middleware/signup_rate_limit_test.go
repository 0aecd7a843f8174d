package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevatortrack/config"
)

func TestSignupRateLimiter(t *testing.T) {
	config.AppConfig.RateLimitSignup = 3
	config.AppConfig.Redis.Enabled = false

	app := fiber.New()
	app.Post("/auth/signup", SignupRateLimiter(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// Requests within the limit pass through
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/auth/signup", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "request %d within limit", i+1)
	}

	// The next request from the same origin is rejected
	req := httptest.NewRequest("POST", "/auth/signup", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1 hour", body["retry_after"])
	assert.NotEmpty(t, body["error"])
}
