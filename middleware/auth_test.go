package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"elevatortrack/config"
	"elevatortrack/models"
	"elevatortrack/utils"
)

func TestMain(m *testing.M) {
	config.AppConfig.JWTSecret = "test-secret"
	m.Run()
}

func newProtectedApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	app := fiber.New()
	app.Get("/me", Protected(db), func(c *fiber.Ctx) error {
		admin := c.Locals("admin").(*models.Admin)
		return c.JSON(fiber.Map{"email": admin.Email})
	})
	return app, db
}

func TestProtected(t *testing.T) {
	app, db := newProtectedApp(t)

	admin := models.Admin{Email: "admin@example.com"}
	require.NoError(t, db.Create(&admin).Error)
	token, err := utils.GenerateAdminToken(&admin)
	require.NoError(t, err)

	// Bearer header
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Session cookie
	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtected_Rejections(t *testing.T) {
	app, db := newProtectedApp(t)

	admin := models.Admin{Email: "admin@example.com"}
	require.NoError(t, db.Create(&admin).Error)
	token, err := utils.GenerateAdminToken(&admin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{name: "no credentials"},
		{name: "malformed header", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "garbage cookie", cookie: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}

	// A valid token for a deleted admin is rejected too
	require.NoError(t, db.Unscoped().Delete(&admin).Error)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
