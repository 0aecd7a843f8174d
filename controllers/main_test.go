package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"elevatortrack/config"
	"elevatortrack/middleware"
	"elevatortrack/models"
	"elevatortrack/utils"
)

func TestMain(m *testing.M) {
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.AppURL = "http://localhost:3000"
	config.AppConfig.Environment = "test"
	m.Run()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	discard := log.New(io.Discard, "", 0)

	authController := NewAuthController(db, discard)
	authController.SendMail = func(utils.EmailData) error { return nil }
	elevatorController := NewElevatorController(db, discard)
	reportController := NewReportController(db, discard)
	statsController := NewStatsController(db, discard)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/report", reportController.Submit)
	api.Patch("/report/:id", reportController.AttachName)
	api.Patch("/report/:id/suspicious", middleware.Protected(db), reportController.ToggleSuspicious)
	api.Post("/admin/invite", middleware.Protected(db), authController.Invite)

	elevators := api.Group("/elevators", middleware.Protected(db))
	elevators.Get("/", elevatorController.List)
	elevators.Post("/", elevatorController.Create)
	elevators.Put("/:id", elevatorController.Update)
	elevators.Delete("/:id", elevatorController.Delete)
	elevators.Get("/:id/qr", elevatorController.GetQR)
	elevators.Get("/:id/stats", statsController.GetElevatorStats)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func createAdmin(t *testing.T, db *gorm.DB, email string) (*models.Admin, string) {
	t.Helper()
	admin := models.Admin{Email: email}
	require.NoError(t, db.Create(&admin).Error)
	token, err := utils.GenerateAdminToken(&admin)
	require.NoError(t, err)
	return &admin, token
}

func createElevator(t *testing.T, db *gorm.DB, admin *models.Admin, name string) *models.Elevator {
	t.Helper()
	elevator := models.Elevator{
		PublicID:  uuid.NewString(),
		Name:      name,
		Languages: models.DefaultLanguage,
		AdminID:   admin.ID,
	}
	require.NoError(t, db.Create(&elevator).Error)
	require.NoError(t, db.Create(&models.ElevatorAccess{
		ElevatorID: elevator.ID,
		AdminID:    admin.ID,
		Role:       models.RoleOwner,
	}).Error)
	return &elevator
}

func createReport(t *testing.T, db *gorm.DB, elevator *models.Elevator, issueType, deviceHash, ip string, createdAt time.Time) *models.Report {
	t.Helper()
	report := models.Report{
		PublicID:   uuid.NewString(),
		ElevatorID: elevator.ID,
		IssueType:  issueType,
		IPAddress:  ip,
	}
	if deviceHash != "" {
		report.DeviceHash = &deviceHash
	}
	require.NoError(t, db.Create(&report).Error)
	require.NoError(t, db.Model(&report).Update("created_at", createdAt).Error)
	return &report
}
