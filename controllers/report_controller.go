package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"elevatortrack/models"
	"elevatortrack/utils"
)

// Intake limits. One report per (elevator, device) per hour, and at most
// five reports from one origin address per hour across all elevators.
const (
	DeviceCooldown     = time.Hour
	OriginLimitWindow  = time.Hour
	OriginLimitMax     = 5
	ReporterNameMaxLen = 255
)

type ReportController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReportController(db *gorm.DB, logger *log.Logger) *ReportController {
	return &ReportController{
		DB:     db,
		Logger: logger,
	}
}

type SubmitReportRequest struct {
	ElevatorID string `json:"elevator_id"`
	IssueType  string `json:"issue_type"`
	DeviceHash string `json:"device_hash"`

	// Honeypot is a hidden form field legitimate clients never populate.
	Honeypot string `json:"honeypot"`
}

type AttachNameRequest struct {
	ReporterName string `json:"reporter_name"`
}

type ToggleSuspiciousRequest struct {
	Suspicious bool `json:"suspicious"`
}

// Submit is the public report intake. The checks run in a fixed order:
// honeypot first (bots get a success response and no write, so there is no
// rejection signal to learn from), then issue-type validation, elevator
// existence, the per-device cooldown and the per-origin limit. The
// check-then-insert pair is not serialized; a rare double-accept under
// concurrent submission is tolerated.
func (rc *ReportController) Submit(c *fiber.Ctx) error {
	var req SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	if req.Honeypot != "" {
		logrus.WithFields(logrus.Fields{
			"elevator_id": req.ElevatorID,
			"ip":          c.IP(),
		}).Info("honeypot triggered, dropping report")
		return c.JSON(fiber.Map{"ok": true})
	}

	if req.ElevatorID == "" || !models.IsValidIssueType(req.IssueType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	var elevator models.Elevator
	if err := rc.DB.Where("public_id = ?", req.ElevatorID).First(&elevator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Elevator not found"})
		}
		return rc.storeFailure(c, "failed to look up elevator", err)
	}

	ip := c.IP()
	now := time.Now()

	// One report per device per elevator per hour
	if req.DeviceHash != "" {
		var recent int64
		err := rc.DB.Model(&models.Report{}).
			Where("elevator_id = ? AND device_hash = ? AND created_at > ?",
				elevator.ID, req.DeviceHash, now.Add(-DeviceCooldown)).
			Count(&recent).Error
		if err != nil {
			return rc.storeFailure(c, "failed to check device cooldown", err)
		}
		if recent > 0 {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":    "Too many reports",
				"cooldown": true,
			})
		}
	}

	// Origin limit across all elevators, independent of device hash
	var originCount int64
	err := rc.DB.Model(&models.Report{}).
		Where("ip_address = ? AND created_at > ?", ip, now.Add(-OriginLimitWindow)).
		Count(&originCount).Error
	if err != nil {
		return rc.storeFailure(c, "failed to check origin limit", err)
	}
	if originCount >= OriginLimitMax {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":    "Too many reports",
			"cooldown": true,
		})
	}

	report := models.Report{
		PublicID:   uuid.NewString(),
		ElevatorID: elevator.ID,
		IssueType:  req.IssueType,
		IPAddress:  ip,
	}
	if req.DeviceHash != "" {
		report.DeviceHash = utils.Pointer(req.DeviceHash)
	}

	if err := rc.DB.Create(&report).Error; err != nil {
		return rc.storeFailure(c, "failed to store report", err)
	}

	return c.JSON(fiber.Map{"ok": true, "report_id": report.PublicID})
}

// AttachName lets the reporter add a display name right after submitting.
// Public like the submit endpoint; the report id is the only capability
// needed.
func (rc *ReportController) AttachName(c *fiber.Ctx) error {
	var req AttachNameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	name := utils.Truncate(strings.TrimSpace(req.ReporterName), ReporterNameMaxLen)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid name"})
	}

	result := rc.DB.Model(&models.Report{}).
		Where("public_id = ?", c.Params("id")).
		Update("reporter_name", name)
	if result.Error != nil {
		return rc.storeFailure(c, "failed to update reporter name", result.Error)
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// ToggleSuspicious marks a report for triage. Requires an authenticated
// admin but is intentionally not scoped to elevator membership: any admin
// may flag any report.
func (rc *ReportController) ToggleSuspicious(c *fiber.Ctx) error {
	var req ToggleSuspiciousRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	result := rc.DB.Model(&models.Report{}).
		Where("public_id = ?", c.Params("id")).
		Update("suspicious", req.Suspicious)
	if result.Error != nil {
		return rc.storeFailure(c, "failed to update suspicious flag", result.Error)
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (rc *ReportController) storeFailure(c *fiber.Ctx, msg string, err error) error {
	LogError(msg, err, map[string]interface{}{
		"path": c.Path(),
		"ip":   c.IP(),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
}
