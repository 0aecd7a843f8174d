package controller

import (
	"log"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"elevatortrack/models"
	"elevatortrack/utils"
)

// RecentReportLimit bounds the triage list in a stats response.
const RecentReportLimit = 20

type StatsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStatsController(db *gorm.DB, logger *log.Logger) *StatsController {
	return &StatsController{
		DB:     db,
		Logger: logger,
	}
}

type TimelinePoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type BreakdownRow struct {
	IssueType string `json:"issue_type"`
	Count     int64  `json:"count"`
}

type ReportSummary struct {
	ID           string    `json:"id"`
	IssueType    string    `json:"issue_type"`
	ReporterName *string   `json:"reporter_name,omitempty"`
	Suspicious   bool      `json:"suspicious"`
	CreatedAt    time.Time `json:"created_at"`
}

type StatsBundle struct {
	Timeline  []TimelinePoint `json:"timeline"`
	Breakdown []BreakdownRow  `json:"breakdown"`
	Total     int64           `json:"total"`
	Recent    []ReportSummary `json:"recent"`
}

// GetElevatorStats aggregates reports for one elevator over a 7 or 30 day
// window. Timeline dates with zero reports are omitted, as are issue types
// with no reports in the window; total is all-time and independent of the
// window. Access is checked here, the aggregation itself does no
// authorization.
func (sc *StatsController) GetElevatorStats(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.Admin)

	days := 7
	if c.Query("days") == "30" {
		days = 30
	}

	elevator, err := findAccessibleElevator(sc.DB, admin.ID, c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load elevator", err)
	}
	if elevator == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found", nil)
	}

	since := time.Now().AddDate(0, 0, -days)
	bundle := StatsBundle{
		Timeline:  []TimelinePoint{},
		Breakdown: []BreakdownRow{},
		Recent:    []ReportSummary{},
	}

	// Reports over time, bucketed by calendar date in the server timezone
	var createdAts []time.Time
	err = sc.DB.Model(&models.Report{}).
		Where("elevator_id = ? AND created_at > ?", elevator.ID, since).
		Pluck("created_at", &createdAts).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load timeline", err)
	}

	byDate := make(map[string]int64)
	for _, at := range createdAts {
		byDate[at.Local().Format("2006-01-02")]++
	}
	for date, count := range byDate {
		bundle.Timeline = append(bundle.Timeline, TimelinePoint{Date: date, Count: count})
	}
	sort.Slice(bundle.Timeline, func(i, j int) bool {
		return bundle.Timeline[i].Date < bundle.Timeline[j].Date
	})

	// Breakdown by issue type
	err = sc.DB.Model(&models.Report{}).
		Select("issue_type, COUNT(*) AS count").
		Where("elevator_id = ? AND created_at > ?", elevator.ID, since).
		Group("issue_type").
		Scan(&bundle.Breakdown).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load breakdown", err)
	}

	// All-time total, independent of the requested window
	err = sc.DB.Model(&models.Report{}).
		Where("elevator_id = ?", elevator.ID).
		Count(&bundle.Total).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count reports", err)
	}

	// Most recent reports for manual triage
	var recent []models.Report
	err = sc.DB.Where("elevator_id = ?", elevator.ID).
		Order("created_at DESC").
		Limit(RecentReportLimit).
		Find(&recent).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load recent reports", err)
	}
	for _, report := range recent {
		bundle.Recent = append(bundle.Recent, ReportSummary{
			ID:           report.PublicID,
			IssueType:    report.IssueType,
			ReporterName: report.ReporterName,
			Suspicious:   report.Suspicious,
			CreatedAt:    report.CreatedAt,
		})
	}

	return c.JSON(bundle)
}
