package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"elevatortrack/models"
	"elevatortrack/utils"
)

// feedInterval is how often the live feed pushes fresh counts.
const feedInterval = 5 * time.Second

type FeedElevator struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReportCount int64  `json:"report_count"`
}

type FeedUpdate struct {
	At        time.Time      `json:"at"`
	Elevators []FeedElevator `json:"elevators"`
}

// HandleReportFeed streams per-elevator report counts to the dashboard so
// it can refresh without polling. The session token comes from the login
// cookie or a token query parameter, since websocket clients can't always
// set headers.
func (rc *ReportController) HandleReportFeed(c *websocket.Conn) {
	defer c.Close()

	token := c.Query("token")
	if token == "" {
		token = c.Cookies("token")
	}
	claims, err := utils.ParseAdminToken(token)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Unauthorized"})
		return
	}

	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	for {
		update, err := rc.buildFeedUpdate(claims.AdminID)
		if err != nil {
			rc.Logger.Printf("Error building feed update: %v", err)
			return
		}
		if err := c.WriteJSON(update); err != nil {
			return
		}
		<-ticker.C
	}
}

func (rc *ReportController) buildFeedUpdate(adminID uint) (*FeedUpdate, error) {
	elevators, err := accessibleElevators(rc.DB, adminID)
	if err != nil {
		return nil, err
	}

	update := &FeedUpdate{At: time.Now(), Elevators: make([]FeedElevator, 0, len(elevators))}
	for _, elevator := range elevators {
		var count int64
		if err := rc.DB.Model(&models.Report{}).
			Where("elevator_id = ?", elevator.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		update.Elevators = append(update.Elevators, FeedElevator{
			ID:          elevator.PublicID,
			Name:        elevator.Name,
			ReportCount: count,
		})
	}
	return update, nil
}
