package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"elevatortrack/config"
	"elevatortrack/models"
	"elevatortrack/utils"
)

type ElevatorController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewElevatorController(db *gorm.DB, logger *log.Logger) *ElevatorController {
	return &ElevatorController{
		DB:     db,
		Logger: logger,
	}
}

type ElevatorRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Location  *string  `json:"location" validate:"omitempty,max=500"`
	Languages []string `json:"languages" validate:"omitempty,dive,min=2,max=8"`
}

type ElevatorSummary struct {
	models.Elevator
	ReportCount int64 `json:"report_count"`
}

// List returns the elevators the caller created or is a member of, newest
// first, each with its all-time report count.
func (ec *ElevatorController) List(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.Admin)

	elevators, err := accessibleElevators(ec.DB, admin.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list elevators", err)
	}

	summaries := make([]ElevatorSummary, 0, len(elevators))
	for _, elevator := range elevators {
		var count int64
		if err := ec.DB.Model(&models.Report{}).
			Where("elevator_id = ?", elevator.ID).
			Count(&count).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count reports", err)
		}
		summaries = append(summaries, ElevatorSummary{Elevator: elevator, ReportCount: count})
	}

	return c.JSON(summaries)
}

// Create registers an elevator and grants the creator an owner membership
// in the same transaction.
func (ec *ElevatorController) Create(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.Admin)

	var req ElevatorRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	elevator := models.Elevator{
		PublicID: uuid.NewString(),
		Name:     req.Name,
		Location: req.Location,
		AdminID:  admin.ID,
	}
	elevator.SetLanguages(req.Languages)

	err := ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&elevator).Error; err != nil {
			return err
		}
		return tx.Create(&models.ElevatorAccess{
			ElevatorID: elevator.ID,
			AdminID:    admin.ID,
			Role:       models.RoleOwner,
		}).Error
	})
	if err != nil {
		ec.Logger.Printf("Failed to create elevator: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create elevator", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(elevator)
}

// Update changes name, location and languages. Non-members get the same 404
// as a missing elevator.
func (ec *ElevatorController) Update(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.Admin)

	var req ElevatorRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	elevator, err := findAccessibleElevator(ec.DB, admin.ID, c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load elevator", err)
	}
	if elevator == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found", nil)
	}

	elevator.Name = req.Name
	elevator.Location = req.Location
	if len(req.Languages) > 0 {
		elevator.SetLanguages(req.Languages)
	}

	if err := ec.DB.Save(elevator).Error; err != nil {
		ec.Logger.Printf("Failed to update elevator %s: %v", elevator.PublicID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update elevator", nil)
	}

	return c.JSON(elevator)
}

// Delete removes the elevator with its reports and memberships. The cascade
// is explicit so it holds on databases where the FK referential action was
// never applied.
func (ec *ElevatorController) Delete(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.Admin)

	elevator, err := findAccessibleElevator(ec.DB, admin.ID, c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load elevator", err)
	}
	if elevator == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found", nil)
	}

	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("elevator_id = ?", elevator.ID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Where("elevator_id = ?", elevator.ID).Delete(&models.ElevatorAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(elevator).Error
	})
	if err != nil {
		ec.Logger.Printf("Failed to delete elevator %s: %v", elevator.PublicID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete elevator", nil)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// GetQR returns a QR code for the elevator's public reporting page as a PNG
// data URL.
func (ec *ElevatorController) GetQR(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.Admin)

	elevator, err := findAccessibleElevator(ec.DB, admin.ID, c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load elevator", err)
	}
	if elevator == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found", nil)
	}

	url := config.AppConfig.AppURL + "/e/" + elevator.PublicID
	qr, err := utils.QRDataURL(url, 400)
	if err != nil {
		ec.Logger.Printf("Failed to encode QR for %s: %v", elevator.PublicID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate QR code", nil)
	}

	return c.JSON(fiber.Map{"qr": qr, "url": url})
}
