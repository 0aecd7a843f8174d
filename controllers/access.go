package controller

import (
	"errors"

	"gorm.io/gorm"

	"elevatortrack/models"
)

// CanAccessElevator reports whether the admin created the elevator or holds
// a membership row for it, any role. Callers must surface a missing grant
// exactly like a missing elevator so non-members cannot probe for
// existence.
func CanAccessElevator(db *gorm.DB, adminID uint, elevator *models.Elevator) (bool, error) {
	if elevator.AdminID == adminID {
		return true, nil
	}
	var count int64
	err := db.Model(&models.ElevatorAccess{}).
		Where("elevator_id = ? AND admin_id = ?", elevator.ID, adminID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasElevatorRole checks for a specific membership role. The creating admin
// counts as owner. No current operation demands ownership; this exists for
// operations that will.
func HasElevatorRole(db *gorm.DB, adminID uint, elevator *models.Elevator, role string) (bool, error) {
	if role == models.RoleOwner && elevator.AdminID == adminID {
		return true, nil
	}
	var count int64
	err := db.Model(&models.ElevatorAccess{}).
		Where("elevator_id = ? AND admin_id = ? AND role = ?", elevator.ID, adminID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// findAccessibleElevator resolves a public elevator id on behalf of an
// admin. A missing elevator and a missing access grant both return
// (nil, nil); only store failures return an error.
func findAccessibleElevator(db *gorm.DB, adminID uint, publicID string) (*models.Elevator, error) {
	var elevator models.Elevator
	if err := db.Where("public_id = ?", publicID).First(&elevator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ok, err := CanAccessElevator(db, adminID, &elevator)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &elevator, nil
}

// accessibleElevators lists every elevator the admin created or is a member
// of, newest first.
func accessibleElevators(db *gorm.DB, adminID uint) ([]models.Elevator, error) {
	memberIDs := db.Model(&models.ElevatorAccess{}).
		Select("elevator_id").
		Where("admin_id = ?", adminID)

	var elevators []models.Elevator
	err := db.Where("admin_id = ? OR id IN (?)", adminID, memberIDs).
		Order("created_at DESC").
		Find(&elevators).Error
	return elevators, err
}
