package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevatortrack/models"
)

func TestCreateElevator(t *testing.T) {
	app, db := newTestApp(t)
	admin, token := createAdmin(t, db, "owner@example.com")

	resp := doJSON(t, app, "POST", "/api/elevators", map[string]interface{}{
		"name":      "North Lift",
		"location":  "Lobby A",
		"languages": []string{"en", "de"},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Elevator
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.PublicID)
	assert.Equal(t, "North Lift", created.Name)
	assert.Equal(t, []string{"en", "de"}, created.LanguageList())

	// The creator gets an owner membership in the same transaction
	var access models.ElevatorAccess
	require.NoError(t, db.Where("admin_id = ?", admin.ID).First(&access).Error)
	assert.Equal(t, models.RoleOwner, access.Role)
}

func TestCreateElevator_Validation(t *testing.T) {
	app, db := newTestApp(t)
	_, token := createAdmin(t, db, "owner@example.com")

	resp := doJSON(t, app, "POST", "/api/elevators", map[string]string{"location": "Lobby A"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/elevators", map[string]string{"name": "X"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// No languages given: the stored set falls back to the default and is
	// never empty
	resp = doJSON(t, app, "POST", "/api/elevators", map[string]string{"name": "Bare"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Elevator
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, []string{models.DefaultLanguage}, created.LanguageList())
}

func TestListElevators_ScopedToCaller(t *testing.T) {
	app, db := newTestApp(t)
	admin, token := createAdmin(t, db, "admin@example.com")
	other, _ := createAdmin(t, db, "other@example.com")

	mine := createElevator(t, db, admin, "Mine")
	shared := createElevator(t, db, other, "Shared")
	createElevator(t, db, other, "Hidden")
	require.NoError(t, db.Create(&models.ElevatorAccess{
		ElevatorID: shared.ID,
		AdminID:    admin.ID,
		Role:       models.RoleAdmin,
	}).Error)
	createReport(t, db, mine, models.IssueStoppedUnexpectedly, "", "203.0.113.1", time.Now())

	resp := doJSON(t, app, "GET", "/api/elevators", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []ElevatorSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)

	byName := map[string]ElevatorSummary{}
	for _, item := range list {
		byName[item.Name] = item
	}
	assert.Contains(t, byName, "Mine")
	assert.Contains(t, byName, "Shared")
	assert.NotContains(t, byName, "Hidden")
	assert.EqualValues(t, 1, byName["Mine"].ReportCount)
	assert.EqualValues(t, 0, byName["Shared"].ReportCount)
}

func TestUpdateElevator(t *testing.T) {
	app, db := newTestApp(t)
	admin, token := createAdmin(t, db, "owner@example.com")
	_, strangerToken := createAdmin(t, db, "stranger@example.com")
	elevator := createElevator(t, db, admin, "North Lift")

	resp := doJSON(t, app, "PUT", "/api/elevators/"+elevator.PublicID, map[string]interface{}{
		"name":      "Renamed Lift",
		"location":  "Lobby B",
		"languages": []string{"fr"},
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Elevator
	require.NoError(t, db.First(&stored, elevator.ID).Error)
	assert.Equal(t, "Renamed Lift", stored.Name)
	require.NotNil(t, stored.Location)
	assert.Equal(t, "Lobby B", *stored.Location)
	assert.Equal(t, []string{"fr"}, stored.LanguageList())

	// Non-members get a 404, not a 403
	resp = doJSON(t, app, "PUT", "/api/elevators/"+elevator.PublicID, map[string]string{
		"name": "Hijacked",
	}, strangerToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteElevator_Cascades(t *testing.T) {
	app, db := newTestApp(t)
	admin, token := createAdmin(t, db, "owner@example.com")
	elevator := createElevator(t, db, admin, "North Lift")
	createReport(t, db, elevator, models.IssueStoppedUnexpectedly, "abc", "203.0.113.1", time.Now())
	createReport(t, db, elevator, models.IssueRumbledOccupied, "", "203.0.113.2", time.Now())

	resp := doJSON(t, app, "DELETE", "/api/elevators/"+elevator.PublicID, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reports, memberships int64
	require.NoError(t, db.Model(&models.Report{}).Where("elevator_id = ?", elevator.ID).Count(&reports).Error)
	require.NoError(t, db.Model(&models.ElevatorAccess{}).Where("elevator_id = ?", elevator.ID).Count(&memberships).Error)
	assert.Zero(t, reports)
	assert.Zero(t, memberships)

	resp = doJSON(t, app, "DELETE", "/api/elevators/"+elevator.PublicID, nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetElevatorQR(t *testing.T) {
	app, db := newTestApp(t)
	admin, token := createAdmin(t, db, "owner@example.com")
	_, strangerToken := createAdmin(t, db, "stranger@example.com")
	elevator := createElevator(t, db, admin, "North Lift")

	resp := doJSON(t, app, "GET", "/api/elevators/"+elevator.PublicID+"/qr", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	qr, _ := body["qr"].(string)
	url, _ := body["url"].(string)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
	assert.True(t, strings.HasSuffix(url, "/e/"+elevator.PublicID))

	resp = doJSON(t, app, "GET", "/api/elevators/"+elevator.PublicID+"/qr", nil, strangerToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
