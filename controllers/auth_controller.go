package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"elevatortrack/config"
	"elevatortrack/models"
	"elevatortrack/utils"
)

type AuthController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	SendMail utils.MailSender
}

func NewAuthController(db *gorm.DB, logger *log.Logger) *AuthController {
	return &AuthController{
		DB:       db,
		Logger:   logger,
		SendMail: utils.SendEmail,
	}
}

type SignupRequest struct {
	Email string `json:"email" validate:"required"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required"`

	// ElevatorID optionally grants the invitee a membership on one
	// elevator the inviter can access.
	ElevatorID string `json:"elevator_id" validate:"omitempty,max=36"`
}

// Signup creates or finds an admin for the given email and mails a
// single-use login link. Always responds identically for new and existing
// accounts so the endpoint cannot be used to enumerate admins.
func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email", nil)
	}

	admin, err := ac.findOrCreateAdmin(email, nil)
	if err != nil {
		ac.Logger.Printf("Failed to create admin for %s: %v", email, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error", nil)
	}

	magicURL, err := ac.mintMagicLink(admin.ID, models.MagicLinkSignupExpiry, nil)
	if err != nil {
		ac.Logger.Printf("Failed to mint magic link for %s: %v", email, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error", nil)
	}

	err = ac.SendMail(utils.EmailData{
		Subject:  "Your login link — Elevator Tracker",
		To:       []string{email},
		Template: "magic_link",
		Data: fiber.Map{
			"Subject":  "Your login link — Elevator Tracker",
			"MagicURL": magicURL,
			"Year":     time.Now().Year(),
		},
	})
	if err != nil {
		ac.Logger.Printf("Failed to send login email to %s: %v", email, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send email", nil)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// Verify consumes a magic-link token, marks it used and sets the session
// cookie. Errors redirect back to the login page rather than returning
// JSON, since the link is opened in a browser.
func (ac *AuthController) Verify(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Redirect("/admin/login?error=invalid", fiber.StatusFound)
	}

	var link models.MagicLink
	err := ac.DB.Preload("Admin").Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect("/admin/login?error=expired", fiber.StatusFound)
		}
		ac.Logger.Printf("Failed to look up magic link: %v", err)
		return c.Redirect("/admin/login?error=server", fiber.StatusFound)
	}
	if !link.Usable(time.Now()) {
		return c.Redirect("/admin/login?error=expired", fiber.StatusFound)
	}

	// Mark as used before issuing the session; a reused token must fail.
	if err := ac.DB.Model(&link).Update("used_at", time.Now()).Error; err != nil {
		ac.Logger.Printf("Failed to mark magic link used: %v", err)
		return c.Redirect("/admin/login?error=server", fiber.StatusFound)
	}

	sessionToken, err := utils.GenerateAdminToken(&link.Admin)
	if err != nil {
		ac.Logger.Printf("Failed to sign session token: %v", err)
		return c.Redirect("/admin/login?error=server", fiber.StatusFound)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    sessionToken,
		HTTPOnly: true,
		Secure:   config.AppConfig.Environment == "production",
		SameSite: "Lax",
		MaxAge:   int(utils.AdminSessionExpiry.Seconds()),
		Path:     "/",
	})

	return c.Redirect("/admin", fiber.StatusFound)
}

// Status reports whether the caller holds a valid session. Unauthenticated
// callers get a 200 with logged_in=false, not a 401; the login page polls
// this endpoint.
func (ac *AuthController) Status(c *fiber.Ctx) error {
	token := c.Cookies("token")
	if token == "" {
		return c.JSON(fiber.Map{"logged_in": false})
	}

	claims, err := utils.ParseAdminToken(token)
	if err != nil {
		return c.JSON(fiber.Map{"logged_in": false})
	}

	return c.JSON(fiber.Map{"logged_in": true, "email": claims.Email})
}

// Logout clears the session cookie.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		HTTPOnly: true,
		MaxAge:   -1,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"ok": true})
}

// Invite lets an authenticated admin bring another admin onto the platform.
// When an elevator id is supplied and the inviter can access it, the
// invitee also gets a role=admin membership on that elevator.
func (ac *AuthController) Invite(c *fiber.Ctx) error {
	inviter := c.Locals("admin").(*models.Admin)

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email", nil)
	}

	var scope *uint
	if req.ElevatorID != "" {
		elevator, err := findAccessibleElevator(ac.DB, inviter.ID, req.ElevatorID)
		if err != nil {
			ac.Logger.Printf("Failed to resolve elevator %s: %v", req.ElevatorID, err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error", nil)
		}
		if elevator == nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Elevator not found", nil)
		}
		scope = &elevator.ID
	}

	invitee, err := ac.findOrCreateAdmin(email, &inviter.ID)
	if err != nil {
		ac.Logger.Printf("Failed to create invited admin %s: %v", email, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error", nil)
	}

	if scope != nil {
		membership := models.ElevatorAccess{
			ElevatorID: *scope,
			AdminID:    invitee.ID,
			Role:       models.RoleAdmin,
		}
		err := ac.DB.Where("elevator_id = ? AND admin_id = ?", *scope, invitee.ID).
			FirstOrCreate(&membership).Error
		if err != nil {
			ac.Logger.Printf("Failed to grant membership to %s: %v", email, err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error", nil)
		}
	}

	magicURL, err := ac.mintMagicLink(invitee.ID, models.MagicLinkInviteExpiry, scope)
	if err != nil {
		ac.Logger.Printf("Failed to mint invite link for %s: %v", email, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error", nil)
	}

	err = ac.SendMail(utils.EmailData{
		Subject:  "You've been invited to Elevator Tracker",
		To:       []string{email},
		Template: "invite",
		Data: fiber.Map{
			"Subject":      "You've been invited to Elevator Tracker",
			"InviterEmail": inviter.Email,
			"MagicURL":     magicURL,
			"Year":         time.Now().Year(),
		},
	})
	if err != nil {
		// The invitee exists and the membership is granted; the inviter can
		// resend. Don't fail the call.
		ac.Logger.Printf("Failed to send invite email to %s: %v", email, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (ac *AuthController) findOrCreateAdmin(email string, invitedBy *uint) (*models.Admin, error) {
	var admin models.Admin
	err := ac.DB.Where("email = ?", email).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	admin = models.Admin{Email: email, InvitedByID: invitedBy}
	if err := ac.DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (ac *AuthController) mintMagicLink(adminID uint, expiry time.Duration, elevatorID *uint) (string, error) {
	token, err := utils.GenerateMagicToken()
	if err != nil {
		return "", err
	}

	link := models.MagicLink{
		AdminID:    adminID,
		Token:      token,
		ExpiresAt:  time.Now().Add(expiry),
		ElevatorID: elevatorID,
	}
	if err := ac.DB.Create(&link).Error; err != nil {
		return "", err
	}

	return config.AppConfig.AppURL + "/auth/verify?token=" + token, nil
}
