package auth

import (
	"strings"
	"time"

	"forestry-backend/internal/config"
	"forestry-backend/internal/database"
	"forestry-backend/internal/logging"
	"forestry-backend/internal/models"
	"forestry-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	resetTokenTTL    = time.Hour
)

type RegisterChairmanRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FullName      string `json:"full_name" validate:"required,max=100"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=15"`
}

type CreateUserRequest struct {
	Username      string      `json:"username" validate:"required,min=3,max=50"`
	Email         string      `json:"email" validate:"required,email"`
	Password      string      `json:"password" validate:"required,min=8"`
	Role          models.Role `json:"role" validate:"required"`
	FullName      string      `json:"full_name" validate:"required,max=100"`
	ContactNumber string      `json:"contact_number" validate:"omitempty,max=15"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type RequestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// RegisterChairmanHandler bootstraps the very first account. Once a chairman
// exists the endpoint refuses further registrations.
func RegisterChairmanHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterChairmanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var count int64
		database.DB.Model(&models.AuthUser{}).
			Where("role = ?", models.RoleChairman).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "A chairman account already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.AuthUser{
			Username:      body.Username,
			Email:         body.Email,
			PasswordHash:  string(hash),
			Role:          models.RoleChairman,
			FullName:      body.FullName,
			ContactNumber: body.ContactNumber,
			IsActive:      true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		logging.GetLogger().WithField("user_id", user.ID).Info("chairman account created")

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// CreateUserHandler lets the chairman open accounts for the other roles.
func CreateUserHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !body.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown role")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var count int64
		database.DB.Model(&models.AuthUser{}).
			Where("email = ? OR username = ?", body.Email, body.Username).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Email or username already in use")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.AuthUser{
			Username:      body.Username,
			Email:         body.Email,
			PasswordHash:  string(hash),
			Role:          body.Role,
			FullName:      body.FullName,
			ContactNumber: body.ContactNumber,
			IsActive:      true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		now := time.Now()

		var user models.AuthUser
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email or password is incorrect")
		}

		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "Account is deactivated")
		}
		if user.Locked(now) {
			return fiber.NewError(fiber.StatusUnauthorized, "Account is temporarily locked, try again later")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			user.LoginAttempts++
			if user.LoginAttempts >= maxLoginAttempts {
				until := now.Add(lockoutDuration)
				user.LockUntil = &until
				user.LoginAttempts = 0
				logging.GetLogger().WithField("user_id", user.ID).Warn("account locked after repeated failed logins")
			}
			database.DB.Save(&user)
			return fiber.NewError(fiber.StatusUnauthorized, "Email or password is incorrect")
		}

		user.LoginAttempts = 0
		user.LockUntil = nil
		user.LastLoginAt = &now
		database.DB.Save(&user)

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":        user.ID,
				"username":  user.Username,
				"full_name": user.FullName,
				"email":     user.Email,
				"role":      user.Role,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		var user models.AuthUser
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(fiber.Map{
			"user_id":        user.ID,
			"username":       user.Username,
			"full_name":      user.FullName,
			"email":          user.Email,
			"role":           user.Role,
			"contact_number": user.ContactNumber,
			"last_login_at":  user.LastLoginAt,
		})
	}
}

func ChangePasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var user models.AuthUser
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Current password is incorrect")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user.PasswordHash = string(hash)
		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update password")
		}

		return c.JSON(fiber.Map{"message": "Password updated"})
	}
}

// RequestPasswordResetHandler issues a one-time token. The response always
// succeeds so the endpoint cannot be used to probe for registered emails;
// the token itself is returned only in the server log for the office to
// relay out of band.
func RequestPasswordResetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RequestResetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.AuthUser
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err == nil {
			token := uuid.NewString()
			expires := time.Now().Add(resetTokenTTL)
			user.PasswordResetToken = &token
			user.PasswordResetExpires = &expires
			database.DB.Save(&user)

			logging.GetLogger().WithFields(map[string]interface{}{
				"user_id": user.ID,
				"token":   token,
			}).Info("password reset token issued")
		}

		return c.JSON(fiber.Map{"message": "If the email is registered, a reset token has been issued"})
	}
}

func ResetPasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var user models.AuthUser
		err := database.DB.
			Where("password_reset_token = ? AND password_reset_expires > ?", body.Token, time.Now()).
			First(&user).Error
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired reset token")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user.PasswordHash = string(hash)
		user.PasswordResetToken = nil
		user.PasswordResetExpires = nil
		user.LoginAttempts = 0
		user.LockUntil = nil
		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update password")
		}

		return c.JSON(fiber.Map{"message": "Password has been reset"})
	}
}
