package attendance

import (
	"errors"
	"strconv"
	"time"

	"forestry-backend/internal/audit"
	"forestry-backend/internal/auth"
	"forestry-backend/internal/database"
	"forestry-backend/internal/members"
	"forestry-backend/internal/models"
	"forestry-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateAttendanceRequest struct {
	MemberID       uint             `json:"member_id" validate:"required"`
	AttendanceDate *time.Time       `json:"attendance_date"`
	Month          int              `json:"month" validate:"required,min=1,max=12"`
	Year           int              `json:"year" validate:"required,min=2000,max=2100"`
	DutyType       string           `json:"duty_type"`
	Hours          *decimal.Decimal `json:"hours"`
	Location       string           `json:"location" validate:"omitempty,max=100"`
	Description    string           `json:"description"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes"`
}

func actorName(c *fiber.Ctx) (uint, string) {
	userID, _ := auth.CurrentUserID(c)
	var user models.AuthUser
	if err := database.DB.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.FullName
}

// recountMember recomputes the member's attendance counters, category and
// status from the Present records, inside the caller's transaction.
func recountMember(tx *gorm.DB, memberID uint, now time.Time) error {
	var member models.Member
	if err := tx.First(&member, "id = ?", memberID).Error; err != nil {
		return err
	}

	var total int64
	if err := tx.Model(&models.Attendance{}).
		Where("member_id = ? AND status = ?", memberID, models.AttendancePresent).
		Count(&total).Error; err != nil {
		return err
	}

	var last *time.Time
	var latest models.Attendance
	err := tx.Where("member_id = ? AND status = ?", memberID, models.AttendancePresent).
		Order("attendance_date DESC").
		First(&latest).Error
	if err == nil {
		last = &latest.AttendanceDate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member.TotalAttendanceDays = int(total)
	member.LastAttendanceDate = last
	member.Category = members.CategoryFor(member.TotalAttendanceDays)
	member.Status = members.StatusFor(member.LastAttendanceDate, now)

	return tx.Save(&member).Error
}

// POST /api/attendance
func CreateAttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAttendanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dutyType := models.DutyRegular
		if body.DutyType != "" {
			dutyType = models.DutyType(body.DutyType)
			if !dutyType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown duty type")
			}
		}
		status := models.AttendancePresent
		if body.Status != "" {
			status = models.AttendanceStatus(body.Status)
			if !status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown attendance status")
			}
		}
		hours := decimal.NewFromInt(8)
		if body.Hours != nil {
			if body.Hours.Sign() <= 0 || body.Hours.Cmp(decimal.NewFromInt(24)) > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Hours must be between 0 and 24")
			}
			hours = *body.Hours
		}

		now := time.Now()
		date := now
		if body.AttendanceDate != nil {
			date = *body.AttendanceDate
		}

		userID, userName := actorName(c)

		var record models.Attendance
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var member models.Member
			if err := tx.First(&member, "id = ?", body.MemberID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Member not found")
			}

			var count int64
			tx.Model(&models.Attendance{}).
				Where("member_id = ? AND month = ? AND year = ?", body.MemberID, body.Month, body.Year).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, "Attendance for this member and month already recorded")
			}

			record = models.Attendance{
				MemberID:       body.MemberID,
				AttendanceDate: date,
				Month:          body.Month,
				Year:           body.Year,
				DutyType:       dutyType,
				Hours:          hours,
				Location:       body.Location,
				Description:    body.Description,
				VerifiedByID:   &userID,
				Status:         status,
				Notes:          body.Notes,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not record attendance")
			}

			return recountMember(tx, body.MemberID, now)
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record attendance")
		}

		audit.Record(userID, userName, "attendance", record.ID, models.AuditActionCreate,
			"Attendance recorded", nil, record)

		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

// GET /api/attendance?month=6&year=2025&member_id=3
func ListAttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Attendance{}).Preload("Member")

		if monthStr := c.Query("month"); monthStr != "" {
			if m, err := strconv.Atoi(monthStr); err == nil && m >= 1 && m <= 12 {
				dbq = dbq.Where("month = ?", m)
			}
		}
		if yearStr := c.Query("year"); yearStr != "" {
			if y, err := strconv.Atoi(yearStr); err == nil && y > 0 {
				dbq = dbq.Where("year = ?", y)
			}
		}
		if memberIDStr := c.Query("member_id"); memberIDStr != "" {
			if mid, err := strconv.Atoi(memberIDStr); err == nil && mid > 0 {
				dbq = dbq.Where("member_id = ?", mid)
			}
		}

		var list []models.Attendance
		if err := dbq.Order("attendance_date DESC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list attendance")
		}
		return c.JSON(list)
	}
}

// GET /api/attendance/member/:memberId
func MemberAttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := strconv.Atoi(c.Params("memberId"))
		if err != nil || memberID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
		}
		var list []models.Attendance
		err = database.DB.
			Where("member_id = ?", memberID).
			Order("year DESC, month DESC").
			Find(&list).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list attendance")
		}
		return c.JSON(list)
	}
}

// DELETE /api/attendance/:id removes the record and recounts the member's
// totals in the same transaction.
func DeleteAttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid attendance id")
		}

		var record models.Attendance
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Attendance record not found")
		}

		now := time.Now()
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&record).Error; err != nil {
				return err
			}
			return recountMember(tx, record.MemberID, now)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete attendance record")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "attendance", record.ID, models.AuditActionDelete,
			"Attendance record removed", record, nil)

		return c.JSON(fiber.Map{"message": "Attendance record deleted"})
	}
}
