package members

import (
	"strconv"
	"time"

	"forestry-backend/internal/audit"
	"forestry-backend/internal/auth"
	"forestry-backend/internal/database"
	"forestry-backend/internal/models"
	"forestry-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateMemberRequest struct {
	CardNumber      string     `json:"card_number" validate:"required,max=50"`
	FullName        string     `json:"full_name" validate:"required,max=100"`
	GrandfatherName string     `json:"grandfather_name" validate:"omitempty,max=100"`
	Photo           string     `json:"photo" validate:"omitempty,max=255"`
	FamilyDetails   string     `json:"family_details"`
	ContactNumber   string     `json:"contact_number" validate:"omitempty,max=15"`
	Address         string     `json:"address"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	JoinedDate      *time.Time `json:"joined_date"`
	Notes           string     `json:"notes"`
}

type UpdateMemberRequest struct {
	FullName        *string    `json:"full_name" validate:"omitempty,max=100"`
	GrandfatherName *string    `json:"grandfather_name" validate:"omitempty,max=100"`
	Photo           *string    `json:"photo" validate:"omitempty,max=255"`
	FamilyDetails   *string    `json:"family_details"`
	ContactNumber   *string    `json:"contact_number" validate:"omitempty,max=15"`
	Address         *string    `json:"address"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Notes           *string    `json:"notes"`
}

func actorName(c *fiber.Ctx) (uint, string) {
	userID, _ := auth.CurrentUserID(c)
	var user models.AuthUser
	if err := database.DB.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.FullName
}

// POST /api/members
func CreateMemberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMemberRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var count int64
		database.DB.Model(&models.Member{}).
			Where("card_number = ?", body.CardNumber).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Card number already registered")
		}

		joined := time.Now()
		if body.JoinedDate != nil {
			joined = *body.JoinedDate
		}

		member := models.Member{
			CardNumber:      body.CardNumber,
			FullName:        body.FullName,
			GrandfatherName: body.GrandfatherName,
			Photo:           body.Photo,
			FamilyDetails:   body.FamilyDetails,
			ContactNumber:   body.ContactNumber,
			Address:         body.Address,
			DateOfBirth:     body.DateOfBirth,
			JoinedDate:      joined,
			Category:        models.CategoryC,
			Status:          models.MemberPassive,
			Notes:           body.Notes,
		}

		if err := database.DB.Create(&member).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create member")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "member", member.ID, models.AuditActionCreate,
			"Member registered: "+member.FullName, nil, member)

		return c.Status(fiber.StatusCreated).JSON(member)
	}
}

// GET /api/members?category=A&status=Active&search=Ali
func ListMembersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Member{})

		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("full_name LIKE ? OR card_number LIKE ?", like, like)
		}

		var list []models.Member
		if err := dbq.Order("full_name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list members")
		}
		return c.JSON(list)
	}
}

// GET /api/members/:id
func GetMemberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
		}
		var member models.Member
		if err := database.DB.First(&member, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Member not found")
		}
		return c.JSON(member)
	}
}

// PUT /api/members/:id updates identity fields. Category, status and the
// attendance counters are owned by the attendance flow.
func UpdateMemberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
		}

		var body UpdateMemberRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var member models.Member
		if err := database.DB.First(&member, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Member not found")
		}
		before := member

		if body.FullName != nil {
			member.FullName = *body.FullName
		}
		if body.GrandfatherName != nil {
			member.GrandfatherName = *body.GrandfatherName
		}
		if body.Photo != nil {
			member.Photo = *body.Photo
		}
		if body.FamilyDetails != nil {
			member.FamilyDetails = *body.FamilyDetails
		}
		if body.ContactNumber != nil {
			member.ContactNumber = *body.ContactNumber
		}
		if body.Address != nil {
			member.Address = *body.Address
		}
		if body.DateOfBirth != nil {
			member.DateOfBirth = body.DateOfBirth
		}
		if body.Notes != nil {
			member.Notes = *body.Notes
		}

		if err := database.DB.Save(&member).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update member")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "member", member.ID, models.AuditActionUpdate,
			"Member updated: "+member.FullName, before, member)

		return c.JSON(member)
	}
}

// DELETE /api/members/:id soft deletes; distribution history keeps pointing
// at the row.
func DeleteMemberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
		}

		var member models.Member
		if err := database.DB.First(&member, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Member not found")
		}

		if err := database.DB.Delete(&member).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete member")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "member", member.ID, models.AuditActionDelete,
			"Member removed: "+member.FullName, member, nil)

		return c.JSON(fiber.Map{"message": "Member deleted"})
	}
}

// GET /api/members/:id/stats
func MemberStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
		}

		var member models.Member
		if err := database.DB.First(&member, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Member not found")
		}

		var distributions int64
		database.DB.Model(&models.Distribution{}).
			Where("member_id = ?", member.ID).
			Count(&distributions)

		var delivered int64
		database.DB.Model(&models.Distribution{}).
			Where("member_id = ? AND status = ?", member.ID, models.DistributionDelivered).
			Count(&delivered)

		now := time.Now()
		return c.JSON(fiber.Map{
			"member_id":              member.ID,
			"category":               member.Category,
			"status":                 member.Status,
			"total_attendance_days":  member.TotalAttendanceDays,
			"attendance_rate":        AttendanceRate(member.TotalAttendanceDays, member.JoinedDate, now),
			"distribution_requests":  distributions,
			"distributions_received": delivered,
		})
	}
}

// GET /api/members/category-summary
func CategorySummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type row struct {
			Category models.MemberCategory `json:"category"`
			Count    int64                 `json:"count"`
		}
		var rows []row
		err := database.DB.Model(&models.Member{}).
			Select("category, COUNT(id) AS count").
			Group("category").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build summary")
		}
		return c.JSON(rows)
	}
}
