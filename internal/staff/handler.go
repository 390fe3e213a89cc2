package staff

import (
	"strconv"
	"time"

	"forestry-backend/internal/audit"
	"forestry-backend/internal/auth"
	"forestry-backend/internal/database"
	"forestry-backend/internal/models"
	"forestry-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateStaffRequest struct {
	FullName               string           `json:"full_name" validate:"required,max=100"`
	Position               string           `json:"position" validate:"required"`
	Department             string           `json:"department" validate:"omitempty,max=100"`
	ContactNumber          string           `json:"contact_number" validate:"omitempty,max=15"`
	Email                  string           `json:"email" validate:"omitempty,email"`
	Address                string           `json:"address"`
	DateOfBirth            *time.Time       `json:"date_of_birth"`
	JoinedDate             *time.Time       `json:"joined_date"`
	Photo                  string           `json:"photo" validate:"omitempty,max=255"`
	Qualifications         string           `json:"qualifications"`
	Experience             string           `json:"experience"`
	Responsibilities       string           `json:"responsibilities"`
	Salary                 *decimal.Decimal `json:"salary"`
	Allowances             *decimal.Decimal `json:"allowances"`
	EmployeeID             *string          `json:"employee_id"`
	EmergencyContactName   string           `json:"emergency_contact_name" validate:"omitempty,max=100"`
	EmergencyContactNumber string           `json:"emergency_contact_number" validate:"omitempty,max=15"`
}

type UpdateStaffRequest struct {
	FullName               *string          `json:"full_name" validate:"omitempty,max=100"`
	Position               *string          `json:"position"`
	Department             *string          `json:"department" validate:"omitempty,max=100"`
	ContactNumber          *string          `json:"contact_number" validate:"omitempty,max=15"`
	Email                  *string          `json:"email" validate:"omitempty,email"`
	Address                *string          `json:"address"`
	Photo                  *string          `json:"photo" validate:"omitempty,max=255"`
	Qualifications         *string          `json:"qualifications"`
	Experience             *string          `json:"experience"`
	Responsibilities       *string          `json:"responsibilities"`
	Salary                 *decimal.Decimal `json:"salary"`
	Allowances             *decimal.Decimal `json:"allowances"`
	Status                 *string          `json:"status"`
	TerminatedDate         *time.Time       `json:"terminated_date"`
	EmergencyContactName   *string          `json:"emergency_contact_name" validate:"omitempty,max=100"`
	EmergencyContactNumber *string          `json:"emergency_contact_number" validate:"omitempty,max=15"`
}

func actorName(c *fiber.Ctx) (uint, string) {
	userID, _ := auth.CurrentUserID(c)
	var user models.AuthUser
	if err := database.DB.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.FullName
}

// POST /api/staff
func CreateStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		position := models.StaffPosition(body.Position)
		if !position.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown position")
		}

		if body.EmployeeID != nil {
			var count int64
			database.DB.Model(&models.StaffMember{}).
				Where("employee_id = ?", *body.EmployeeID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, "Employee id already in use")
			}
		}

		joined := time.Now()
		if body.JoinedDate != nil {
			joined = *body.JoinedDate
		}
		department := body.Department
		if department == "" {
			department = "Administration"
		}
		allowances := decimal.Zero
		if body.Allowances != nil {
			allowances = *body.Allowances
		}

		staff := models.StaffMember{
			FullName:               body.FullName,
			Position:               position,
			Department:             department,
			ContactNumber:          body.ContactNumber,
			Email:                  body.Email,
			Address:                body.Address,
			DateOfBirth:            body.DateOfBirth,
			JoinedDate:             joined,
			Photo:                  body.Photo,
			Qualifications:         body.Qualifications,
			Experience:             body.Experience,
			Responsibilities:       body.Responsibilities,
			Salary:                 body.Salary,
			Allowances:             allowances,
			Status:                 models.StaffActive,
			EmployeeID:             body.EmployeeID,
			EmergencyContactName:   body.EmergencyContactName,
			EmergencyContactNumber: body.EmergencyContactNumber,
		}

		if err := database.DB.Create(&staff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create staff member")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "staff_member", staff.ID, models.AuditActionCreate,
			"Staff member added: "+staff.FullName, nil, staff)

		return c.Status(fiber.StatusCreated).JSON(staff)
	}
}

// GET /api/staff?position=Secretary&status=Active
func ListStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StaffMember{})

		if position := c.Query("position"); position != "" {
			dbq = dbq.Where("position = ?", position)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var list []models.StaffMember
		if err := dbq.Order("full_name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list staff")
		}
		return c.JSON(list)
	}
}

// GET /api/staff/:id
func GetStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid staff id")
		}
		var staff models.StaffMember
		if err := database.DB.First(&staff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Staff member not found")
		}
		return c.JSON(staff)
	}
}

// PUT /api/staff/:id
func UpdateStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid staff id")
		}

		var body UpdateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var staff models.StaffMember
		if err := database.DB.First(&staff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Staff member not found")
		}
		before := staff

		if body.FullName != nil {
			staff.FullName = *body.FullName
		}
		if body.Position != nil {
			position := models.StaffPosition(*body.Position)
			if !position.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown position")
			}
			staff.Position = position
		}
		if body.Department != nil {
			staff.Department = *body.Department
		}
		if body.ContactNumber != nil {
			staff.ContactNumber = *body.ContactNumber
		}
		if body.Email != nil {
			staff.Email = *body.Email
		}
		if body.Address != nil {
			staff.Address = *body.Address
		}
		if body.Photo != nil {
			staff.Photo = *body.Photo
		}
		if body.Qualifications != nil {
			staff.Qualifications = *body.Qualifications
		}
		if body.Experience != nil {
			staff.Experience = *body.Experience
		}
		if body.Responsibilities != nil {
			staff.Responsibilities = *body.Responsibilities
		}
		if body.Salary != nil {
			staff.Salary = body.Salary
		}
		if body.Allowances != nil {
			staff.Allowances = *body.Allowances
		}
		if body.Status != nil {
			status := models.StaffStatus(*body.Status)
			switch status {
			case models.StaffActive, models.StaffInactive, models.StaffOnLeave, models.StaffTerminated:
			default:
				return fiber.NewError(fiber.StatusBadRequest, "Unknown status")
			}
			staff.Status = status
			if status == models.StaffTerminated && staff.TerminatedDate == nil {
				now := time.Now()
				staff.TerminatedDate = &now
			}
		}
		if body.TerminatedDate != nil {
			staff.TerminatedDate = body.TerminatedDate
		}

		if err := database.DB.Save(&staff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update staff member")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "staff_member", staff.ID, models.AuditActionUpdate,
			"Staff member updated: "+staff.FullName, before, staff)

		return c.JSON(staff)
	}
}

// DELETE /api/staff/:id
func DeleteStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid staff id")
		}

		var staff models.StaffMember
		if err := database.DB.First(&staff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Staff member not found")
		}

		if err := database.DB.Delete(&staff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete staff member")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "staff_member", staff.ID, models.AuditActionDelete,
			"Staff member removed: "+staff.FullName, staff, nil)

		return c.JSON(fiber.Map{"message": "Staff member deleted"})
	}
}
