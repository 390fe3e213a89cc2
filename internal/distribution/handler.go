package distribution

import (
	"strconv"
	"time"

	"forestry-backend/internal/audit"
	"forestry-backend/internal/auth"
	"forestry-backend/internal/database"
	"forestry-backend/internal/ledger"
	"forestry-backend/internal/models"
	"forestry-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	MemberID      uint             `json:"member_id" validate:"required"`
	StockItemID   uint             `json:"stock_item_id" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Purpose       string           `json:"purpose"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	PaymentStatus string           `json:"payment_status"`
	PaymentMethod *string          `json:"payment_method"`
	Notes         string           `json:"notes"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

func ledgerError(err error) error {
	switch ledger.KindOf(err) {
	case ledger.KindValidation, ledger.KindInsufficientStock:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case ledger.KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case ledger.KindInvalidTransition, ledger.KindConflict:
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Unexpected error")
	}
}

func actorName(c *fiber.Ctx) (uint, string) {
	userID, _ := auth.CurrentUserID(c)
	var user models.AuthUser
	if err := database.DB.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.FullName
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid distribution id")
	}
	return uint(id), nil
}

// POST /api/distributions
func CreateHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var method *models.PaymentMethod
		if body.PaymentMethod != nil {
			m := models.PaymentMethod(*body.PaymentMethod)
			method = &m
		}

		d, err := coord.RequestDistribution(ledger.RequestInput{
			MemberID:      body.MemberID,
			StockItemID:   body.StockItemID,
			Quantity:      body.Quantity,
			Purpose:       models.DistributionPurpose(body.Purpose),
			PricePerUnit:  body.PricePerUnit,
			PaymentStatus: models.PaymentStatus(body.PaymentStatus),
			PaymentMethod: method,
			Notes:         body.Notes,
		})
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "distribution", d.ID, models.AuditActionCreate,
			"Distribution requested: "+d.WoodType+" "+d.WoodSize+" x "+d.Quantity.String(), nil, d)

		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

// GET /api/distributions?status=Pending&member_id=3
func ListHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Distribution{}).Preload("Member")

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if memberIDStr := c.Query("member_id"); memberIDStr != "" {
			if mid, err := strconv.Atoi(memberIDStr); err == nil && mid > 0 {
				dbq = dbq.Where("member_id = ?", mid)
			}
		}

		var list []models.Distribution
		if err := dbq.Order("request_date DESC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list distributions")
		}
		return c.JSON(list)
	}
}

// GET /api/distributions/pending lists the approval queue, oldest first.
func PendingHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.Distribution
		err := database.DB.Preload("Member").
			Where("status = ?", models.DistributionPending).
			Order("request_date ASC").
			Find(&list).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list pending distributions")
		}
		return c.JSON(list)
	}
}

// GET /api/distributions/:id
func GetHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var d models.Distribution
		if err := database.DB.Preload("Member").First(&d, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Distribution not found")
		}
		return c.JSON(d)
	}
}

// GET /api/distributions/member/:memberId
func MemberHistoryHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := strconv.Atoi(c.Params("memberId"))
		if err != nil || memberID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid member id")
		}
		var list []models.Distribution
		err = database.DB.
			Where("member_id = ?", memberID).
			Order("request_date DESC").
			Find(&list).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list member distributions")
		}
		return c.JSON(list)
	}
}

// POST /api/distributions/:id/approve
func ApproveHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body NotesRequest
		_ = c.BodyParser(&body)

		userID, userName := actorName(c)
		d, err := coord.Approve(id, userID, body.Notes)
		if err != nil {
			return ledgerError(err)
		}

		audit.Record(userID, userName, "distribution", d.ID, models.AuditActionTransition,
			"Distribution approved", nil, d)
		return c.JSON(d)
	}
}

// POST /api/distributions/:id/deliver
func DeliverHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body NotesRequest
		_ = c.BodyParser(&body)

		userID, userName := actorName(c)
		d, err := coord.Deliver(id, userID, body.Notes)
		if err != nil {
			return ledgerError(err)
		}

		audit.Record(userID, userName, "distribution", d.ID, models.AuditActionTransition,
			"Distribution delivered", nil, d)
		return c.JSON(d)
	}
}

// POST /api/distributions/:id/cancel
func CancelHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body NotesRequest
		_ = c.BodyParser(&body)

		d, err := coord.Cancel(id, body.Notes)
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "distribution", d.ID, models.AuditActionTransition,
			"Distribution cancelled", nil, d)
		return c.JSON(d)
	}
}

// POST /api/distributions/:id/return
func ReturnHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body NotesRequest
		_ = c.BodyParser(&body)

		d, err := coord.MarkReturned(id, body.Notes)
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "distribution", d.ID, models.AuditActionTransition,
			"Distribution returned", nil, d)
		return c.JSON(d)
	}
}

// GET /api/distributions/stats?from=2025-01-01&to=2025-12-31
func StatsHandler(coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var from, to *time.Time
		if fromStr := c.Query("from"); fromStr != "" {
			t, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
			}
			from = &t
		}
		if toStr := c.Query("to"); toStr != "" {
			t, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
			}
			end := t.Add(24*time.Hour - time.Second)
			to = &end
		}
		if (from == nil) != (to == nil) {
			return fiber.NewError(fiber.StatusBadRequest, "from and to must be given together")
		}

		sum, err := coord.Summarize(from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build statistics")
		}
		return c.JSON(sum)
	}
}
