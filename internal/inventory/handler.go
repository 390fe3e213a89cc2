package inventory

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

type IntakeRequest struct {
	WoodType         string           `json:"wood_type" validate:"required,max=100"`
	Species          string           `json:"species" validate:"omitempty,max=100"`
	Size             string           `json:"size" validate:"required,max=50"`
	Unit             string           `json:"unit"`
	Quantity         decimal.Decimal  `json:"quantity"`
	PricePerUnit     *decimal.Decimal `json:"price_per_unit"`
	ArrivalDate      *time.Time       `json:"arrival_date"`
	ExpiryDate       *time.Time       `json:"expiry_date"`
	Source           string           `json:"source" validate:"omitempty,max=100"`
	Quality          string           `json:"quality"`
	Location         string           `json:"location" validate:"omitempty,max=100"`
	MinimumThreshold *decimal.Decimal `json:"minimum_threshold"`
	Notes            string           `json:"notes"`
}

type UpdateStockRequest struct {
	Species          *string          `json:"species" validate:"omitempty,max=100"`
	Quality          *string          `json:"quality"`
	Location         *string          `json:"location" validate:"omitempty,max=100"`
	Source           *string          `json:"source" validate:"omitempty,max=100"`
	PricePerUnit     *decimal.Decimal `json:"price_per_unit"`
	ExpiryDate       *time.Time       `json:"expiry_date"`
	MinimumThreshold *decimal.Decimal `json:"minimum_threshold"`
	Notes            *string          `json:"notes"`
}

type AddStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ledgerError maps a ledger error kind to the matching HTTP status.
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

// POST /api/inventory
func CreateStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body IntakeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		userID, userName := actorName(c)

		item, err := reg.Intake(ledger.IntakeInput{
			WoodType:         body.WoodType,
			Species:          body.Species,
			Size:             body.Size,
			Unit:             models.StockUnit(body.Unit),
			Quantity:         body.Quantity,
			PricePerUnit:     body.PricePerUnit,
			ArrivalDate:      body.ArrivalDate,
			ExpiryDate:       body.ExpiryDate,
			Source:           body.Source,
			Quality:          models.WoodQuality(body.Quality),
			Location:         body.Location,
			MinimumThreshold: body.MinimumThreshold,
			AddedByID:        &userID,
			Notes:            body.Notes,
		})
		if err != nil {
			return ledgerError(err)
		}

		audit.Record(userID, userName, "stock_item", item.ID, models.AuditActionCreate,
			"Stock batch registered: "+item.WoodType+" "+item.Size, nil, item)

		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GET /api/inventory?status=Available&wood_type=Pine
func ListStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.Query("status")
		woodType := c.Query("wood_type")

		var items []models.StockItem
		var err error
		switch {
		case status != "":
			items, err = reg.ListByStatus(models.StockStatus(status))
		case woodType != "":
			items, err = reg.ListByType(woodType)
		default:
			items, err = reg.List()
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list stock")
		}
		return c.JSON(items)
	}
}

// GET /api/inventory/:id
func GetStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock item id")
		}
		item, err := reg.Get(uint(id))
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(item)
	}
}

// PUT /api/inventory/:id updates descriptive fields only. Quantities are
// never touched here; they move through ledger operations.
func UpdateStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock item id")
		}

		var body UpdateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		item, err := reg.Get(uint(id))
		if err != nil {
			return ledgerError(err)
		}
		before := *item

		if body.Species != nil {
			item.Species = *body.Species
		}
		if body.Quality != nil {
			q := models.WoodQuality(*body.Quality)
			if !q.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown quality")
			}
			item.Quality = q
		}
		if body.Location != nil {
			item.Location = *body.Location
		}
		if body.Source != nil {
			item.Source = *body.Source
		}
		if body.PricePerUnit != nil {
			if body.PricePerUnit.Sign() < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Price per unit cannot be negative")
			}
			item.PricePerUnit = body.PricePerUnit
		}
		if body.ExpiryDate != nil {
			item.ExpiryDate = body.ExpiryDate
		}
		if body.MinimumThreshold != nil {
			if body.MinimumThreshold.Sign() < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Minimum threshold cannot be negative")
			}
			item.MinimumThreshold = *body.MinimumThreshold
		}
		if body.Notes != nil {
			item.Notes = *body.Notes
		}

		if err := database.DB.Save(item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update stock item")
		}

		// Threshold or expiry edits can change the derived status.
		updated, err := reg.Adjust(item.ID, decimal.Zero, ledger.AdjustAdd)
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "stock_item", item.ID, models.AuditActionUpdate,
			"Stock batch updated", before, updated)

		return c.JSON(updated)
	}
}

// POST /api/inventory/:id/add-stock
func AddStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock item id")
		}

		var body AddStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Quantity.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be greater than zero")
		}

		item, err := reg.Adjust(uint(id), body.Quantity, ledger.AdjustAdd)
		if err != nil {
			return ledgerError(err)
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "stock_item", item.ID, models.AuditActionUpdate,
			"Stock replenished by "+body.Quantity.String(), nil, item)

		return c.JSON(item)
	}
}

// POST /api/inventory/:id/reserve
func ReserveStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock item id")
		}
		item, err := reg.MarkReserved(uint(id))
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(item)
	}
}

// DELETE /api/inventory/:id refuses while any distribution references the
// batch; history must keep its snapshots resolvable.
func DeleteStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock item id")
		}

		item, err := reg.Get(uint(id))
		if err != nil {
			return ledgerError(err)
		}

		var refs int64
		database.DB.Model(&models.Distribution{}).
			Where("stock_item_id = ?", item.ID).
			Count(&refs)
		if refs > 0 {
			return fiber.NewError(fiber.StatusConflict, "Stock item is referenced by distributions and cannot be deleted")
		}

		if err := database.DB.Delete(item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete stock item")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "stock_item", item.ID, models.AuditActionDelete,
			"Stock batch deleted: "+item.WoodType+" "+item.Size, item, nil)

		return c.JSON(fiber.Map{"message": "Stock item deleted"})
	}
}

// GET /api/inventory/low-stock
func LowStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := reg.LowStock()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list low stock")
		}
		return c.JSON(items)
	}
}

// GET /api/inventory/expiring?days=30
func ExpiringStockHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := 30
		if d, err := strconv.Atoi(c.Query("days", "30")); err == nil && d > 0 {
			days = d
		}
		items, err := reg.ExpiringWithin(days)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expiring stock")
		}
		return c.JSON(items)
	}
}

type typeSummaryRow struct {
	WoodType    string          `json:"wood_type"`
	Batches     int64           `json:"batches"`
	Available   decimal.Decimal `json:"available"`
	Allocated   decimal.Decimal `json:"allocated"`
	Distributed decimal.Decimal `json:"distributed"`
}

// GET /api/inventory/summary
func StockSummaryHandler(reg *ledger.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var byType []typeSummaryRow
		err := database.DB.Model(&models.StockItem{}).
			Select("wood_type, COUNT(id) AS batches, COALESCE(SUM(quantity_available), 0) AS available, COALESCE(SUM(quantity_allocated), 0) AS allocated, COALESCE(SUM(quantity_distributed), 0) AS distributed").
			Group("wood_type").
			Scan(&byType).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build summary")
		}

		type statusRow struct {
			Status models.StockStatus `json:"status"`
			Count  int64              `json:"count"`
		}
		var byStatus []statusRow
		err = database.DB.Model(&models.StockItem{}).
			Select("status, COUNT(id) AS count").
			Group("status").
			Scan(&byStatus).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build summary")
		}

		return c.JSON(fiber.Map{
			"by_type":   byType,
			"by_status": byStatus,
		})
	}
}
