package dashboard

import (
	"time"

	"forestry-backend/internal/database"
	"forestry-backend/internal/ledger"
	"forestry-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type stockTotals struct {
	Available   decimal.Decimal `json:"available"`
	Allocated   decimal.Decimal `json:"allocated"`
	Distributed decimal.Decimal `json:"distributed"`
}

// GET /api/dashboard pulls the headline numbers for the office screen in one
// round trip.
func OverviewHandler(reg *ledger.Registry, coord *ledger.Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()

		var totalMembers, activeMembers int64
		database.DB.Model(&models.Member{}).Count(&totalMembers)
		database.DB.Model(&models.Member{}).
			Where("status = ?", models.MemberActive).
			Count(&activeMembers)

		type categoryRow struct {
			Category models.MemberCategory `json:"category"`
			Count    int64                 `json:"count"`
		}
		var byCategory []categoryRow
		database.DB.Model(&models.Member{}).
			Select("category, COUNT(id) AS count").
			Group("category").
			Scan(&byCategory)

		var totals stockTotals
		database.DB.Model(&models.StockItem{}).
			Select("COALESCE(SUM(quantity_available), 0) AS available, COALESCE(SUM(quantity_allocated), 0) AS allocated, COALESCE(SUM(quantity_distributed), 0) AS distributed").
			Scan(&totals)

		lowStock, err := reg.LowStock()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load dashboard")
		}
		expiring, err := reg.ExpiringWithin(30)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load dashboard")
		}

		var pendingRequests int64
		database.DB.Model(&models.Distribution{}).
			Where("status = ?", models.DistributionPending).
			Count(&pendingRequests)

		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		monthEnd := monthStart.AddDate(0, 1, 0)
		monthSummary, err := coord.Summarize(&monthStart, &monthEnd)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load dashboard")
		}

		var activeStaff int64
		database.DB.Model(&models.StaffMember{}).
			Where("status = ?", models.StaffActive).
			Count(&activeStaff)

		var currentGoal models.YearlyGoal
		goalFound := database.DB.
			Where("year = ?", now.Year()).
			First(&currentGoal).Error == nil

		resp := fiber.Map{
			"members": fiber.Map{
				"total":       totalMembers,
				"active":      activeMembers,
				"by_category": byCategory,
			},
			"stock": fiber.Map{
				"totals":        totals,
				"low_stock":     len(lowStock),
				"expiring_soon": len(expiring),
			},
			"distributions": fiber.Map{
				"pending":    pendingRequests,
				"this_month": monthSummary,
			},
			"staff": fiber.Map{
				"active": activeStaff,
			},
		}
		if goalFound {
			resp["current_goal"] = currentGoal
		}

		return c.JSON(resp)
	}
}

// GET /api/dashboard/recent-activity
func RecentActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var logs []models.AuditLog
		err := database.DB.
			Order("created_at DESC").
			Limit(20).
			Find(&logs).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load recent activity")
		}
		return c.JSON(logs)
	}
}
