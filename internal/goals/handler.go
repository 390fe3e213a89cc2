package goals

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

type CreateGoalRequest struct {
	Year                   int              `json:"year" validate:"required,min=2000,max=2100"`
	TargetWoodDistribution *decimal.Decimal `json:"target_wood_distribution"`
	TargetAttendanceRate   *decimal.Decimal `json:"target_attendance_rate"`
	TargetActiveMembers    int              `json:"target_active_members"`
	TargetNewMembers       int              `json:"target_new_members"`
	TargetRevenue          *decimal.Decimal `json:"target_revenue"`
	TargetCategoryAMembers int              `json:"target_category_a_members"`
	TargetTreePlanting     int              `json:"target_tree_planting"`
	BudgetAllocation       *decimal.Decimal `json:"budget_allocation"`
	Description            string           `json:"description"`
}

type UpdateGoalRequest struct {
	TargetWoodDistribution *decimal.Decimal `json:"target_wood_distribution"`
	TargetAttendanceRate   *decimal.Decimal `json:"target_attendance_rate"`
	TargetActiveMembers    *int             `json:"target_active_members"`
	TargetNewMembers       *int             `json:"target_new_members"`
	TargetRevenue          *decimal.Decimal `json:"target_revenue"`
	TargetCategoryAMembers *int             `json:"target_category_a_members"`
	TargetTreePlanting     *int             `json:"target_tree_planting"`
	BudgetAllocation       *decimal.Decimal `json:"budget_allocation"`
	Description            *string          `json:"description"`
	Status                 *string          `json:"status"`
}

func actorName(c *fiber.Ctx) (uint, string) {
	userID, _ := auth.CurrentUserID(c)
	var user models.AuthUser
	if err := database.DB.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.FullName
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// POST /api/goals
func CreateGoalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateGoalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Check(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var count int64
		database.DB.Model(&models.YearlyGoal{}).
			Where("year = ?", body.Year).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "A goal for this year already exists")
		}

		userID, userName := actorName(c)

		attendanceRate := decimal.NewFromInt(80)
		if body.TargetAttendanceRate != nil {
			attendanceRate = *body.TargetAttendanceRate
		}

		goal := models.YearlyGoal{
			Year:                   body.Year,
			TargetWoodDistribution: orZero(body.TargetWoodDistribution),
			TargetAttendanceRate:   attendanceRate,
			TargetActiveMembers:    body.TargetActiveMembers,
			TargetNewMembers:       body.TargetNewMembers,
			TargetRevenue:          orZero(body.TargetRevenue),
			TargetCategoryAMembers: body.TargetCategoryAMembers,
			TargetTreePlanting:     body.TargetTreePlanting,
			BudgetAllocation:       orZero(body.BudgetAllocation),
			Description:            body.Description,
			Status:                 models.GoalDraft,
			CreatedByID:            userID,
		}

		if err := database.DB.Create(&goal).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create goal")
		}

		audit.Record(userID, userName, "yearly_goal", goal.ID, models.AuditActionCreate,
			"Yearly goal created for "+strconv.Itoa(goal.Year), nil, goal)

		return c.Status(fiber.StatusCreated).JSON(goal)
	}
}

// GET /api/goals
func ListGoalsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.YearlyGoal
		if err := database.DB.Order("year DESC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list goals")
		}
		return c.JSON(list)
	}
}

// GET /api/goals/:year
func GetGoalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil || year <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year")
		}
		var goal models.YearlyGoal
		if err := database.DB.First(&goal, "year = ?", year).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "No goal for that year")
		}
		return c.JSON(goal)
	}
}

// PUT /api/goals/:year
func UpdateGoalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil || year <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year")
		}

		var body UpdateGoalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var goal models.YearlyGoal
		if err := database.DB.First(&goal, "year = ?", year).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "No goal for that year")
		}
		before := goal

		if body.TargetWoodDistribution != nil {
			goal.TargetWoodDistribution = *body.TargetWoodDistribution
		}
		if body.TargetAttendanceRate != nil {
			goal.TargetAttendanceRate = *body.TargetAttendanceRate
		}
		if body.TargetActiveMembers != nil {
			goal.TargetActiveMembers = *body.TargetActiveMembers
		}
		if body.TargetNewMembers != nil {
			goal.TargetNewMembers = *body.TargetNewMembers
		}
		if body.TargetRevenue != nil {
			goal.TargetRevenue = *body.TargetRevenue
		}
		if body.TargetCategoryAMembers != nil {
			goal.TargetCategoryAMembers = *body.TargetCategoryAMembers
		}
		if body.TargetTreePlanting != nil {
			goal.TargetTreePlanting = *body.TargetTreePlanting
		}
		if body.BudgetAllocation != nil {
			goal.BudgetAllocation = *body.BudgetAllocation
		}
		if body.Description != nil {
			goal.Description = *body.Description
		}

		userID, userName := actorName(c)

		if body.Status != nil {
			status := models.GoalStatus(*body.Status)
			switch status {
			case models.GoalDraft, models.GoalActive, models.GoalCompleted, models.GoalCancelled:
			default:
				return fiber.NewError(fiber.StatusBadRequest, "Unknown status")
			}
			if status == models.GoalActive && goal.Status == models.GoalDraft {
				goal.ApprovedByID = &userID
			}
			goal.Status = status
		}

		if err := database.DB.Save(&goal).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update goal")
		}

		audit.Record(userID, userName, "yearly_goal", goal.ID, models.AuditActionUpdate,
			"Yearly goal updated for "+strconv.Itoa(goal.Year), before, goal)

		return c.JSON(goal)
	}
}

// DELETE /api/goals/:year
func DeleteGoalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil || year <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year")
		}

		var goal models.YearlyGoal
		if err := database.DB.First(&goal, "year = ?", year).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "No goal for that year")
		}

		if err := database.DB.Delete(&goal).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete goal")
		}

		userID, userName := actorName(c)
		audit.Record(userID, userName, "yearly_goal", goal.ID, models.AuditActionDelete,
			"Yearly goal removed for "+strconv.Itoa(goal.Year), goal, nil)

		return c.JSON(fiber.Map{"message": "Goal deleted"})
	}
}

// GET /api/goals/:year/progress compares the targets with what the year has
// actually produced so far.
func GoalProgressHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil || year <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid year")
		}

		var goal models.YearlyGoal
		if err := database.DB.First(&goal, "year = ?", year).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "No goal for that year")
		}

		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)

		type deliveredRow struct {
			Quantity decimal.Decimal
			Value    decimal.Decimal
		}
		var delivered deliveredRow
		database.DB.Model(&models.Distribution{}).
			Select("COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(total_price), 0) AS value").
			Where("status = ? AND delivered_at >= ? AND delivered_at < ?", models.DistributionDelivered, start, end).
			Scan(&delivered)

		var activeMembers int64
		database.DB.Model(&models.Member{}).
			Where("status = ?", models.MemberActive).
			Count(&activeMembers)

		var newMembers int64
		database.DB.Model(&models.Member{}).
			Where("joined_date >= ? AND joined_date < ?", start, end).
			Count(&newMembers)

		var categoryA int64
		database.DB.Model(&models.Member{}).
			Where("category = ?", models.CategoryA).
			Count(&categoryA)

		return c.JSON(fiber.Map{
			"goal": goal,
			"actual": fiber.Map{
				"wood_distributed":   delivered.Quantity,
				"revenue":            delivered.Value,
				"active_members":     activeMembers,
				"new_members":        newMembers,
				"category_a_members": categoryA,
			},
		})
	}
}
