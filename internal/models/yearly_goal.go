package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalDraft     GoalStatus = "Draft"
	GoalActive    GoalStatus = "Active"
	GoalCompleted GoalStatus = "Completed"
	GoalCancelled GoalStatus = "Cancelled"
)

// YearlyGoal holds the organization's targets for one calendar year.
type YearlyGoal struct {
	ID   uint `gorm:"primaryKey" json:"id"`
	Year int  `gorm:"uniqueIndex;not null" json:"year"`

	TargetWoodDistribution decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"target_wood_distribution"`
	TargetAttendanceRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:80" json:"target_attendance_rate"`
	TargetActiveMembers    int             `gorm:"not null;default:0" json:"target_active_members"`
	TargetNewMembers       int             `gorm:"not null;default:0" json:"target_new_members"`
	TargetRevenue          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"target_revenue"`
	TargetCategoryAMembers int             `gorm:"not null;default:0" json:"target_category_a_members"`
	TargetTreePlanting     int             `gorm:"not null;default:0" json:"target_tree_planting"`
	BudgetAllocation       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"budget_allocation"`

	Description string     `gorm:"type:text" json:"description"`
	Status      GoalStatus `gorm:"size:20;not null;default:Draft;index" json:"status"`

	CreatedByID  uint      `gorm:"not null" json:"created_by_id"`
	CreatedBy    AuthUser  `gorm:"foreignKey:CreatedByID" json:"-"`
	ApprovedByID *uint     `json:"approved_by_id"`
	ApprovedBy   *AuthUser `gorm:"foreignKey:ApprovedByID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
