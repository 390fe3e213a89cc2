package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DutyType string

const (
	DutyRegular     DutyType = "Regular"
	DutySpecial     DutyType = "Special"
	DutyEmergency   DutyType = "Emergency"
	DutyMaintenance DutyType = "Maintenance"
)

func (d DutyType) Valid() bool {
	switch d {
	case DutyRegular, DutySpecial, DutyEmergency, DutyMaintenance:
		return true
	}
	return false
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceExcused AttendanceStatus = "Excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance records one member's duty for one month. One record per member
// per month/year.
type Attendance struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	MemberID uint   `gorm:"not null;uniqueIndex:idx_attendance_member_period" json:"member_id"`
	Member   Member `json:"member"`

	AttendanceDate time.Time `gorm:"index;not null" json:"attendance_date"`
	Month          int       `gorm:"not null;uniqueIndex:idx_attendance_member_period;index:idx_attendance_period" json:"month"`
	Year           int       `gorm:"not null;uniqueIndex:idx_attendance_member_period;index:idx_attendance_period" json:"year"`

	DutyType DutyType        `gorm:"size:20;not null;default:Regular;index" json:"duty_type"`
	Hours    decimal.Decimal `gorm:"type:decimal(4,2);not null;default:8" json:"hours"`

	Location    string `gorm:"size:100" json:"location"`
	Description string `gorm:"type:text" json:"description"`

	VerifiedByID *uint     `json:"verified_by_id"`
	VerifiedBy   *AuthUser `gorm:"foreignKey:VerifiedByID" json:"-"`

	Status AttendanceStatus `gorm:"size:10;not null;default:Present;index" json:"status"`
	Notes  string           `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
