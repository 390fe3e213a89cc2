package models

import (
	"time"

	"gorm.io/gorm"
)

type MemberCategory string

const (
	CategoryA MemberCategory = "A"
	CategoryB MemberCategory = "B"
	CategoryC MemberCategory = "C"
)

type MemberStatus string

const (
	MemberActive  MemberStatus = "Active"
	MemberPassive MemberStatus = "Passive"
)

// Member is a community member entitled to wood distributions. Category is
// derived from accumulated attendance days (see members.CategoryFor), never
// set directly by callers.
type Member struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CardNumber      string `gorm:"size:50;uniqueIndex;not null" json:"card_number"`
	FullName        string `gorm:"size:100;not null;index" json:"full_name"`
	GrandfatherName string `gorm:"size:100" json:"grandfather_name"`
	Photo           string `gorm:"size:255" json:"photo"`
	FamilyDetails   string `gorm:"type:text" json:"family_details"`
	ContactNumber   string `gorm:"size:15" json:"contact_number"`
	Address         string `gorm:"type:text" json:"address"`

	DateOfBirth *time.Time `json:"date_of_birth"`
	JoinedDate  time.Time  `gorm:"not null" json:"joined_date"`

	Category MemberCategory `gorm:"size:1;not null;default:C;index" json:"category"`
	Status   MemberStatus   `gorm:"size:10;not null;default:Passive;index" json:"status"`

	TotalAttendanceDays int        `gorm:"not null;default:0" json:"total_attendance_days"`
	LastAttendanceDate  *time.Time `json:"last_attendance_date"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
