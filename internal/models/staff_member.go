package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StaffPosition string

const (
	PositionChairman         StaffPosition = "Chairman"
	PositionViceChairman     StaffPosition = "Vice Chairman"
	PositionSecretary        StaffPosition = "Secretary"
	PositionTreasurer        StaffPosition = "Treasurer"
	PositionMember           StaffPosition = "Member"
	PositionAdvisor          StaffPosition = "Advisor"
	PositionForestOfficer    StaffPosition = "Forest Officer"
	PositionTechnicalOfficer StaffPosition = "Technical Officer"
	PositionCommunityLiaison StaffPosition = "Community Liaison"
)

func (p StaffPosition) Valid() bool {
	switch p {
	case PositionChairman, PositionViceChairman, PositionSecretary, PositionTreasurer,
		PositionMember, PositionAdvisor, PositionForestOfficer, PositionTechnicalOfficer,
		PositionCommunityLiaison:
		return true
	}
	return false
}

type StaffStatus string

const (
	StaffActive     StaffStatus = "Active"
	StaffInactive   StaffStatus = "Inactive"
	StaffOnLeave    StaffStatus = "On Leave"
	StaffTerminated StaffStatus = "Terminated"
)

// StaffMember is a paid office/field employee of the organization.
type StaffMember struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	FullName   string        `gorm:"size:100;not null" json:"full_name"`
	Position   StaffPosition `gorm:"size:30;not null;index" json:"position"`
	Department string        `gorm:"size:100;default:Administration" json:"department"`

	ContactNumber string `gorm:"size:15" json:"contact_number"`
	Email         string `gorm:"size:100" json:"email"`
	Address       string `gorm:"type:text" json:"address"`

	DateOfBirth    *time.Time `json:"date_of_birth"`
	JoinedDate     time.Time  `gorm:"not null" json:"joined_date"`
	TerminatedDate *time.Time `json:"terminated_date"`

	Photo            string `gorm:"size:255" json:"photo"`
	Qualifications   string `gorm:"type:text" json:"qualifications"`
	Experience       string `gorm:"type:text" json:"experience"`
	Responsibilities string `gorm:"type:text" json:"responsibilities"`

	Salary     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"salary"`
	Allowances decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"allowances"`

	Status     StaffStatus `gorm:"size:20;not null;default:Active;index" json:"status"`
	EmployeeID *string     `gorm:"size:50;uniqueIndex" json:"employee_id"`

	EmergencyContactName   string `gorm:"size:100" json:"emergency_contact_name"`
	EmergencyContactNumber string `gorm:"size:15" json:"emergency_contact_number"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
