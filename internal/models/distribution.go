package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DistributionStatus string

const (
	DistributionPending   DistributionStatus = "Pending"
	DistributionApproved  DistributionStatus = "Approved"
	DistributionDelivered DistributionStatus = "Delivered"
	DistributionCancelled DistributionStatus = "Cancelled"
	DistributionReturned  DistributionStatus = "Returned"
)

type DistributionPurpose string

const (
	PurposePersonalUse      DistributionPurpose = "Personal Use"
	PurposeConstruction     DistributionPurpose = "Construction"
	PurposeFuel             DistributionPurpose = "Fuel"
	PurposeSale             DistributionPurpose = "Sale"
	PurposeCommunityProject DistributionPurpose = "Community Project"
	PurposeOther            DistributionPurpose = "Other"
)

func (p DistributionPurpose) Valid() bool {
	switch p {
	case PurposePersonalUse, PurposeConstruction, PurposeFuel, PurposeSale, PurposeCommunityProject, PurposeOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid        PaymentStatus = "Paid"
	PaymentUnpaid      PaymentStatus = "Unpaid"
	PaymentPartial     PaymentStatus = "Partial"
	PaymentNotRequired PaymentStatus = "Not Required"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "Cash"
	PayBankTransfer PaymentMethod = "Bank Transfer"
	PayCheque       PaymentMethod = "Cheque"
	PayWorkExchange PaymentMethod = "Work Exchange"
	PayFree         PaymentMethod = "Free"
)

// Distribution is one member's request for wood from a single stock batch.
// WoodType and WoodSize are snapshots taken at request time so that later
// edits to the batch do not rewrite history. Status changes are driven by
// the ledger coordinator; the record itself never touches stock pools.
type Distribution struct {
	ID uint `gorm:"primaryKey" json:"id"`

	MemberID uint   `gorm:"index;not null" json:"member_id"`
	Member   Member `json:"member"`

	StockItemID uint      `gorm:"index;not null" json:"stock_item_id"`
	StockItem   StockItem `json:"-"`

	RequestDate time.Time `gorm:"index;not null" json:"request_date"`

	WoodType string `gorm:"size:100;not null" json:"wood_type"`
	WoodSize string `gorm:"size:50;not null" json:"wood_size"`

	Quantity     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"quantity"`
	Unit         StockUnit        `gorm:"size:20;not null;default:pieces" json:"unit"`
	PricePerUnit *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_per_unit"`
	TotalPrice   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_price"`

	Purpose DistributionPurpose `gorm:"size:30;not null;default:'Personal Use';index" json:"purpose"`
	Status  DistributionStatus  `gorm:"size:20;not null;default:Pending;index" json:"status"`

	ApprovedByID  *uint     `json:"approved_by_id"`
	ApprovedBy    *AuthUser `gorm:"foreignKey:ApprovedByID" json:"-"`
	DeliveredByID *uint     `json:"delivered_by_id"`
	DeliveredBy   *AuthUser `gorm:"foreignKey:DeliveredByID" json:"-"`

	// Each timestamp is written exactly once, the first time the
	// corresponding status is reached.
	ApprovedAt  *time.Time `json:"approved_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	ReturnedAt  *time.Time `json:"returned_at"`

	RequestNotes  string `gorm:"type:text" json:"request_notes"`
	ApprovalNotes string `gorm:"type:text" json:"approval_notes"`
	DeliveryNotes string `gorm:"type:text" json:"delivery_notes"`

	PaymentStatus PaymentStatus  `gorm:"size:20;not null;default:'Not Required';index" json:"payment_status"`
	PaymentMethod *PaymentMethod `gorm:"size:20" json:"payment_method"`
	ReceiptNumber *string        `gorm:"size:50;uniqueIndex" json:"receipt_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
