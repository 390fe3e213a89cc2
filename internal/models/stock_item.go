package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockUnit string

const (
	UnitPieces     StockUnit = "pieces"
	UnitCubicFeet  StockUnit = "cubic_feet"
	UnitCubicMeter StockUnit = "cubic_meter"
	UnitBundle     StockUnit = "bundle"
	UnitTon        StockUnit = "ton"
)

func (u StockUnit) Valid() bool {
	switch u {
	case UnitPieces, UnitCubicFeet, UnitCubicMeter, UnitBundle, UnitTon:
		return true
	}
	return false
}

type WoodQuality string

const (
	QualityPremium  WoodQuality = "Premium"
	QualityStandard WoodQuality = "Standard"
	QualityBasic    WoodQuality = "Basic"
	QualityDamaged  WoodQuality = "Damaged"
)

func (q WoodQuality) Valid() bool {
	switch q {
	case QualityPremium, QualityStandard, QualityBasic, QualityDamaged:
		return true
	}
	return false
}

type StockStatus string

const (
	StockAvailable  StockStatus = "Available"
	StockLowStock   StockStatus = "Low Stock"
	StockOutOfStock StockStatus = "Out of Stock"
	StockReserved   StockStatus = "Reserved"
	StockExpired    StockStatus = "Expired"
)

// StockItem is one batch of wood. The total intake of a batch is partitioned
// into three pools: available, allocated (approved but not yet handed over)
// and distributed. Quantities move between pools only through ledger
// operations; Status is re-derived on every pool change.
type StockItem struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	WoodType string    `gorm:"size:100;not null;index:idx_stock_type_size" json:"wood_type"`
	Species  string    `gorm:"size:100" json:"species"`
	Size     string    `gorm:"size:50;not null;index:idx_stock_type_size" json:"size"`
	Unit     StockUnit `gorm:"size:20;not null;default:pieces" json:"unit"`

	QuantityAvailable   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"quantity_available"`
	QuantityAllocated   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"quantity_allocated"`
	QuantityDistributed decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"quantity_distributed"`

	PricePerUnit *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_per_unit"`

	ArrivalDate time.Time  `gorm:"index;not null" json:"arrival_date"`
	ExpiryDate  *time.Time `json:"expiry_date"`

	Source   string      `gorm:"size:100" json:"source"`
	Quality  WoodQuality `gorm:"size:20;not null;default:Standard;index" json:"quality"`
	Location string      `gorm:"size:100" json:"location"`

	// Below this the batch counts as under-stocked.
	MinimumThreshold decimal.Decimal `gorm:"type:decimal(10,2);not null;default:10" json:"minimum_threshold"`

	Status StockStatus `gorm:"size:20;not null;default:Available;index" json:"status"`

	AddedByID *uint     `json:"added_by_id"`
	AddedBy   *AuthUser `gorm:"foreignKey:AddedByID" json:"-"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
