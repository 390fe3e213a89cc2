package ledger

import (
	"errors"
	"time"

	"forestry-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry owns the stock batches. All quantity changes go through Adjust so
// that pools and the derived status are always persisted together.
type Registry struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{DB: db, Now: time.Now}
}

type IntakeInput struct {
	WoodType         string
	Species          string
	Size             string
	Unit             models.StockUnit
	Quantity         decimal.Decimal
	PricePerUnit     *decimal.Decimal
	ArrivalDate      *time.Time
	ExpiryDate       *time.Time
	Source           string
	Quality          models.WoodQuality
	Location         string
	MinimumThreshold *decimal.Decimal
	AddedByID        *uint
	Notes            string
}

// Intake registers a new batch. The full initial quantity lands in the
// available pool.
func (r *Registry) Intake(in IntakeInput) (*models.StockItem, error) {
	if in.WoodType == "" || in.Size == "" {
		return nil, Validationf("wood type and size are required")
	}
	if in.Quantity.Sign() < 0 {
		return nil, Validationf("quantity cannot be negative")
	}
	if in.Unit == "" {
		in.Unit = models.UnitPieces
	}
	if !in.Unit.Valid() {
		return nil, Validationf("unknown unit %q", in.Unit)
	}
	if in.Quality == "" {
		in.Quality = models.QualityStandard
	}
	if !in.Quality.Valid() {
		return nil, Validationf("unknown quality %q", in.Quality)
	}
	if in.PricePerUnit != nil && in.PricePerUnit.Sign() < 0 {
		return nil, Validationf("price per unit cannot be negative")
	}

	now := r.Now()
	arrival := now
	if in.ArrivalDate != nil {
		arrival = *in.ArrivalDate
	}
	threshold := decimal.NewFromInt(10)
	if in.MinimumThreshold != nil {
		if in.MinimumThreshold.Sign() < 0 {
			return nil, Validationf("minimum threshold cannot be negative")
		}
		threshold = *in.MinimumThreshold
	}

	item := &models.StockItem{
		WoodType:            in.WoodType,
		Species:             in.Species,
		Size:                in.Size,
		Unit:                in.Unit,
		QuantityAvailable:   in.Quantity,
		QuantityAllocated:   decimal.Zero,
		QuantityDistributed: decimal.Zero,
		PricePerUnit:        in.PricePerUnit,
		ArrivalDate:         arrival,
		ExpiryDate:          in.ExpiryDate,
		Source:              in.Source,
		Quality:             in.Quality,
		Location:            in.Location,
		MinimumThreshold:    threshold,
		AddedByID:           in.AddedByID,
		Notes:               in.Notes,
	}
	item.Status = Classify(item.QuantityAvailable, item.MinimumThreshold, item.ExpiryDate, now)

	if err := r.DB.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust applies one pool operation. Quantities and the re-derived status
// are written in the same transaction; a stale status is never observable.
func (r *Registry) Adjust(itemID uint, delta decimal.Decimal, kind AdjustKind) (*models.StockItem, error) {
	var item *models.StockItem
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		got, err := lockStockItem(tx, itemID)
		if err != nil {
			return err
		}
		if err := applyAdjustment(got, delta, kind); err != nil {
			return err
		}
		rederiveStatus(got, r.Now())
		if err := tx.Save(got).Error; err != nil {
			return err
		}
		item = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// MarkReserved sets the externally managed Reserved override. The next pool
// operation re-derives status from quantities and clears it.
func (r *Registry) MarkReserved(itemID uint) (*models.StockItem, error) {
	var item *models.StockItem
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		got, err := lockStockItem(tx, itemID)
		if err != nil {
			return err
		}
		got.Status = models.StockReserved
		if err := tx.Save(got).Error; err != nil {
			return err
		}
		item = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Registry) Get(id uint) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.DB.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("stock item %d not found", id)
		}
		return nil, err
	}
	return &item, nil
}

func (r *Registry) List() ([]models.StockItem, error) {
	var items []models.StockItem
	err := r.DB.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *Registry) ListByStatus(status models.StockStatus) ([]models.StockItem, error) {
	var items []models.StockItem
	err := r.DB.Where("status = ?", status).Order("arrival_date ASC").Find(&items).Error
	return items, err
}

func (r *Registry) ListByType(woodType string) ([]models.StockItem, error) {
	var items []models.StockItem
	err := r.DB.Where("wood_type = ?", woodType).Order("arrival_date ASC").Find(&items).Error
	return items, err
}

// LowStock lists batches at or under their threshold, emptiest first.
func (r *Registry) LowStock() ([]models.StockItem, error) {
	var items []models.StockItem
	err := r.DB.
		Where("status IN ? OR quantity_available <= minimum_threshold",
			[]models.StockStatus{models.StockLowStock, models.StockOutOfStock}).
		Order("quantity_available ASC").
		Find(&items).Error
	return items, err
}

// ExpiringWithin lists batches whose expiry falls inside the next N days and
// that have not already expired.
func (r *Registry) ExpiringWithin(days int) ([]models.StockItem, error) {
	now := r.Now()
	until := now.AddDate(0, 0, days)
	var items []models.StockItem
	err := r.DB.
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", now, until).
		Where("status <> ?", models.StockExpired).
		Order("expiry_date ASC").
		Find(&items).Error
	return items, err
}

// OldestAvailable picks the batch that should satisfy a new request for the
// given type and size: oldest arrival first (FIFO).
func (r *Registry) OldestAvailable(woodType, size string) (*models.StockItem, error) {
	var item models.StockItem
	err := r.DB.
		Where("wood_type = ? AND size = ? AND status = ?", woodType, size, models.StockAvailable).
		Order("arrival_date ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("no available stock for %s %s", woodType, size)
		}
		return nil, err
	}
	return &item, nil
}

func lockStockItem(tx *gorm.DB, id uint) (*models.StockItem, error) {
	var item models.StockItem
	if err := forUpdate(tx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("stock item %d not found", id)
		}
		return nil, err
	}
	return &item, nil
}

// forUpdate adds a row lock on dialects that support it. SQLite, used in
// tests, serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
