package ledger

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"forestry-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Coordinator drives the distribution workflow. Every mutating call is one
// transaction covering the request row and its stock batch: either both are
// updated or neither is.
type Coordinator struct {
	DB  *gorm.DB
	Log *logrus.Logger
	Now func() time.Time
}

func NewCoordinator(db *gorm.DB, log *logrus.Logger) *Coordinator {
	return &Coordinator{DB: db, Log: log, Now: time.Now}
}

type RequestInput struct {
	MemberID      uint
	StockItemID   uint
	Quantity      decimal.Decimal
	Purpose       models.DistributionPurpose
	PricePerUnit  *decimal.Decimal
	PaymentStatus models.PaymentStatus
	PaymentMethod *models.PaymentMethod
	Notes         string
}

// RequestDistribution creates a Pending request after checking the batch can
// cover it. No quantity moves yet; pools change only on approval.
func (c *Coordinator) RequestDistribution(in RequestInput) (*models.Distribution, error) {
	if in.Quantity.Sign() <= 0 {
		return nil, Validationf("quantity must be greater than zero")
	}
	if in.Purpose == "" {
		in.Purpose = models.PurposePersonalUse
	}
	if !in.Purpose.Valid() {
		return nil, Validationf("unknown purpose %q", in.Purpose)
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = models.PaymentNotRequired
	}

	var dist *models.Distribution
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.First(&member, "id = ?", in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("member %d not found", in.MemberID)
			}
			return err
		}

		item, err := lockStockItem(tx, in.StockItemID)
		if err != nil {
			return err
		}
		if item.QuantityAvailable.Cmp(in.Quantity) < 0 {
			return InsufficientStockf("requested %s, only %s available", in.Quantity, item.QuantityAvailable)
		}

		price := in.PricePerUnit
		if price == nil {
			price = item.PricePerUnit
		}

		d := &models.Distribution{
			MemberID:      in.MemberID,
			StockItemID:   item.ID,
			RequestDate:   c.Now(),
			WoodType:      item.WoodType,
			WoodSize:      item.Size,
			Quantity:      in.Quantity,
			Unit:          item.Unit,
			PricePerUnit:  price,
			Purpose:       in.Purpose,
			Status:        models.DistributionPending,
			RequestNotes:  in.Notes,
			PaymentStatus: in.PaymentStatus,
			PaymentMethod: in.PaymentMethod,
		}
		applyTotalPrice(d)

		if err := tx.Create(d).Error; err != nil {
			return err
		}
		dist = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Log.WithFields(logrus.Fields{
		"distribution": dist.ID,
		"member":       dist.MemberID,
		"stock_item":   dist.StockItemID,
		"quantity":     dist.Quantity,
	}).Info("distribution requested")
	return dist, nil
}

// Approve moves a Pending request to Approved and allocates its quantity.
// Availability is re-validated here: other requests may have consumed the
// pool since the request was created.
func (c *Coordinator) Approve(requestID, approverID uint, notes string) (*models.Distribution, error) {
	return c.transition(requestID, models.DistributionApproved, func(tx *gorm.DB, d *models.Distribution, now time.Time) error {
		item, err := lockStockItem(tx, d.StockItemID)
		if err != nil {
			return err
		}
		if err := applyAdjustment(item, d.Quantity, AdjustAllocate); err != nil {
			return err
		}
		rederiveStatus(item, now)
		if err := tx.Save(item).Error; err != nil {
			return err
		}

		d.ApprovedByID = &approverID
		if d.ApprovedAt == nil {
			d.ApprovedAt = &now
		}
		if notes != "" {
			d.ApprovalNotes = notes
		}
		return nil
	})
}

// Deliver moves an Approved request to Delivered, shifts the quantity from
// allocated to distributed and issues a receipt number if the request does
// not carry one yet.
func (c *Coordinator) Deliver(requestID, delivererID uint, notes string) (*models.Distribution, error) {
	return c.transition(requestID, models.DistributionDelivered, func(tx *gorm.DB, d *models.Distribution, now time.Time) error {
		item, err := lockStockItem(tx, d.StockItemID)
		if err != nil {
			return err
		}
		if err := applyAdjustment(item, d.Quantity, AdjustDistribute); err != nil {
			return err
		}
		rederiveStatus(item, now)
		if err := tx.Save(item).Error; err != nil {
			return err
		}

		d.DeliveredByID = &delivererID
		if d.DeliveredAt == nil {
			d.DeliveredAt = &now
		}
		if notes != "" {
			d.DeliveryNotes = notes
		}
		if d.ReceiptNumber == nil {
			num, err := nextReceiptNumber(tx, now)
			if err != nil {
				return err
			}
			d.ReceiptNumber = &num
		}
		return nil
	})
}

// Cancel ends a Pending or Approved request. A Pending request never moved
// any quantity; an Approved one has its allocation released back to the
// available pool.
func (c *Coordinator) Cancel(requestID uint, notes string) (*models.Distribution, error) {
	return c.transition(requestID, models.DistributionCancelled, func(tx *gorm.DB, d *models.Distribution, now time.Time) error {
		if d.Status == models.DistributionApproved {
			item, err := lockStockItem(tx, d.StockItemID)
			if err != nil {
				return err
			}
			releaseAllocation(item, d.Quantity)
			rederiveStatus(item, now)
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		if notes != "" {
			d.ApprovalNotes = notes
		}
		return nil
	})
}

// MarkReturned takes a Delivered request back: the quantity leaves the
// distributed pool and becomes available again.
func (c *Coordinator) MarkReturned(requestID uint, notes string) (*models.Distribution, error) {
	return c.transition(requestID, models.DistributionReturned, func(tx *gorm.DB, d *models.Distribution, now time.Time) error {
		item, err := lockStockItem(tx, d.StockItemID)
		if err != nil {
			return err
		}
		if err := applyAdjustment(item, d.Quantity, AdjustReturn); err != nil {
			return err
		}
		rederiveStatus(item, now)
		if err := tx.Save(item).Error; err != nil {
			return err
		}

		if d.ReturnedAt == nil {
			d.ReturnedAt = &now
		}
		if notes != "" {
			d.DeliveryNotes = notes
		}
		return nil
	})
}

// transition runs one status change and its side effects as a single unit.
// The target status is checked against the transition table before any side
// effect executes, so an illegal move leaves both records untouched.
func (c *Coordinator) transition(requestID uint, to models.DistributionStatus, sideEffects func(tx *gorm.DB, d *models.Distribution, now time.Time) error) (*models.Distribution, error) {
	now := c.Now()
	var dist *models.Distribution
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		d, err := lockDistribution(tx, requestID)
		if err != nil {
			return err
		}
		if err := checkTransition(d, to); err != nil {
			return err
		}
		if err := sideEffects(tx, d, now); err != nil {
			return err
		}
		d.Status = to
		applyTotalPrice(d)
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		dist = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Log.WithFields(logrus.Fields{
		"distribution": dist.ID,
		"status":       dist.Status,
	}).Info("distribution transitioned")
	return dist, nil
}

type StatusSummary struct {
	Status   models.DistributionStatus `json:"status"`
	Count    int64                     `json:"count"`
	Quantity decimal.Decimal           `json:"quantity"`
	Value    decimal.Decimal           `json:"value"`
}

type Summary struct {
	ByStatus      []StatusSummary `json:"by_status"`
	TotalCount    int64           `json:"total_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// Summarize aggregates requests by status, optionally restricted to a
// delivery date window. Pure read.
func (c *Coordinator) Summarize(from, to *time.Time) (*Summary, error) {
	q := c.DB.Model(&models.Distribution{}).
		Select("status, COUNT(id) AS count, COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(total_price), 0) AS value").
		Group("status")
	if from != nil && to != nil {
		q = q.Where("delivered_at >= ? AND delivered_at <= ?", *from, *to)
	}

	var rows []StatusSummary
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	sum := &Summary{
		ByStatus:      rows,
		TotalQuantity: decimal.Zero,
		TotalValue:    decimal.Zero,
	}
	for _, row := range rows {
		sum.TotalCount += row.Count
		sum.TotalQuantity = sum.TotalQuantity.Add(row.Quantity)
		sum.TotalValue = sum.TotalValue.Add(row.Value)
	}
	return sum, nil
}

func (c *Coordinator) Get(id uint) (*models.Distribution, error) {
	var d models.Distribution
	if err := c.DB.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("distribution request %d not found", id)
		}
		return nil, err
	}
	return &d, nil
}

func lockDistribution(tx *gorm.DB, id uint) (*models.Distribution, error) {
	var d models.Distribution
	if err := forUpdate(tx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("distribution request %d not found", id)
		}
		return nil, err
	}
	return &d, nil
}

// applyTotalPrice recomputes the derived total before persistence. Without a
// unit price the total stays untouched.
func applyTotalPrice(d *models.Distribution) {
	if d.PricePerUnit != nil {
		total := d.Quantity.Mul(*d.PricePerUnit)
		d.TotalPrice = &total
	}
}

// nextReceiptNumber picks an unused DFG-YYYYMMDD-NNN number. The unique
// index on receipt_number backs this up against races.
func nextReceiptNumber(tx *gorm.DB, now time.Time) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		candidate := fmt.Sprintf("DFG-%s-%03d", now.Format("20060102"), rand.Intn(1000))
		var count int64
		if err := tx.Model(&models.Distribution{}).Where("receipt_number = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", Conflictf("could not allocate a unique receipt number")
}
