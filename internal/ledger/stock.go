package ledger

import (
	"time"

	"forestry-backend/internal/models"

	"github.com/shopspring/decimal"
)

// AdjustKind names the four pool operations. They are the only way a stock
// batch's quantities change.
type AdjustKind string

const (
	AdjustAdd        AdjustKind = "add"
	AdjustAllocate   AdjustKind = "allocate"
	AdjustDistribute AdjustKind = "distribute"
	AdjustReturn     AdjustKind = "return"
)

// Classify derives the stock status from the available pool, the reorder
// threshold and the expiry date. Precedence: Expired, then Out of Stock,
// then Low Stock, then Available. Reserved is never derived here; it is an
// externally set override that the next pool operation clears.
func Classify(available, threshold decimal.Decimal, expiry *time.Time, now time.Time) models.StockStatus {
	if expiry != nil && !expiry.After(now) {
		return models.StockExpired
	}
	if available.Sign() <= 0 {
		return models.StockOutOfStock
	}
	if available.Cmp(threshold) <= 0 {
		return models.StockLowStock
	}
	return models.StockAvailable
}

// applyAdjustment moves |delta| between pools in memory. Allocation is the
// only operation that can fail: it must not drive the available pool
// negative. Distribute and return floor their source pool at zero.
func applyAdjustment(item *models.StockItem, delta decimal.Decimal, kind AdjustKind) error {
	delta = delta.Abs()
	switch kind {
	case AdjustAdd:
		item.QuantityAvailable = item.QuantityAvailable.Add(delta)
	case AdjustAllocate:
		if item.QuantityAvailable.Cmp(delta) < 0 {
			return InsufficientStockf("requested %s, only %s available", delta, item.QuantityAvailable)
		}
		item.QuantityAvailable = item.QuantityAvailable.Sub(delta)
		item.QuantityAllocated = item.QuantityAllocated.Add(delta)
	case AdjustDistribute:
		item.QuantityAllocated = floorZero(item.QuantityAllocated.Sub(delta))
		item.QuantityDistributed = item.QuantityDistributed.Add(delta)
	case AdjustReturn:
		item.QuantityAvailable = item.QuantityAvailable.Add(delta)
		item.QuantityDistributed = floorZero(item.QuantityDistributed.Sub(delta))
	default:
		return Validationf("unknown adjustment kind %q", kind)
	}
	return nil
}

// releaseAllocation reverses an allocation that was never delivered
// (Approved request cancelled).
func releaseAllocation(item *models.StockItem, qty decimal.Decimal) {
	qty = qty.Abs()
	item.QuantityAvailable = item.QuantityAvailable.Add(qty)
	item.QuantityAllocated = floorZero(item.QuantityAllocated.Sub(qty))
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}

func rederiveStatus(item *models.StockItem, now time.Time) {
	item.Status = Classify(item.QuantityAvailable, item.MinimumThreshold, item.ExpiryDate, now)
}
