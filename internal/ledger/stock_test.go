package ledger

import (
	"testing"
	"time"

	"forestry-backend/internal/models"

	"github.com/shopspring/decimal"
)

func TestClassify(t *testing.T) {
	now := testNow
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		available string
		threshold string
		expiry    *time.Time
		want      models.StockStatus
	}{
		{"plenty", "100", "10", nil, models.StockAvailable},
		{"just above threshold", "10.01", "10", nil, models.StockAvailable},
		{"at threshold", "10", "10", nil, models.StockLowStock},
		{"below threshold", "5", "10", nil, models.StockLowStock},
		{"zero", "0", "10", nil, models.StockOutOfStock},
		{"negative guard", "-1", "10", nil, models.StockOutOfStock},
		{"out of stock beats low stock", "0", "100", nil, models.StockOutOfStock},
		{"expired beats everything", "100", "10", &past, models.StockExpired},
		{"expiring exactly now", "100", "10", &now, models.StockExpired},
		{"future expiry ignored", "100", "10", &future, models.StockAvailable},
		{"expired and empty", "0", "10", &past, models.StockExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(dec(t, tt.available), dec(t, tt.threshold), tt.expiry, now)
			if got != tt.want {
				t.Errorf("Classify(%s, %s) = %s, want %s", tt.available, tt.threshold, got, tt.want)
			}
		})
	}
}

// Conservation: across any sequence of pool operations the three pools sum
// to the total quantity ever added, and no pool goes negative.
func TestPoolConservation(t *testing.T) {
	item := &models.StockItem{
		QuantityAvailable:   decimal.Zero,
		QuantityAllocated:   decimal.Zero,
		QuantityDistributed: decimal.Zero,
	}

	ops := []struct {
		kind  AdjustKind
		delta string
	}{
		{AdjustAdd, "100"},
		{AdjustAllocate, "30"},
		{AdjustDistribute, "30"},
		{AdjustAllocate, "20"},
		{AdjustReturn, "10"},
		{AdjustAdd, "50.25"},
		{AdjustDistribute, "20"},
		{AdjustAllocate, "5.5"},
	}

	totalAdded := decimal.Zero
	for i, op := range ops {
		delta := dec(t, op.delta)
		if err := applyAdjustment(item, delta, op.kind); err != nil {
			t.Fatalf("op %d (%s %s): %v", i, op.kind, op.delta, err)
		}
		if op.kind == AdjustAdd {
			totalAdded = totalAdded.Add(delta)
		}

		sum := item.QuantityAvailable.Add(item.QuantityAllocated).Add(item.QuantityDistributed)
		if !sum.Equal(totalAdded) {
			t.Fatalf("op %d (%s %s): pools sum to %s, want %s", i, op.kind, op.delta, sum, totalAdded)
		}
		for _, pool := range []decimal.Decimal{item.QuantityAvailable, item.QuantityAllocated, item.QuantityDistributed} {
			if pool.Sign() < 0 {
				t.Fatalf("op %d (%s %s): negative pool %s", i, op.kind, op.delta, pool)
			}
		}
	}
}

func TestAllocateBlocksOverdraw(t *testing.T) {
	item := &models.StockItem{QuantityAvailable: dec(t, "30")}

	err := applyAdjustment(item, dec(t, "40"), AdjustAllocate)
	if err == nil {
		t.Fatal("expected error allocating 40 of 30")
	}
	if KindOf(err) != KindInsufficientStock {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindInsufficientStock)
	}
	if !item.QuantityAvailable.Equal(dec(t, "30")) || item.QuantityAllocated.Sign() != 0 {
		t.Fatalf("failed allocation mutated pools: %s/%s", item.QuantityAvailable, item.QuantityAllocated)
	}
}

func TestAdjustmentUsesAbsoluteDelta(t *testing.T) {
	item := &models.StockItem{QuantityAvailable: dec(t, "10")}
	if err := applyAdjustment(item, dec(t, "-5"), AdjustAdd); err != nil {
		t.Fatal(err)
	}
	if !item.QuantityAvailable.Equal(dec(t, "15")) {
		t.Fatalf("available = %s, want 15", item.QuantityAvailable)
	}
}

func TestDistributeAndReturnFloorAtZero(t *testing.T) {
	item := &models.StockItem{
		QuantityAvailable:   decimal.Zero,
		QuantityAllocated:   dec(t, "5"),
		QuantityDistributed: dec(t, "3"),
	}

	if err := applyAdjustment(item, dec(t, "8"), AdjustDistribute); err != nil {
		t.Fatal(err)
	}
	if item.QuantityAllocated.Sign() != 0 {
		t.Fatalf("allocated = %s, want 0", item.QuantityAllocated)
	}

	if err := applyAdjustment(item, dec(t, "100"), AdjustReturn); err != nil {
		t.Fatal(err)
	}
	if item.QuantityDistributed.Sign() != 0 {
		t.Fatalf("distributed = %s, want 0", item.QuantityDistributed)
	}
}
