package ledger

import (
	"testing"
	"time"

	"forestry-backend/internal/models"

	"github.com/shopspring/decimal"
)

func TestIntakeValidation(t *testing.T) {
	r := newTestRegistry(t, newTestDB(t))

	if _, err := r.Intake(IntakeInput{Size: "2x4", Quantity: decimal.NewFromInt(5)}); KindOf(err) != KindValidation {
		t.Errorf("missing wood type: kind = %q, want validation", KindOf(err))
	}
	if _, err := r.Intake(IntakeInput{WoodType: "Pine", Quantity: decimal.NewFromInt(5)}); KindOf(err) != KindValidation {
		t.Errorf("missing size: kind = %q, want validation", KindOf(err))
	}
	if _, err := r.Intake(IntakeInput{WoodType: "Pine", Size: "2x4", Quantity: decimal.NewFromInt(-1)}); KindOf(err) != KindValidation {
		t.Errorf("negative quantity: kind = %q, want validation", KindOf(err))
	}
	if _, err := r.Intake(IntakeInput{WoodType: "Pine", Size: "2x4", Quantity: decimal.NewFromInt(5), Unit: "barrels"}); KindOf(err) != KindValidation {
		t.Errorf("bad unit: kind = %q, want validation", KindOf(err))
	}
}

func TestIntakeDefaults(t *testing.T) {
	r := newTestRegistry(t, newTestDB(t))

	item, err := r.Intake(IntakeInput{WoodType: "Oak", Size: "1x6", Quantity: dec(t, "40")})
	if err != nil {
		t.Fatal(err)
	}
	if item.Unit != models.UnitPieces {
		t.Errorf("unit = %s, want pieces", item.Unit)
	}
	if item.Quality != models.QualityStandard {
		t.Errorf("quality = %s, want Standard", item.Quality)
	}
	if !item.MinimumThreshold.Equal(dec(t, "10")) {
		t.Errorf("threshold = %s, want 10", item.MinimumThreshold)
	}
	if item.Status != models.StockAvailable {
		t.Errorf("status = %s, want Available", item.Status)
	}
	if item.QuantityAllocated.Sign() != 0 || item.QuantityDistributed.Sign() != 0 {
		t.Error("new batch must start with empty allocated/distributed pools")
	}
}

func TestAdjustPersistsStatusWithQuantities(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	item := seedItem(t, r, "12", "10")

	// 12 - 5 = 7, at or under the threshold of 10
	if _, err := r.Adjust(item.ID, dec(t, "5"), AdjustAllocate); err != nil {
		t.Fatal(err)
	}
	got := reloadItem(t, db, item.ID)
	wantPools(t, got, "7", "5", "0")
	if got.Status != models.StockLowStock {
		t.Errorf("status = %s, want Low Stock", got.Status)
	}

	if _, err := r.Adjust(item.ID, dec(t, "7"), AdjustAllocate); err != nil {
		t.Fatal(err)
	}
	got = reloadItem(t, db, item.ID)
	if got.Status != models.StockOutOfStock {
		t.Errorf("status = %s, want Out of Stock", got.Status)
	}

	if _, err := r.Adjust(item.ID, dec(t, "100"), AdjustAdd); err != nil {
		t.Fatal(err)
	}
	got = reloadItem(t, db, item.ID)
	if got.Status != models.StockAvailable {
		t.Errorf("status = %s, want Available after restock", got.Status)
	}
}

func TestAdjustFailureLeavesRowUntouched(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	item := seedItem(t, r, "30", "10")

	if _, err := r.Adjust(item.ID, dec(t, "40"), AdjustAllocate); KindOf(err) != KindInsufficientStock {
		t.Fatalf("kind = %q, want insufficient_stock", KindOf(err))
	}
	got := reloadItem(t, db, item.ID)
	wantPools(t, got, "30", "0", "0")
	if got.Status != models.StockAvailable {
		t.Errorf("status = %s, want Available", got.Status)
	}
}

func TestAdjustUnknownItem(t *testing.T) {
	r := newTestRegistry(t, newTestDB(t))
	if _, err := r.Adjust(999, dec(t, "1"), AdjustAdd); KindOf(err) != KindNotFound {
		t.Fatalf("kind = %q, want not_found", KindOf(err))
	}
}

func TestOldestAvailableIsFIFO(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)

	old := testNow.AddDate(0, -3, 0)
	mid := testNow.AddDate(0, -1, 0)
	for _, arrival := range []time.Time{mid, old, testNow} {
		a := arrival
		if _, err := r.Intake(IntakeInput{
			WoodType:    "Pine",
			Size:        "2x4",
			Quantity:    dec(t, "50"),
			ArrivalDate: &a,
		}); err != nil {
			t.Fatal(err)
		}
	}
	// different size must not match
	if _, err := r.Intake(IntakeInput{WoodType: "Pine", Size: "4x4", Quantity: dec(t, "50")}); err != nil {
		t.Fatal(err)
	}

	item, err := r.OldestAvailable("Pine", "2x4")
	if err != nil {
		t.Fatal(err)
	}
	if !item.ArrivalDate.Equal(old) {
		t.Errorf("arrival = %s, want oldest %s", item.ArrivalDate, old)
	}

	if _, err := r.OldestAvailable("Teak", "2x4"); KindOf(err) != KindNotFound {
		t.Errorf("kind = %q, want not_found", KindOf(err))
	}
}

func TestExpiringWithin(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)

	soon := testNow.AddDate(0, 0, 7)
	far := testNow.AddDate(0, 0, 90)
	gone := testNow.AddDate(0, 0, -1)
	for name, expiry := range map[string]*time.Time{
		"soon": &soon, "far": &far, "gone": &gone, "never": nil,
	} {
		if _, err := r.Intake(IntakeInput{
			WoodType:   name,
			Size:       "2x4",
			Quantity:   dec(t, "10"),
			ExpiryDate: expiry,
		}); err != nil {
			t.Fatal(err)
		}
	}

	items, err := r.ExpiringWithin(30)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].WoodType != "soon" {
		t.Fatalf("got %d items, want exactly the batch expiring in 7 days", len(items))
	}
}

func TestLowStockReport(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)

	seedItem(t, r, "100", "10") // healthy
	low := seedItem(t, r, "5", "10")
	empty := seedItem(t, r, "0", "10")

	items, err := r.LowStock()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// emptiest first
	if items[0].ID != empty.ID || items[1].ID != low.ID {
		t.Errorf("order = [%d %d], want [%d %d]", items[0].ID, items[1].ID, empty.ID, low.ID)
	}
}

func TestReservedOverrideClearedByNextAdjust(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	item := seedItem(t, r, "100", "10")

	got, err := r.MarkReserved(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StockReserved {
		t.Fatalf("status = %s, want Reserved", got.Status)
	}

	if _, err := r.Adjust(item.ID, dec(t, "10"), AdjustAdd); err != nil {
		t.Fatal(err)
	}
	after := reloadItem(t, db, item.ID)
	if after.Status != models.StockAvailable {
		t.Errorf("status = %s, want Available after pool operation", after.Status)
	}
}
