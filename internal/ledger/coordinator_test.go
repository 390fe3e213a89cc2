package ledger

import (
	"strings"
	"testing"

	"forestry-backend/internal/models"
)

func TestDistributionLifecycle(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "100", "10")

	d, err := c.RequestDistribution(RequestInput{
		MemberID:    member.ID,
		StockItemID: item.ID,
		Quantity:    dec(t, "30"),
		Purpose:     models.PurposeConstruction,
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if d.Status != models.DistributionPending {
		t.Fatalf("status = %s, want Pending", d.Status)
	}
	if d.WoodType != "Pine" || d.WoodSize != "2x4" {
		t.Errorf("snapshot = %s/%s, want Pine/2x4", d.WoodType, d.WoodSize)
	}
	// no pool movement on request
	wantPools(t, reloadItem(t, db, item.ID), "100", "0", "0")

	d, err = c.Approve(d.ID, 7, "ok to release")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	got := reloadItem(t, db, item.ID)
	wantPools(t, got, "70", "30", "0")
	if got.Status != models.StockAvailable {
		t.Errorf("item status = %s, want Available", got.Status)
	}
	if d.ApprovedAt == nil || d.ApprovedByID == nil || *d.ApprovedByID != 7 {
		t.Error("approval metadata not recorded")
	}
	approvedAt := *d.ApprovedAt

	d, err = c.Deliver(d.ID, 9, "picked up at depot")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	wantPools(t, reloadItem(t, db, item.ID), "70", "0", "30")
	if d.DeliveredAt == nil || d.DeliveredByID == nil || *d.DeliveredByID != 9 {
		t.Error("delivery metadata not recorded")
	}
	if d.ReceiptNumber == nil || !strings.HasPrefix(*d.ReceiptNumber, "DFG-20250601-") {
		t.Errorf("receipt = %v, want DFG-20250601-NNN", d.ReceiptNumber)
	}
	if !d.ApprovedAt.Equal(approvedAt) {
		t.Error("approved timestamp must be written exactly once")
	}

	d, err = c.MarkReturned(d.ID, "unused")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	wantPools(t, reloadItem(t, db, item.ID), "100", "0", "0")
	if d.ReturnedAt == nil {
		t.Error("returned timestamp not set")
	}
	if d.Status != models.DistributionReturned {
		t.Errorf("status = %s, want Returned", d.Status)
	}
}

func TestRequestExceedingStockCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "30", "10")

	_, err := c.RequestDistribution(RequestInput{
		MemberID:    member.ID,
		StockItemID: item.ID,
		Quantity:    dec(t, "40"),
	})
	if KindOf(err) != KindInsufficientStock {
		t.Fatalf("kind = %q, want insufficient_stock", KindOf(err))
	}
	if !strings.Contains(err.Error(), "requested 40") || !strings.Contains(err.Error(), "only 30") {
		t.Errorf("message %q should name both quantities", err.Error())
	}

	var count int64
	db.Model(&models.Distribution{}).Count(&count)
	if count != 0 {
		t.Errorf("found %d request rows, want 0", count)
	}
}

func TestRequestValidation(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "30", "10")

	if _, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "0")}); KindOf(err) != KindValidation {
		t.Errorf("zero quantity: kind = %q, want validation", KindOf(err))
	}
	if _, err := c.RequestDistribution(RequestInput{MemberID: 999, StockItemID: item.ID, Quantity: dec(t, "1")}); KindOf(err) != KindNotFound {
		t.Errorf("unknown member: kind = %q, want not_found", KindOf(err))
	}
	if _, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: 999, Quantity: dec(t, "1")}); KindOf(err) != KindNotFound {
		t.Errorf("unknown item: kind = %q, want not_found", KindOf(err))
	}
}

func TestApproveTwiceDoesNotDoubleAllocate(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "100", "10")

	d, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "30")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Approve(d.ID, 1, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Approve(d.ID, 1, ""); KindOf(err) != KindInvalidTransition {
		t.Fatalf("second approve: kind = %q, want invalid_transition", KindOf(err))
	}
	wantPools(t, reloadItem(t, db, item.ID), "70", "30", "0")
}

func TestApproveRevalidatesAvailability(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "100", "10")

	first, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "60")})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "60")})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Approve(first.ID, 1, ""); err != nil {
		t.Fatal(err)
	}
	// the pool the second request was checked against is gone
	if _, err := c.Approve(second.ID, 1, ""); KindOf(err) != KindInsufficientStock {
		t.Fatalf("kind = %q, want insufficient_stock", KindOf(err))
	}

	got, err := c.Get(second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DistributionPending {
		t.Errorf("second request status = %s, want still Pending", got.Status)
	}
	wantPools(t, reloadItem(t, db, item.ID), "40", "60", "0")
}

func TestCancelPendingLeavesPoolsAlone(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "100", "10")

	d, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "30")})
	if err != nil {
		t.Fatal(err)
	}
	d, err = c.Cancel(d.ID, "changed mind")
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != models.DistributionCancelled {
		t.Fatalf("status = %s, want Cancelled", d.Status)
	}
	wantPools(t, reloadItem(t, db, item.ID), "100", "0", "0")
}

func TestCancelApprovedReleasesAllocation(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "100", "10")

	d, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "30")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Approve(d.ID, 1, ""); err != nil {
		t.Fatal(err)
	}
	wantPools(t, reloadItem(t, db, item.ID), "70", "30", "0")

	if _, err := c.Cancel(d.ID, "no longer needed"); err != nil {
		t.Fatal(err)
	}
	wantPools(t, reloadItem(t, db, item.ID), "100", "0", "0")
}

func TestIllegalTransitionsLeaveBothRecordsUnchanged(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)
	item := seedItem(t, r, "100", "10")

	d, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, "30")})
	if err != nil {
		t.Fatal(err)
	}

	// Pending cannot be delivered or returned
	if _, err := c.Deliver(d.ID, 1, ""); KindOf(err) != KindInvalidTransition {
		t.Errorf("deliver pending: kind = %q, want invalid_transition", KindOf(err))
	}
	if _, err := c.MarkReturned(d.ID, ""); KindOf(err) != KindInvalidTransition {
		t.Errorf("return pending: kind = %q, want invalid_transition", KindOf(err))
	}

	got, err := c.Get(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DistributionPending {
		t.Errorf("status = %s, want Pending", got.Status)
	}
	wantPools(t, reloadItem(t, db, item.ID), "100", "0", "0")

	// terminal states reject everything
	if _, err := c.Cancel(d.ID, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Approve(d.ID, 1, ""); KindOf(err) != KindInvalidTransition {
		t.Errorf("approve cancelled: kind = %q, want invalid_transition", KindOf(err))
	}
}

func TestTotalPriceDerivation(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)

	price := dec(t, "12.50")
	item, err := r.Intake(IntakeInput{
		WoodType:     "Pine",
		Size:         "2x4",
		Quantity:     dec(t, "100"),
		PricePerUnit: &price,
	})
	if err != nil {
		t.Fatal(err)
	}

	d, err := c.RequestDistribution(RequestInput{
		MemberID:      member.ID,
		StockItemID:   item.ID,
		Quantity:      dec(t, "4"),
		PaymentStatus: models.PaymentUnpaid,
	})
	if err != nil {
		t.Fatal(err)
	}
	// price inherited from the batch, total derived
	if d.PricePerUnit == nil || !d.PricePerUnit.Equal(price) {
		t.Fatalf("price = %v, want 12.50", d.PricePerUnit)
	}
	if d.TotalPrice == nil || !d.TotalPrice.Equal(dec(t, "50")) {
		t.Fatalf("total = %v, want 50", d.TotalPrice)
	}
}

func TestSummarize(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t, db)
	c := newTestCoordinator(t, db)
	member := seedMember(t, db)

	price := dec(t, "10")
	item, err := r.Intake(IntakeInput{
		WoodType:     "Pine",
		Size:         "2x4",
		Quantity:     dec(t, "100"),
		PricePerUnit: &price,
	})
	if err != nil {
		t.Fatal(err)
	}

	mk := func(qty string) *models.Distribution {
		d, err := c.RequestDistribution(RequestInput{MemberID: member.ID, StockItemID: item.ID, Quantity: dec(t, qty)})
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	mk("5") // stays Pending
	delivered := mk("10")
	if _, err := c.Approve(delivered.ID, 1, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Deliver(delivered.ID, 1, ""); err != nil {
		t.Fatal(err)
	}
	cancelled := mk("3")
	if _, err := c.Cancel(cancelled.ID, ""); err != nil {
		t.Fatal(err)
	}

	sum, err := c.Summarize(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalCount != 3 {
		t.Errorf("total count = %d, want 3", sum.TotalCount)
	}
	if !sum.TotalQuantity.Equal(dec(t, "18")) {
		t.Errorf("total quantity = %s, want 18", sum.TotalQuantity)
	}

	byStatus := map[models.DistributionStatus]StatusSummary{}
	for _, row := range sum.ByStatus {
		byStatus[row.Status] = row
	}
	if row := byStatus[models.DistributionDelivered]; row.Count != 1 || !row.Quantity.Equal(dec(t, "10")) || !row.Value.Equal(dec(t, "100")) {
		t.Errorf("delivered row = %+v", row)
	}
	if row := byStatus[models.DistributionPending]; row.Count != 1 || !row.Quantity.Equal(dec(t, "5")) {
		t.Errorf("pending row = %+v", row)
	}

	// delivery-window filter keeps only delivered rows inside the window
	from := testNow.AddDate(0, 0, -1)
	to := testNow.AddDate(0, 0, 1)
	windowed, err := c.Summarize(&from, &to)
	if err != nil {
		t.Fatal(err)
	}
	if windowed.TotalCount != 1 {
		t.Errorf("windowed count = %d, want 1", windowed.TotalCount)
	}
}
