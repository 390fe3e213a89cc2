package ledger

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"forestry-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.AuthUser{},
		&models.Member{},
		&models.StockItem{},
		&models.Distribution{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestRegistry(t *testing.T, db *gorm.DB) *Registry {
	t.Helper()
	r := NewRegistry(db)
	r.Now = func() time.Time { return testNow }
	return r
}

func newTestCoordinator(t *testing.T, db *gorm.DB) *Coordinator {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := NewCoordinator(db, log)
	c.Now = func() time.Time { return testNow }
	return c
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func seedMember(t *testing.T, db *gorm.DB) models.Member {
	t.Helper()
	m := models.Member{
		CardNumber: "CARD-001",
		FullName:   "Test Member",
		JoinedDate: testNow,
		Category:   models.CategoryC,
		Status:     models.MemberPassive,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func seedItem(t *testing.T, r *Registry, available, threshold string) *models.StockItem {
	t.Helper()
	th := dec(t, threshold)
	item, err := r.Intake(IntakeInput{
		WoodType:         "Pine",
		Size:             "2x4",
		Quantity:         dec(t, available),
		MinimumThreshold: &th,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, id uint) models.StockItem {
	t.Helper()
	var item models.StockItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		t.Fatalf("reload item %d: %v", id, err)
	}
	return item
}

func wantPools(t *testing.T, item models.StockItem, available, allocated, distributed string) {
	t.Helper()
	if !item.QuantityAvailable.Equal(dec(t, available)) {
		t.Errorf("available = %s, want %s", item.QuantityAvailable, available)
	}
	if !item.QuantityAllocated.Equal(dec(t, allocated)) {
		t.Errorf("allocated = %s, want %s", item.QuantityAllocated, allocated)
	}
	if !item.QuantityDistributed.Equal(dec(t, distributed)) {
		t.Errorf("distributed = %s, want %s", item.QuantityDistributed, distributed)
	}
}
