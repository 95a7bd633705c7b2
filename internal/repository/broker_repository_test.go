package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupBrokerRepositoryTest(t *testing.T) (*GormBrokerRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:broker_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Tier{},
		&models.Broker{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewBrokerRepository(db), db
}

func createRepoTestBroker(t *testing.T, db *gorm.DB, userID uint) *models.Broker {
	t.Helper()
	tier := models.Tier{
		Code:        fmt.Sprintf("tier_%d", userID),
		Name:        "Bronze",
		Level:       int(userID),
		RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
	}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	broker := models.Broker{
		UserID:        userID,
		WalletAddress: fmt.Sprintf("0x%040d", userID),
		ReferralCode:  fmt.Sprintf("VXTEST%02d", userID),
		TierID:        tier.ID,
		Status:        constants.BrokerStatusActive,
	}
	if err := db.Create(&broker).Error; err != nil {
		t.Fatalf("create broker failed: %v", err)
	}
	return &broker
}

func TestBrokerRepositoryAccumulateSale(t *testing.T) {
	repo, db := setupBrokerRepositoryTest(t)
	broker := createRepoTestBroker(t, db, 1)

	sale := models.NewMoneyFromDecimal(decimal.RequireFromString("10000.00"))
	commission := models.NewMoneyFromDecimal(decimal.RequireFromString("500.00"))
	if err := repo.AccumulateSale(broker.ID, sale, commission); err != nil {
		t.Fatalf("accumulate sale failed: %v", err)
	}
	if err := repo.AccumulateSale(broker.ID, sale, commission); err != nil {
		t.Fatalf("accumulate sale again failed: %v", err)
	}

	got, err := repo.GetByID(broker.ID)
	if err != nil {
		t.Fatalf("get broker failed: %v", err)
	}
	if got.TotalSalesVolume.String() != "20000.00" {
		t.Fatalf("total sales volume want 20000.00 got %s", got.TotalSalesVolume.String())
	}
	if got.TotalEarnings.String() != "1000.00" {
		t.Fatalf("total earnings want 1000.00 got %s", got.TotalEarnings.String())
	}
}

func TestBrokerRepositoryIncrementReferredSellerCount(t *testing.T) {
	repo, db := setupBrokerRepositoryTest(t)
	broker := createRepoTestBroker(t, db, 2)

	for i := 0; i < 3; i++ {
		if err := repo.IncrementReferredSellerCount(broker.ID, 1); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}

	got, err := repo.GetByID(broker.ID)
	if err != nil {
		t.Fatalf("get broker failed: %v", err)
	}
	if got.ReferredSellerCount != 3 {
		t.Fatalf("referred seller count want 3 got %d", got.ReferredSellerCount)
	}
}

func TestBrokerRepositoryLookupNormalization(t *testing.T) {
	repo, db := setupBrokerRepositoryTest(t)
	broker := createRepoTestBroker(t, db, 3)

	byCode, err := repo.GetByReferralCode("vxtest03")
	if err != nil {
		t.Fatalf("get by referral code failed: %v", err)
	}
	if byCode == nil || byCode.ID != broker.ID {
		t.Fatalf("referral code lookup should be case insensitive")
	}

	byWallet, err := repo.GetByWallet("0X" + broker.WalletAddress[2:])
	if err != nil {
		t.Fatalf("get by wallet failed: %v", err)
	}
	if byWallet == nil || byWallet.ID != broker.ID {
		t.Fatalf("wallet lookup should be case insensitive")
	}

	missing, err := repo.GetByReferralCode("VXNOPE00")
	if err != nil {
		t.Fatalf("missing lookup should not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing referral code should return nil")
	}
}
