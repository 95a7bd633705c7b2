package service

import (
	"errors"
	"testing"
	"time"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/queue"
	"github.com/veluxe-market/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCommissionServiceTest(t *testing.T) (*CommissionService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, "commission_service")
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("build queue client failed: %v", err)
	}
	notifier := NewNotificationService(repository.NewNotificationRepository(db), queueClient)
	return NewCommissionService(
		repository.NewBrokerRepository(db),
		repository.NewSellerRepository(db),
		repository.NewCommissionRepository(db),
		repository.NewTierRepository(db),
		notifier,
	), db
}

func createTestSeller(t *testing.T, db *gorm.DB, wallet string, referredBy *uint, lockExpires *time.Time) models.Seller {
	t.Helper()

	row := models.Seller{
		WalletAddress: NormalizeWallet(wallet),
		ReferredBy:    referredBy,
		LockExpiresAt: lockExpires,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create seller failed: %v", err)
	}
	return row
}

func money(t *testing.T, value float64) models.Money {
	t.Helper()
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(value))
}

func TestRecordSaleFreezesRateAtCreation(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	bronze := createTestTier(t, db, "bronze", 1, 0, 0, 5)
	broker := createTestBroker(t, db, bronze.ID, walletForTest(1), "VXCOMM01", constants.BrokerStatusActive)
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(2), &broker.ID, &lockExpires)

	commission, err := svc.RecordSale(seller.WalletAddress, money(t, 10000))
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if commission == nil {
		t.Fatal("expected commission created")
	}
	if commission.Status != constants.CommissionStatusPending {
		t.Fatalf("expected pending status, got %s", commission.Status)
	}
	if commission.RatePercent.String() != "5.00" {
		t.Fatalf("expected frozen rate 5.00, got %s", commission.RatePercent.String())
	}
	if commission.CommissionAmount.String() != "500.00" {
		t.Fatalf("expected amount 500.00, got %s", commission.CommissionAmount.String())
	}
}

func TestRecordSaleAccumulatesBrokerTotals(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	bronze := createTestTier(t, db, "bronze", 1, 0, 0, 5)
	broker := createTestBroker(t, db, bronze.ID, walletForTest(3), "VXACCU03", constants.BrokerStatusActive)
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(4), &broker.ID, &lockExpires)

	if _, err := svc.RecordSale(seller.WalletAddress, money(t, 1000)); err != nil {
		t.Fatalf("first sale failed: %v", err)
	}
	if _, err := svc.RecordSale(seller.WalletAddress, money(t, 2500)); err != nil {
		t.Fatalf("second sale failed: %v", err)
	}

	var reloaded models.Broker
	if err := db.First(&reloaded, broker.ID).Error; err != nil {
		t.Fatalf("reload broker failed: %v", err)
	}
	if reloaded.TotalSalesVolume.String() != "3500.00" {
		t.Fatalf("expected volume 3500.00, got %s", reloaded.TotalSalesVolume.String())
	}
	if reloaded.TotalEarnings.String() != "175.00" {
		t.Fatalf("expected earnings 175.00, got %s", reloaded.TotalEarnings.String())
	}
}

func TestRecordSaleTierUpgradeNotRetroactive(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	bronze := createTestTier(t, db, "bronze", 1, 0, 0, 5)
	createTestTier(t, db, "silver", 2, 5, 50000, 10)
	broker := createTestBroker(t, db, bronze.ID, walletForTest(5), "VXTIER05", constants.BrokerStatusActive)
	if err := db.Model(&models.Broker{}).Where("id = ?", broker.ID).
		Updates(map[string]interface{}{
			"referred_seller_count": 5,
			"total_sales_volume":    decimal.NewFromInt(49500),
		}).Error; err != nil {
		t.Fatalf("seed broker counters failed: %v", err)
	}
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(6), &broker.ID, &lockExpires)

	// 这笔成交把销售额推过银档门槛：佣金仍按成交时的铜档费率冻结
	first, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil {
		t.Fatalf("first sale failed: %v", err)
	}
	if first.RatePercent.String() != "5.00" {
		t.Fatalf("expected pre-upgrade rate 5.00, got %s", first.RatePercent.String())
	}

	var reloaded models.Broker
	if err := db.First(&reloaded, broker.ID).Error; err != nil {
		t.Fatalf("reload broker failed: %v", err)
	}
	var silver models.Tier
	if err := db.Where("code = ?", "silver").First(&silver).Error; err != nil {
		t.Fatalf("load silver tier failed: %v", err)
	}
	if reloaded.TierID != silver.ID {
		t.Fatalf("expected broker upgraded to silver, got tier %d", reloaded.TierID)
	}

	// 升级后的下一笔按新费率
	second, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil {
		t.Fatalf("second sale failed: %v", err)
	}
	if second.RatePercent.String() != "10.00" {
		t.Fatalf("expected post-upgrade rate 10.00, got %s", second.RatePercent.String())
	}

	// 历史记录不回溯
	var firstReloaded models.Commission
	if err := db.First(&firstReloaded, first.ID).Error; err != nil {
		t.Fatalf("reload first commission failed: %v", err)
	}
	if firstReloaded.RatePercent.String() != "5.00" {
		t.Fatalf("expected first commission untouched, got %s", firstReloaded.RatePercent.String())
	}

	// 升级通知携带升级前后的层级标识
	var note models.Notification
	if err := db.Where("broker_id = ? AND event_type = ?", broker.ID, constants.NotificationEventTierUpgrade).
		First(&note).Error; err != nil {
		t.Fatalf("expected tier upgrade notification: %v", err)
	}
	if note.Payload["tier_code"] != "silver" || note.Payload["previous_tier_code"] != "bronze" {
		t.Fatalf("expected upgrade payload bronze→silver, got %+v", note.Payload)
	}
}

func TestRecordSaleUnattributedSellerNoCommission(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	seller := createTestSeller(t, db, walletForTest(7), nil, nil)

	commission, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if commission != nil {
		t.Fatalf("expected no commission for unattributed seller, got %+v", commission)
	}
}

func TestRecordSaleAfterLockExpiryStillEarnsCommission(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	gold := createTestTier(t, db, "gold", 1, 0, 0, 10)
	broker := createTestBroker(t, db, gold.ID, walletForTest(8), "VXLOCK08", constants.BrokerStatusActive)
	expired := time.Now().Add(-24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(9), &broker.ID, &expired)

	// 锁定期只冻结归因改绑，到期后的成交照常入账
	commission, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if commission == nil {
		t.Fatal("expected commission despite expired attribution lock")
	}
	if commission.Status != constants.CommissionStatusPending {
		t.Fatalf("expected pending status, got %s", commission.Status)
	}
	if commission.CommissionAmount.String() != "100.00" {
		t.Fatalf("expected amount 100.00, got %s", commission.CommissionAmount.String())
	}
}

func TestRecordSaleMissingBrokerIsError(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	missing := uint(9999)
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(16), &missing, &lockExpires)

	if _, err := svc.RecordSale(seller.WalletAddress, money(t, 1000)); !errors.Is(err, ErrAttributionInconsistent) {
		t.Fatalf("expected ErrAttributionInconsistent, got %v", err)
	}
}

func TestRecordSaleSuspendedBrokerNoCommission(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	bronze := createTestTier(t, db, "bronze", 1, 0, 0, 5)
	broker := createTestBroker(t, db, bronze.ID, walletForTest(10), "VXSUSP10", constants.BrokerStatusSuspended)
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(11), &broker.ID, &lockExpires)

	commission, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if commission != nil {
		t.Fatal("expected no commission for suspended broker")
	}
}

func TestRecordSaleRejectsBadInput(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	if _, err := svc.RecordSale("0xnope", money(t, 100)); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := svc.RecordSale(walletForTest(12), money(t, 0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_ = db

	if _, err := svc.RecordSale(walletForTest(13), money(t, 100)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown seller, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	bronze := createTestTier(t, db, "bronze", 1, 0, 0, 5)
	broker := createTestBroker(t, db, bronze.ID, walletForTest(14), "VXSTAT14", constants.BrokerStatusActive)
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(15), &broker.ID, &lockExpires)

	commission, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil || commission == nil {
		t.Fatalf("record sale failed: %v", err)
	}

	// paid 必须携带交易哈希
	if _, err := svc.UpdateStatus(commission.ID, constants.CommissionStatusPaid, ""); !errors.Is(err, ErrTxHashRequired) {
		t.Fatalf("expected ErrTxHashRequired, got %v", err)
	}

	paid, err := svc.UpdateStatus(commission.ID, constants.CommissionStatusPaid, "0xhash123")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.TxHash != "0xhash123" || paid.PaidAt == nil {
		t.Fatalf("expected tx hash and paid time recorded, got %+v", paid)
	}

	// 已支付佣金不可再流转
	if _, err := svc.UpdateStatus(commission.ID, constants.CommissionStatusCancelled, ""); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition from paid, got %v", err)
	}
}

func TestUpdateStatusFailedIsTerminal(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	bronze := createTestTier(t, db, "bronze", 1, 0, 0, 5)
	broker := createTestBroker(t, db, bronze.ID, walletForTest(1), "VXFAIL01", constants.BrokerStatusActive)
	lockExpires := time.Now().Add(30 * 24 * time.Hour)
	seller := createTestSeller(t, db, walletForTest(2), &broker.ID, &lockExpires)

	commission, err := svc.RecordSale(seller.WalletAddress, money(t, 1000))
	if err != nil || commission == nil {
		t.Fatalf("record sale failed: %v", err)
	}

	if _, err := svc.UpdateStatus(commission.ID, constants.CommissionStatusFailed, ""); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	// 失败后不可再流转，重试需另行入账
	if _, err := svc.UpdateStatus(commission.ID, constants.CommissionStatusPaid, "0xretry"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition from failed, got %v", err)
	}
}

func TestUpdateStatusUnknownCommission(t *testing.T) {
	svc, _ := setupCommissionServiceTest(t)
	if _, err := svc.UpdateStatus(9999, constants.CommissionStatusPaid, "0xhash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
