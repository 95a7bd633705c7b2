package main

import (
	"fmt"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/provider"
)

// 演示数据：一个经纪人和两个归因卖家，用于本地联调
var demoBrokerWallet = "0xa1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0"

var demoSellerWallets = []string{
	"0x1111111111111111111111111111111111111111",
	"0x2222222222222222222222222222222222222222",
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	container := provider.NewContainer(cfg)

	// 层级表
	if err := container.TierService.SyncFromConfig(cfg.Tiers); err != nil {
		stdLog.Fatalf("Failed to sync tiers: %v", err)
	}
	stdLog.Printf("Synced %d tiers", len(cfg.Tiers))

	// 演示经纪人
	user := &models.User{WalletAddress: demoBrokerWallet, DisplayName: "Demo Broker"}
	var existing models.User
	if err := models.DB.Where("wallet_address = ?", demoBrokerWallet).First(&existing).Error; err != nil {
		if err := models.DB.Create(user).Error; err != nil {
			stdLog.Fatalf("Failed to create demo user: %v", err)
		}
	} else {
		user = &existing
	}

	broker, err := container.ReferralService.RegisterBroker(user.ID, demoBrokerWallet)
	if err != nil {
		stdLog.Fatalf("Failed to register demo broker: %v", err)
	}
	stdLog.Printf("Demo broker ready: code=%s", broker.ReferralCode)

	// 归因卖家
	for _, wallet := range demoSellerWallets {
		seller, err := container.ReferralService.AttributeSeller(wallet, broker.ReferralCode, "seed")
		if err != nil {
			stdLog.Printf("Failed to attribute seller %s: %v", wallet, err)
			continue
		}
		stdLog.Printf("Seller attributed: id=%d", seller.ID)
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Printf("- %d tiers\n", len(cfg.Tiers))
	fmt.Printf("- Demo broker referral code: %s\n", broker.ReferralCode)
	fmt.Printf("- %d attributed sellers\n", len(demoSellerWallets))
}
