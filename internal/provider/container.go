package provider

import (
	"context"
	"time"

	"github.com/veluxe-market/internal/cache"
	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/kv"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/queue"
	"github.com/veluxe-market/internal/repository"
	"github.com/veluxe-market/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// 键值存储：挑战与限流各自独立实例
	NonceStore kv.Store
	RateStore  kv.Store

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	BrokerRepo       repository.BrokerRepository
	SellerRepo       repository.SellerRepository
	TierRepo         repository.TierRepository
	CommissionRepo   repository.CommissionRepository
	ClickRepo        repository.ReferralClickRepository
	NotificationRepo repository.NotificationRepository

	// Services
	NonceService        *service.NonceService
	RateLimitService    *service.RateLimitService
	AuthService         *service.AuthService
	TierService         *service.TierService
	ReferralService     *service.ReferralService
	CommissionService   *service.CommissionService
	BrokerService       *service.BrokerService
	NotificationService *service.NotificationService

	memoryStores []*kv.MemoryStore
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initStores()
	c.initRepositories()
	c.initServices()

	return c
}

// initStores 选择键值存储实现：Redis 可用时共享状态，否则进程内存储
func (c *Container) initStores() {
	if cache.Enabled() {
		c.NonceStore = kv.NewRedisStore(cache.Client(), cache.Prefix())
		c.RateStore = kv.NewRedisStore(cache.Client(), cache.Prefix())
		return
	}
	sweepInterval := time.Duration(c.Config.Referral.SweepIntervalSec) * time.Second
	nonceStore := kv.NewMemoryStore(sweepInterval)
	rateStore := kv.NewMemoryStore(sweepInterval)
	c.NonceStore = nonceStore
	c.RateStore = rateStore
	c.memoryStores = append(c.memoryStores, nonceStore, rateStore)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BrokerRepo = repository.NewBrokerRepository(db)
	c.SellerRepo = repository.NewSellerRepository(db)
	c.TierRepo = repository.NewTierRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.ClickRepo = repository.NewReferralClickRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	nonceTTL := time.Duration(c.Config.Referral.NonceTTLSeconds) * time.Second
	c.NonceService = service.NewNonceService(c.NonceStore, nonceTTL)
	c.RateLimitService = service.NewRateLimitService(c.RateStore, c.Config.RateLimit)
	c.AuthService = service.NewAuthService(c.UserRepo, c.BrokerRepo, c.SellerRepo, c.AdminRepo, c.NonceService, c.Config.JWT, c.Config.AdminJWT)
	c.TierService = service.NewTierService(c.TierRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.ReferralService = service.NewReferralService(c.BrokerRepo, c.SellerRepo, c.ClickRepo, c.TierRepo, c.Config.Referral)
	c.CommissionService = service.NewCommissionService(c.BrokerRepo, c.SellerRepo, c.CommissionRepo, c.TierRepo, c.NotificationService)
	c.BrokerService = service.NewBrokerService(c.BrokerRepo, c.SellerRepo, c.ClickRepo, c.CommissionRepo)
}

// StartSweepers 启动进程内存储的过期清理
func (c *Container) StartSweepers(ctx context.Context) {
	for _, store := range c.memoryStores {
		store.StartSweeper(ctx)
	}
}

// StopSweepers 停止进程内存储的过期清理
func (c *Container) StopSweepers() {
	for _, store := range c.memoryStores {
		store.Stop()
	}
}
