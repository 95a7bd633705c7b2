package config

import (
	"fmt"
	"strings"

	"github.com/veluxe-market/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	AdminJWT  JWTConfig       `mapstructure:"admin_jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Referral  ReferralConfig  `mapstructure:"referral"`
	Tiers     []TierConfig    `mapstructure:"tiers"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RateLimitRuleConfig 单类别限流规则配置
type RateLimitRuleConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// RateLimitConfig 限流配置（按类别独立计数）
type RateLimitConfig struct {
	Auth      RateLimitRuleConfig `mapstructure:"auth"`
	Read      RateLimitRuleConfig `mapstructure:"read"`
	Sensitive RateLimitRuleConfig `mapstructure:"sensitive"`
}

// ReferralConfig 推荐归因配置
type ReferralConfig struct {
	AttributionLockDays int `mapstructure:"attribution_lock_days"`
	NonceTTLSeconds     int `mapstructure:"nonce_ttl_seconds"`
	SweepIntervalSec    int `mapstructure:"sweep_interval_seconds"`
	ClickDedupeMinutes  int `mapstructure:"click_dedupe_minutes"`
}

// TierConfig 佣金层级配置（启动时加载的静态有序表）
type TierConfig struct {
	Code           string  `mapstructure:"code"`
	Name           string  `mapstructure:"name"`
	Level          int     `mapstructure:"level"`
	MinReferrals   int64   `mapstructure:"min_referrals"`
	MinSalesVolume float64 `mapstructure:"min_sales_volume"`
	RatePercent    float64 `mapstructure:"rate_percent"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "veluxe.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/veluxe.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "vx")
	viper.SetDefault("queue.enabled", false)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 24)
	viper.SetDefault("admin_jwt.secret", "admin-change-me-in-production")
	viper.SetDefault("admin_jwt.expire_hours", 12)
	viper.SetDefault("rate_limit.auth.window_seconds", 60)
	viper.SetDefault("rate_limit.auth.max_requests", 5)
	viper.SetDefault("rate_limit.read.window_seconds", 60)
	viper.SetDefault("rate_limit.read.max_requests", 60)
	viper.SetDefault("rate_limit.sensitive.window_seconds", 60)
	viper.SetDefault("rate_limit.sensitive.max_requests", 3)
	viper.SetDefault("referral.attribution_lock_days", 90)
	viper.SetDefault("referral.nonce_ttl_seconds", 300)
	viper.SetDefault("referral.sweep_interval_seconds", 60)
	viper.SetDefault("referral.click_dedupe_minutes", 10)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warnw("config_file_not_found_use_defaults")
		} else {
			logger.Warnw("config_read_failed", "error", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		return &Config{}
	}
	normalizeConfig(&cfg)
	return &cfg
}

func normalizeConfig(cfg *Config) {
	cfg.Server.Mode = strings.ToLower(strings.TrimSpace(cfg.Server.Mode))
	if cfg.Server.Mode != "release" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Referral.AttributionLockDays <= 0 {
		cfg.Referral.AttributionLockDays = 90
	}
	if cfg.Referral.NonceTTLSeconds <= 0 {
		cfg.Referral.NonceTTLSeconds = 300
	}
	if cfg.Referral.SweepIntervalSec <= 0 {
		cfg.Referral.SweepIntervalSec = 60
	}
	if cfg.Referral.ClickDedupeMinutes <= 0 {
		cfg.Referral.ClickDedupeMinutes = 10
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = defaultTiers()
	}
}

// defaultTiers 内置层级表（未配置 tiers 时启用）
func defaultTiers() []TierConfig {
	return []TierConfig{
		{Code: "bronze", Name: "Bronze", Level: 1, MinReferrals: 0, MinSalesVolume: 0, RatePercent: 5},
		{Code: "silver", Name: "Silver", Level: 2, MinReferrals: 5, MinSalesVolume: 50000, RatePercent: 10},
		{Code: "gold", Name: "Gold", Level: 3, MinReferrals: 20, MinSalesVolume: 250000, RatePercent: 15},
		{Code: "platinum", Name: "Platinum", Level: 4, MinReferrals: 50, MinSalesVolume: 1000000, RatePercent: 20},
	}
}

// Addr 返回 Redis 连接地址
func (c RedisConfig) Addr() string {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port <= 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", host, port)
}
