package service

import (
	"context"
	"strings"
	"time"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/guard"
	"github.com/veluxe-market/internal/logger"
	"github.com/veluxe-market/internal/models"
	"github.com/veluxe-market/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionClaims 钱包会话 JWT 声明
type SessionClaims struct {
	UserID   uint   `json:"uid"`
	Wallet   string `json:"wallet"`
	Role     string `json:"role"`
	BrokerID uint   `json:"broker_id,omitempty"`
	SellerID uint   `json:"seller_id,omitempty"`
	jwt.RegisteredClaims
}

// AdminClaims 管理端 JWT 声明
type AdminClaims struct {
	AdminID  uint   `json:"aid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService 认证服务
// 钱包登录走 challenge/verify 两步；签名本身由接入层校验，这里只负责挑战消费与会话签发。
type AuthService struct {
	userRepo   repository.UserRepository
	brokerRepo repository.BrokerRepository
	sellerRepo repository.SellerRepository
	adminRepo  repository.AdminRepository
	nonceSvc   *NonceService
	jwtCfg     config.JWTConfig
	adminCfg   config.JWTConfig
}

// NewAuthService 创建认证服务
func NewAuthService(
	userRepo repository.UserRepository,
	brokerRepo repository.BrokerRepository,
	sellerRepo repository.SellerRepository,
	adminRepo repository.AdminRepository,
	nonceSvc *NonceService,
	jwtCfg, adminCfg config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		brokerRepo: brokerRepo,
		sellerRepo: sellerRepo,
		adminRepo:  adminRepo,
		nonceSvc:   nonceSvc,
		jwtCfg:     jwtCfg,
		adminCfg:   adminCfg,
	}
}

// Challenge 为钱包签发登录挑战
func (s *AuthService) Challenge(ctx context.Context, wallet string) (string, time.Duration, error) {
	nonce, err := s.nonceSvc.Issue(ctx, wallet)
	if err != nil {
		return "", 0, err
	}
	return nonce, s.nonceSvc.TTL(), nil
}

// VerifyWallet 消费挑战并签发会话
// 用户不存在时按普通用户自动建档。
func (s *AuthService) VerifyWallet(ctx context.Context, wallet, nonce, signature string) (string, *guard.AuthContext, error) {
	if strings.TrimSpace(signature) == "" {
		return "", nil, ErrNonceInvalidOrExpired
	}
	if err := s.nonceSvc.Consume(ctx, wallet, nonce); err != nil {
		return "", nil, err
	}

	normalized := NormalizeWallet(wallet)
	user, err := s.userRepo.GetByWallet(normalized)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		user = &models.User{WalletAddress: normalized}
		if err := s.userRepo.Create(user); err != nil {
			return "", nil, err
		}
		logger.Infow("user_auto_registered", "user_id", user.ID, "wallet", RedactWallet(normalized))
	}

	authCtx, err := s.buildAuthContext(user)
	if err != nil {
		return "", nil, err
	}
	token, err := s.mintSessionToken(authCtx)
	if err != nil {
		return "", nil, err
	}
	logger.Infow("wallet_session_issued", "user_id", user.ID, "role", authCtx.Role, "wallet", RedactWallet(normalized))
	return token, authCtx, nil
}

// buildAuthContext 解析用户角色，按 admin > broker > seller > user 取最高身份
func (s *AuthService) buildAuthContext(user *models.User) (*guard.AuthContext, error) {
	authCtx := &guard.AuthContext{
		Authenticated: true,
		UserID:        user.ID,
		WalletAddress: user.WalletAddress,
		Role:          constants.RoleUser,
	}
	if user.IsAdmin {
		authCtx.Role = constants.RoleAdmin
		return authCtx, nil
	}

	broker, err := s.brokerRepo.GetByWallet(user.WalletAddress)
	if err != nil {
		return nil, err
	}
	if broker != nil {
		authCtx.Role = constants.RoleBroker
		authCtx.BrokerID = broker.ID
		return authCtx, nil
	}

	seller, err := s.sellerRepo.GetByWallet(user.WalletAddress)
	if err != nil {
		return nil, err
	}
	if seller != nil {
		authCtx.Role = constants.RoleSeller
		authCtx.SellerID = seller.ID
	}
	return authCtx, nil
}

func (s *AuthService) mintSessionToken(authCtx *guard.AuthContext) (string, error) {
	expireHours := s.jwtCfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := SessionClaims{
		UserID:   authCtx.UserID,
		Wallet:   authCtx.WalletAddress,
		Role:     authCtx.Role,
		BrokerID: authCtx.BrokerID,
		SellerID: authCtx.SellerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

// ParseSessionToken 解析钱包会话
func (s *AuthService) ParseSessionToken(tokenString string) (*guard.AuthContext, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	return &guard.AuthContext{
		Authenticated: true,
		UserID:        claims.UserID,
		WalletAddress: claims.Wallet,
		Role:          claims.Role,
		BrokerID:      claims.BrokerID,
		SellerID:      claims.SellerID,
	}, nil
}

// AdminLogin 管理员登录
func (s *AuthService) AdminLogin(username, password string) (string, error) {
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := s.adminRepo.UpdateLastLogin(admin.ID, time.Now()); err != nil {
		logger.Warnw("admin_last_login_update_failed", "admin_id", admin.ID, "error", err)
	}

	expireHours := s.adminCfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 12
	}
	now := time.Now()
	claims := AdminClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.adminCfg.SecretKey))
}

// ParseAdminToken 解析管理端会话
func (s *AuthService) ParseAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return []byte(s.adminCfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
