package service

import (
	"strings"

	"github.com/veluxe-market/internal/constants"
)

// NormalizeWallet 规整钱包地址（去空白、转小写）
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// ValidateWalletAddress 校验钱包地址格式
func ValidateWalletAddress(wallet string) error {
	normalized := NormalizeWallet(wallet)
	if len(normalized) < constants.WalletAddressMinLength {
		return ErrInvalidAddress
	}
	if !strings.HasPrefix(normalized, constants.WalletAddressPrefix) {
		return ErrInvalidAddress
	}
	for _, ch := range normalized[len(constants.WalletAddressPrefix):] {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return ErrInvalidAddress
		}
	}
	return nil
}

// RedactWallet 脱敏钱包地址，仅保留前 6 位与后 4 位
func RedactWallet(wallet string) string {
	normalized := NormalizeWallet(wallet)
	if len(normalized) < 10 {
		return "***"
	}
	return normalized[:6] + "..." + normalized[len(normalized)-4:]
}
