package model

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals 代币统一使用 18 位精度
const TokenDecimals = 18

// AmountString 最小单位金额的十进制表示，nil 视为 0
func AmountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// FormatToken 将最小单位金额换算为可读的代币数量
func FormatToken(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -TokenDecimals).String()
}

// ParseToken 将可读的代币数量换算为最小单位，不允许负数和超出精度的小数位
func ParseToken(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid token amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid token amount %q: negative", s)
	}
	wei := d.Shift(TokenDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("invalid token amount %q: more than %d decimals", s, TokenDecimals)
	}
	return wei.BigInt(), nil
}

// ProgressPercent part/whole 的百分比，保留两位小数，上限 100；全程整数运算
func ProgressPercent(part, whole *big.Int) string {
	if part == nil || whole == nil || whole.Sign() <= 0 || part.Sign() <= 0 {
		return "0.00"
	}
	bps := new(big.Int).Mul(part, big.NewInt(10000))
	bps.Quo(bps, whole)
	if bps.Cmp(big.NewInt(10000)) > 0 {
		bps.SetInt64(10000)
	}
	return decimal.NewFromBigInt(bps, -2).StringFixed(2)
}
