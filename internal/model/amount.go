package model

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals 最小单位(wei)与展示单位之间的小数位数
const EtherDecimals = 18

// maxWeiDigits uint256 最大值的十进制位数
const maxWeiDigits = 78

var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrAmountPrecision = fmt.Errorf("amount has more than %d decimal places", EtherDecimals)
	ErrAmountTooLarge  = errors.New("amount exceeds uint256")

	maxWei = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// FormatEther 将 wei 转换为十进制金额
func FormatEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}

// ParseEther 将十进制金额字符串精确转换为 wei，不经过浮点数
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", s, err)
	}

	return ToWei(d)
}

// ToWei 将十进制金额精确转换为 wei，结果必须能放入 uint256。
// 指数先于乘方做范围检查，"1e2000000000" 之类的输入不会分配大整数。
func ToWei(d decimal.Decimal) (*big.Int, error) {
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if d.IsZero() {
		return new(big.Int), nil
	}

	wei := d.Coefficient()
	exp := int64(d.Exponent()) + EtherDecimals
	switch {
	case exp > maxWeiDigits:
		return nil, ErrAmountTooLarge
	case exp > 0:
		wei.Mul(wei, pow10(exp))
	case exp < 0:
		// 系数位数不足时必然有非零余数
		if -exp > int64(len(wei.String())) {
			return nil, ErrAmountPrecision
		}
		var rem big.Int
		wei.QuoRem(wei, pow10(-exp), &rem)
		if rem.Sign() != 0 {
			return nil, ErrAmountPrecision
		}
	}

	if wei.Cmp(maxWei) > 0 {
		return nil, ErrAmountTooLarge
	}
	return wei, nil
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
