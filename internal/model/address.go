package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address 规范化后的账户地址（小写十六进制）
type Address string

// NewAddress 将外部输入的地址规范化为小写形式
func NewAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

// AddressFromCommon 从 go-ethereum 地址构造规范化地址
func AddressFromCommon(a common.Address) Address {
	return NewAddress(a.Hex())
}

// IsZero 地址是否为空
func (a Address) IsZero() bool {
	return a == ""
}

// IsValid 是否为合法的20字节十六进制地址
func (a Address) IsValid() bool {
	return common.IsHexAddress(string(a))
}

// Common 转换为 go-ethereum 地址
func (a Address) Common() common.Address {
	return common.HexToAddress(string(a))
}

func (a Address) String() string {
	return string(a)
}
