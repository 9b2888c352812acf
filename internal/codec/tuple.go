// Package codec 将合约 projects(uint256) 的位置元组解码为具名结构。
//
// 元组顺序由合约 ABI 决定：
//
//	[tokenAddress, owner, goalAmount, raisedAmount, ownerWithdrawn, startTime, endTime]
//
// 顺序变更属于破坏性变更，只需修改 projectSchema。
package codec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

type fieldKind int

const (
	kindAddress fieldKind = iota
	kindAmount
	kindTimestamp
)

type field struct {
	name string
	kind fieldKind
	set  func(p *model.ProjectOnChain, v interface{})
}

var projectSchema = []field{
	{"tokenAddress", kindAddress, func(p *model.ProjectOnChain, v interface{}) { p.TokenAddress = v.(common.Address) }},
	{"owner", kindAddress, func(p *model.ProjectOnChain, v interface{}) { p.Owner = v.(common.Address) }},
	{"goalAmount", kindAmount, func(p *model.ProjectOnChain, v interface{}) { p.GoalAmount = v.(*big.Int) }},
	{"raisedAmount", kindAmount, func(p *model.ProjectOnChain, v interface{}) { p.RaisedAmount = v.(*big.Int) }},
	{"ownerWithdrawn", kindAmount, func(p *model.ProjectOnChain, v interface{}) { p.OwnerWithdrawn = v.(*big.Int) }},
	{"startTime", kindTimestamp, func(p *model.ProjectOnChain, v interface{}) { p.StartTime = v.(uint64) }},
	{"endTime", kindTimestamp, func(p *model.ProjectOnChain, v interface{}) { p.EndTime = v.(uint64) }},
}

// DecodeProject 按 projectSchema 校验元组长度与各字段类型，返回具名记录
func DecodeProject(tuple []interface{}, projectId uint64) (*model.ProjectOnChain, error) {
	if len(tuple) != len(projectSchema) {
		return nil, fmt.Errorf("%w: expected %d elements, got %d", model.ErrMalformedTuple, len(projectSchema), len(tuple))
	}

	project := &model.ProjectOnChain{ProjectId: projectId}
	for i, f := range projectSchema {
		v, err := decodeField(f.kind, tuple[i])
		if err != nil {
			return nil, fmt.Errorf("%w: position %d (%s): %v", model.ErrMalformedTuple, i, f.name, err)
		}
		f.set(project, v)
	}
	return project, nil
}

func decodeField(kind fieldKind, raw interface{}) (interface{}, error) {
	switch kind {
	case kindAddress:
		return toAddress(raw)
	case kindAmount:
		return toUint256(raw)
	case kindTimestamp:
		n, err := toUint256(raw)
		if err != nil {
			return nil, err
		}
		if !n.IsUint64() {
			return nil, fmt.Errorf("timestamp %s out of range", n)
		}
		return n.Uint64(), nil
	default:
		return nil, fmt.Errorf("unknown field kind %d", kind)
	}
}

func toAddress(raw interface{}) (common.Address, error) {
	switch v := raw.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return common.Address{}, fmt.Errorf("nil address")
		}
		return *v, nil
	case string:
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("invalid address %q", v)
		}
		return common.HexToAddress(v), nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", raw)
	}
}

// toUint256 只接受可精确表示的整数编码，拒绝浮点数
func toUint256(raw interface{}) (*big.Int, error) {
	var n *big.Int
	switch v := raw.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		n = new(big.Int).Set(v)
	case string:
		return parseUint(v)
	case json.Number:
		return parseUint(v.String())
	case uint64:
		n = new(big.Int).SetUint64(v)
	case uint32:
		n = new(big.Int).SetUint64(uint64(v))
	case int64:
		n = big.NewInt(v)
	case int:
		n = big.NewInt(int64(v))
	default:
		return nil, fmt.Errorf("unsupported integer type %T", raw)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", n)
	}
	return n, nil
}

func parseUint(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}
