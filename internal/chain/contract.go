package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Contract 合约工具类，只读调用与 calldata 编码
type Contract struct {
	address common.Address // 合约地址
	abi     abi.ABI        // 合约ABI
	name    string         // 合约名称
	bound   *bind.BoundContract
}

// NewContract 创建合约实例；caller 为空时只能编码不能调用
func NewContract(caller bind.ContractCaller, name string, address common.Address, parsed abi.ABI) *Contract {
	c := &Contract{
		address: address,
		abi:     parsed,
		name:    name,
	}
	if caller != nil {
		c.bound = bind.NewBoundContract(address, parsed, caller, nil, nil)
	}
	return c
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// Call 以 latest 区块状态执行只读方法，返回解码后的输出
func (c *Contract) Call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	if c.bound == nil {
		return nil, fmt.Errorf("contract %s has no caller", c.name)
	}
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}
	return out, nil
}

// Pack 编码方法调用数据
func (c *Contract) Pack(method string, params ...interface{}) ([]byte, error) {
	data, err := c.abi.Pack(method, params...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", c.name, method, err)
	}
	return data, nil
}

// ParseEvent 解析事件日志；日志非本合约发出或签名未知时 ok 为 false
func (c *Contract) ParseEvent(log types.Log) (name string, fields map[string]interface{}, ok bool) {
	if log.Address != c.address || len(log.Topics) == 0 {
		return "", nil, false
	}

	eventSignature := log.Topics[0]
	for eventName, event := range c.abi.Events {
		if event.ID == eventSignature {
			return eventName, c.parseEvent(eventName, log, event), true
		}
	}

	logger.Debug("Unknown event signature: %s in contract %s", eventSignature.Hex(), c.name)
	return "", nil, false
}

// parseEvent 解析事件
func (c *Contract) parseEvent(eventName string, log types.Log, event abi.Event) map[string]interface{} {
	result := make(map[string]interface{})
	result["eventName"] = eventName
	result["contract"] = c.name
	result["txHash"] = log.TxHash.Hex()
	result["blockNumber"] = log.BlockNumber
	result["logIndex"] = log.Index

	// 解析索引参数，topics[0] 为事件签名
	topic := 1
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if topic >= len(log.Topics) {
			logger.Warn("Missing indexed parameter %s in %s", input.Name, eventName)
			break
		}
		result[input.Name] = parseTopicValue(log.Topics[topic], input.Type)
		topic++
	}

	// 解析非索引参数
	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) > 0 && len(log.Data) > 0 {
		values, err := nonIndexed.Unpack(log.Data)
		if err != nil {
			logger.Warn("Failed to unpack non-indexed parameters of %s: %v", eventName, err)
		} else {
			for i, input := range nonIndexed {
				if i < len(values) {
					result[input.Name] = values[i]
				}
			}
		}
	}

	return result
}

// parseTopicValue 解析主题值
func parseTopicValue(topic common.Hash, t abi.Type) interface{} {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes())
	case abi.AddressTy:
		return common.BytesToAddress(topic.Bytes())
	case abi.BoolTy:
		return new(big.Int).SetBytes(topic.Bytes()).Sign() > 0
	case abi.BytesTy, abi.FixedBytesTy:
		return topic.Bytes()
	default:
		return topic.Hex()
	}
}
