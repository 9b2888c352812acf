package chain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call 一次待发送的合约调用
type Call struct {
	To     common.Address
	Data   []byte
	Method string
}

// Calls 构造 Fundl 与代币合约的写调用数据
type Calls struct {
	fundl *Contract
}

// NewCalls 创建调用构造器
func NewCalls(fundlAddress common.Address) *Calls {
	return &Calls{fundl: NewContract(nil, "Fundl", fundlAddress, fundlABI)}
}

// FundlAddress 众筹合约地址
func (c *Calls) FundlAddress() common.Address {
	return c.fundl.GetAddress()
}

func (c *Calls) build(contract *Contract, method string, params ...interface{}) (*Call, error) {
	data, err := contract.Pack(method, params...)
	if err != nil {
		return nil, err
	}
	return &Call{To: contract.GetAddress(), Data: data, Method: method}, nil
}

// CreateProject createProject(token, goal, endTime)
func (c *Calls) CreateProject(token common.Address, goal *big.Int, endTime uint64) (*Call, error) {
	if goal == nil || goal.Sign() <= 0 {
		return nil, errors.New("goal amount must be positive")
	}
	return c.build(c.fundl, "createProject", token, goal, new(big.Int).SetUint64(endTime))
}

// Fund fundl(id, amount)，调用前需先 approve
func (c *Calls) Fund(projectId uint64, amount *big.Int) (*Call, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("amount must be positive")
	}
	return c.build(c.fundl, "fundl", new(big.Int).SetUint64(projectId), amount)
}

// Collect collectFunding(id)
func (c *Calls) Collect(projectId uint64) (*Call, error) {
	return c.build(c.fundl, "collectFunding", new(big.Int).SetUint64(projectId))
}

// RequestRefund createRefundRequest(id)
func (c *Calls) RequestRefund(projectId uint64) (*Call, error) {
	return c.build(c.fundl, "createRefundRequest", new(big.Int).SetUint64(projectId))
}

// Refund refund(id)
func (c *Calls) Refund(projectId uint64) (*Call, error) {
	return c.build(c.fundl, "refund", new(big.Int).SetUint64(projectId))
}

// Approve 授权 Fundl 合约从调用者转出代币
func (c *Calls) Approve(token common.Address, value *big.Int) (*Call, error) {
	if value == nil || value.Sign() < 0 {
		return nil, errors.New("approve value must not be negative")
	}
	return c.build(NewContract(nil, "Token", token, tokenABI), "approve", c.fundl.GetAddress(), value)
}
