// Package chaintest 提供内存中的 Fundl 节点替身，供读路径测试使用
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// 本地 anvil 默认部署地址
var (
	FundlAddress = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	TokenAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

// Project 链上项目状态
type Project struct {
	Token     common.Address
	Owner     common.Address
	Goal      *big.Int
	Raised    *big.Int
	Withdrawn *big.Int
	Start     uint64
	End       uint64
}

type userKey struct {
	id   uint64
	user common.Address
}

// Backend 实现 chain.Backend，按 ABI 编码返回预置状态
type Backend struct {
	mu sync.Mutex

	fundl abi.ABI
	token abi.ABI

	projects    []Project
	symbols     map[common.Address]string
	available   map[uint64]*big.Int
	refundTotal map[uint64]*big.Int
	funding     map[userKey]*big.Int
	refunded    map[userKey]bool
	receipts    map[common.Hash]*types.Receipt
	failures    map[string]error
	block       uint64
	calls       map[string]int
}

// NewBackend 创建空节点，计数为 0
func NewBackend() *Backend {
	return &Backend{
		fundl:       mustParse(chain.FundlABI),
		token:       mustParse(chain.TokenABI),
		symbols:     make(map[common.Address]string),
		available:   make(map[uint64]*big.Int),
		refundTotal: make(map[uint64]*big.Int),
		funding:     make(map[userKey]*big.Int),
		refunded:    make(map[userKey]bool),
		receipts:    make(map[common.Hash]*types.Receipt),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
		block:       1,
	}
}

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// AddProject 追加项目并返回其 id
func (b *Backend) AddProject(p Project) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects = append(b.projects, p)
	return uint64(len(b.projects) - 1)
}

// SetOwner 修改项目 owner
func (b *Backend) SetOwner(id uint64, owner common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects[id].Owner = owner
}

// SetSymbol 设置代币符号
func (b *Backend) SetSymbol(token common.Address, symbol string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.symbols[token] = symbol
}

// SetAvailable 设置 availableToOwner 返回值
func (b *Backend) SetAvailable(id uint64, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.available[id] = amount
}

// SetRefundTotal 设置 totalRefundRequestedAmount 返回值
func (b *Backend) SetRefundTotal(id uint64, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refundTotal[id] = amount
}

// SetFunding 设置用户出资与退款申请状态
func (b *Backend) SetFunding(id uint64, user common.Address, amount *big.Int, refundRequested bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.funding[userKey{id, user}] = amount
	b.refunded[userKey{id, user}] = refundRequested
}

// Fail 让指定方法（如 "projects"、"symbol"、"TransactionReceipt"）返回错误；err 为 nil 时恢复
func (b *Backend) Fail(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, method)
		return
	}
	b.failures[method] = err
}

// Calls 方法被调用次数
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// AddReceipt 登记任意回执
func (b *Backend) AddReceipt(receipt *types.Receipt) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[receipt.TxHash] = receipt
}

// AddCreateReceipt 登记一笔成功的 createProject 交易回执
func (b *Backend) AddCreateReceipt(txHash common.Hash, projectId uint64, owner common.Address) *types.Receipt {
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: txHash,
		Logs:   []*types.Log{ProjectCreatedLog(FundlAddress, txHash, projectId, owner)},
	}
	b.AddReceipt(receipt)
	return receipt
}

// ProjectCreatedLog 构造 ProjectCreated 事件日志
func ProjectCreatedLog(emitter common.Address, txHash common.Hash, projectId uint64, owner common.Address) *types.Log {
	event := mustParse(chain.FundlABI).Events["ProjectCreated"]
	return &types.Log{
		Address: emitter,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(new(big.Int).SetUint64(projectId)),
			common.BytesToHash(owner.Bytes()),
		},
		TxHash: txHash,
	}
}

// CodeAt 实现 bind.ContractCaller
func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

// CallContract 实现 bind.ContractCaller
func (b *Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("malformed call")
	}

	contract := b.token
	if *msg.To == FundlAddress {
		contract = b.fundl
	}
	method, err := contract.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.calls[method.Name]++
	failure := b.failures[method.Name]
	b.mu.Unlock()
	if failure != nil {
		return nil, failure
	}

	values, err := b.respond(*msg.To, method.Name, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(values...)
}

func (b *Backend) respond(to common.Address, method string, args []interface{}) ([]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch method {
	case "projectIdCounter":
		return []interface{}{big.NewInt(int64(len(b.projects)))}, nil
	case "projects":
		id := args[0].(*big.Int).Uint64()
		if id >= uint64(len(b.projects)) {
			// 未创建的 id 返回全零结构体
			return []interface{}{common.Address{}, common.Address{}, new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int)}, nil
		}
		p := b.projects[id]
		return []interface{}{p.Token, p.Owner, orZero(p.Goal), orZero(p.Raised), orZero(p.Withdrawn),
			new(big.Int).SetUint64(p.Start), new(big.Int).SetUint64(p.End)}, nil
	case "availableToOwner":
		return []interface{}{orZero(b.available[args[0].(*big.Int).Uint64()])}, nil
	case "totalRefundRequestedAmount":
		return []interface{}{orZero(b.refundTotal[args[0].(*big.Int).Uint64()])}, nil
	case "fundingByUsersByProject":
		key := userKey{args[0].(*big.Int).Uint64(), args[1].(common.Address)}
		return []interface{}{orZero(b.funding[key])}, nil
	case "refundRequestByUsersByProject":
		key := userKey{args[0].(*big.Int).Uint64(), args[1].(common.Address)}
		return []interface{}{b.refunded[key]}, nil
	case "symbol":
		symbol, ok := b.symbols[to]
		if !ok {
			return nil, fmt.Errorf("execution reverted")
		}
		return []interface{}{symbol}, nil
	}
	return nil, fmt.Errorf("method %s not supported", method)
}

// TransactionReceipt 实现 chain.Backend
func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["TransactionReceipt"]++
	if err := b.failures["TransactionReceipt"]; err != nil {
		return nil, err
	}
	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// BlockNumber 实现 chain.Backend
func (b *Backend) BlockNumber(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failures["BlockNumber"]; err != nil {
		return 0, err
	}
	return b.block, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
