package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/PohSayKeong/fundl/internal/codec"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const defaultReadTimeout = 5 * time.Second

// Backend 读路径所需的节点能力，*ethclient.Client 满足该接口
type Backend interface {
	bind.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Reader 链上只读访问；每次读取都有独立超时，失败统一包装为 model.UpstreamError
type Reader struct {
	backend Backend
	fundl   *Contract
	timeout time.Duration

	mu     sync.RWMutex
	tokens map[common.Address]*Contract // 按代币地址缓存
}

// NewReader 创建链上读取器
func NewReader(backend Backend, fundlAddress common.Address, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	return &Reader{
		backend: backend,
		fundl:   NewContract(backend, "Fundl", fundlAddress, fundlABI),
		timeout: timeout,
		tokens:  make(map[common.Address]*Contract),
	}
}

// Fundl 众筹合约
func (r *Reader) Fundl() *Contract {
	return r.fundl
}

func (r *Reader) token(address common.Address) *Contract {
	r.mu.RLock()
	c, ok := r.tokens[address]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.tokens[address]; !ok {
		c = NewContract(r.backend, "Token", address, tokenABI)
		r.tokens[address] = c
	}
	return c
}

func (r *Reader) call(ctx context.Context, c *Contract, op, method string, params ...interface{}) ([]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := c.Call(ctx, method, params...)
	if err != nil {
		return nil, model.Upstream(op, err)
	}
	return out, nil
}

func (r *Reader) callUint(ctx context.Context, op, method string, params ...interface{}) (*big.Int, error) {
	out, err := r.call(ctx, r.fundl, op, method, params...)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, model.Upstream(op, fmt.Errorf("unexpected %d outputs from %s", len(out), method))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, model.Upstream(op, fmt.Errorf("unexpected output type %T from %s", out[0], method))
	}
	return v, nil
}

// ProjectCount 读取 projectIdCounter，已创建的项目 id 为 [0, count)
func (r *Reader) ProjectCount(ctx context.Context) (uint64, error) {
	count, err := r.callUint(ctx, "read project counter", "projectIdCounter")
	if err != nil {
		return 0, err
	}
	if !count.IsUint64() {
		return 0, model.Upstream("read project counter", fmt.Errorf("counter %s overflows uint64", count))
	}
	return count.Uint64(), nil
}

// ProjectTuple 读取 projects(id) 的原始 7 元组
func (r *Reader) ProjectTuple(ctx context.Context, projectId uint64) ([]interface{}, error) {
	return r.call(ctx, r.fundl, "read project tuple", "projects", new(big.Int).SetUint64(projectId))
}

// Project 读取并解码项目；id 超出计数或 owner 为零地址时返回 model.ErrProjectNotFound
func (r *Reader) Project(ctx context.Context, projectId uint64) (*model.ProjectOnChain, error) {
	count, err := r.ProjectCount(ctx)
	if err != nil {
		return nil, err
	}
	if projectId >= count {
		return nil, model.ErrProjectNotFound
	}
	return r.projectAt(ctx, projectId)
}

// ProjectAt 读取并解码已知在计数范围内的项目，不再读取计数
func (r *Reader) ProjectAt(ctx context.Context, projectId uint64) (*model.ProjectOnChain, error) {
	return r.projectAt(ctx, projectId)
}

func (r *Reader) projectAt(ctx context.Context, projectId uint64) (*model.ProjectOnChain, error) {
	tuple, err := r.ProjectTuple(ctx, projectId)
	if err != nil {
		return nil, err
	}
	project, err := codec.DecodeProject(tuple, projectId)
	if err != nil {
		return nil, err
	}
	if !project.Exists() {
		return nil, model.ErrProjectNotFound
	}
	return project, nil
}

// TokenSymbol 读取代币符号
func (r *Reader) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	out, err := r.call(ctx, r.token(token), "read token symbol", "symbol")
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", model.Upstream("read token symbol", errors.New("empty symbol output"))
	}
	symbol, ok := out[0].(string)
	if !ok {
		return "", model.Upstream("read token symbol", fmt.Errorf("unexpected output type %T", out[0]))
	}
	return symbol, nil
}

// TransactionReceipt 读取交易回执；不存在时返回 model.ErrTxNotFound
func (r *Reader) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	receipt, err := r.backend.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, model.ErrTxNotFound
		}
		return nil, model.Upstream("read transaction receipt", err)
	}
	if receipt == nil {
		return nil, model.ErrTxNotFound
	}
	return receipt, nil
}

// ProjectCreated 读取回执并解析其中的 ProjectCreated 事件
func (r *Reader) ProjectCreated(ctx context.Context, txHash common.Hash) (*ProjectCreated, error) {
	receipt, err := r.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	return FindProjectCreated(r.fundl, receipt)
}

// LatestBlock 最新区块号
func (r *Reader) LatestBlock(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.backend.BlockNumber(ctx)
	if err != nil {
		return 0, model.Upstream("read latest block", err)
	}
	return n, nil
}

// AvailableToOwner 合约计算的可提取金额，原样返回
func (r *Reader) AvailableToOwner(ctx context.Context, projectId uint64) (*big.Int, error) {
	return r.callUint(ctx, "read available to owner", "availableToOwner", new(big.Int).SetUint64(projectId))
}

// TotalRefundRequested 已申请退款的总额
func (r *Reader) TotalRefundRequested(ctx context.Context, projectId uint64) (*big.Int, error) {
	return r.callUint(ctx, "read total refund requested", "totalRefundRequestedAmount", new(big.Int).SetUint64(projectId))
}

// FundingOf 用户对项目的出资额
func (r *Reader) FundingOf(ctx context.Context, projectId uint64, user common.Address) (*big.Int, error) {
	return r.callUint(ctx, "read user funding", "fundingByUsersByProject", new(big.Int).SetUint64(projectId), user)
}

// RefundRequested 用户是否已申请退款
func (r *Reader) RefundRequested(ctx context.Context, projectId uint64, user common.Address) (bool, error) {
	const op = "read refund request"
	out, err := r.call(ctx, r.fundl, op, "refundRequestByUsersByProject", new(big.Int).SetUint64(projectId), user)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, model.Upstream(op, errors.New("empty output"))
	}
	requested, ok := out[0].(bool)
	if !ok {
		return false, model.Upstream(op, fmt.Errorf("unexpected output type %T", out[0]))
	}
	return requested, nil
}
