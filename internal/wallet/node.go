package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCCaller JSON-RPC 调用
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// NodeWallet 使用节点托管的已解锁账户（如本地 anvil）
type NodeWallet struct {
	mu        sync.Mutex
	rpc       RPCCaller
	from      string
	address   common.Address
	connected bool
}

var _ RPCCaller = (*rpc.Client)(nil)

// NewNodeWallet from 为空时使用 eth_accounts 的第一个账户
func NewNodeWallet(client RPCCaller, from string) *NodeWallet {
	return &NodeWallet{rpc: client, from: from}
}

type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data"`
	Value *hexutil.Big   `json:"value"`
}

// Connect 读取节点账户并选定发送方
func (w *NodeWallet) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var accounts []common.Address
	if err := w.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return fmt.Errorf("failed to list node accounts: %w", err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("node has no unlocked accounts")
	}

	address := accounts[0]
	if w.from != "" {
		if !common.IsHexAddress(w.from) {
			return fmt.Errorf("invalid wallet.from address %q", w.from)
		}
		address = common.HexToAddress(w.from)
		found := false
		for _, a := range accounts {
			if a == address {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("account %s is not managed by the node", address.Hex())
		}
	}

	w.address = address
	w.connected = true
	logger.Info("Node wallet connected with account %s", address.Hex())
	return nil
}

func (w *NodeWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
}

func (w *NodeWallet) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *NodeWallet) Address() common.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.address
}

// SendTransaction 交由节点签名发送
func (w *NodeWallet) SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	w.mu.Lock()
	from, connected := w.address, w.connected
	w.mu.Unlock()

	if !connected {
		return common.Hash{}, ErrNotConnected
	}
	if value == nil {
		value = new(big.Int)
	}

	var hash common.Hash
	err := w.rpc.CallContext(ctx, &hash, "eth_sendTransaction", sendTxArgs{
		From:  from,
		To:    to,
		Data:  data,
		Value: (*hexutil.Big)(value),
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return hash, nil
}
