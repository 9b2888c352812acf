package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend 本地签名发送所需的节点能力，*ethclient.Client 满足该接口
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyedWallet 持有私钥，本地签名后广播
type KeyedWallet struct {
	mu        sync.Mutex
	key       *ecdsa.PrivateKey
	address   common.Address
	chainId   *big.Int
	backend   Backend
	connected bool
}

// NewKeyedWallet 解析十六进制私钥
func NewKeyedWallet(privateKey string, chainId *big.Int, backend Backend) (*KeyedWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &KeyedWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainId: chainId,
		backend: backend,
	}, nil
}

// Connect 核对节点链ID
func (w *KeyedWallet) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	chainId, err := w.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	if w.chainId.Sign() != 0 && chainId.Cmp(w.chainId) != 0 {
		return fmt.Errorf("chain id mismatch: node reports %s, configured %s", chainId, w.chainId)
	}
	w.chainId = chainId
	w.connected = true
	logger.Info("Keyed wallet %s connected to chain %s", w.address.Hex(), chainId)
	return nil
}

func (w *KeyedWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
}

func (w *KeyedWallet) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *KeyedWallet) Address() common.Address {
	return w.address
}

// SendTransaction 估算 gas、签名并广播，返回交易哈希
func (w *KeyedWallet) SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.connected {
		return common.Hash{}, ErrNotConnected
	}
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := w.backend.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.address,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainId), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	logger.Debug("Sent transaction %s (nonce %d, gas %d)", signed.Hash().Hex(), nonce, gas)
	return signed.Hash(), nil
}
