package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	ProviderKeyed = "keyed"
	ProviderNode  = "node"
)

var ErrNotConnected = errors.New("wallet not connected")

// Wallet 发送合约交易的能力
type Wallet interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
	Address() common.Address
	SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
}

// New 按配置选择钱包实现
func New(cfg config.WalletConfig, chainId int64, client *ethclient.Client) (Wallet, error) {
	switch cfg.Provider {
	case ProviderKeyed, "":
		return NewKeyedWallet(cfg.PrivateKey, big.NewInt(chainId), client)
	case ProviderNode:
		return NewNodeWallet(client.Client(), cfg.From), nil
	default:
		return nil, fmt.Errorf("unsupported wallet provider %q", cfg.Provider)
	}
}

// ReceiptReader 查询交易回执
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitMined 轮询直到交易被打包；交易失败时返回错误与回执
func WaitMined(ctx context.Context, reader ReceiptReader, txHash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := reader.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("transaction %s reverted", txHash.Hex())
			}
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
