package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Manager 单链管理器，持有节点连接与合约读写工具
type Manager struct {
	mu     sync.RWMutex
	client *ethclient.Client  // 链客户端
	config config.ChainConfig // 存储链配置
	reader *Reader
	calls  *Calls
}

// NewManager 创建单链管理器
func NewManager(cfg config.ChainConfig) (*Manager, error) {
	if !common.IsHexAddress(cfg.FundlAddress) {
		return nil, fmt.Errorf("invalid fundl contract address %q", cfg.FundlAddress)
	}

	logger.Info("Initializing chain client (network: %s, id: %d)", cfg.Network, cfg.ChainId)
	client, err := createChainClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	fundl := common.HexToAddress(cfg.FundlAddress)
	manager := &Manager{
		client: client,
		config: cfg,
		reader: NewReader(client, fundl, cfg.ReadTimeout),
		calls:  NewCalls(fundl),
	}
	logger.Info("Successfully initialized chain manager (fundl: %s)", fundl.Hex())
	return manager, nil
}

// createChainClient 创建链客户端
func createChainClient(cfg config.ChainConfig) (*ethclient.Client, error) {
	if cfg.RpcUrl == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}

	logger.Info("Creating client connection (RPC: %s)", cfg.RpcUrl)
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, err
	}

	if err := testClientConnection(client, cfg.ChainId); err != nil {
		client.Close()
		return nil, fmt.Errorf("client connection test failed (%s): %w", cfg.Network, err)
	}
	return client, nil
}

// testClientConnection 测试客户端连接并核对链ID
func testClientConnection(client *ethclient.Client, expected int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chainId, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	if expected != 0 && chainId.Int64() != expected {
		return fmt.Errorf("chain id mismatch: node reports %s, configured %d", chainId, expected)
	}
	return nil
}

// GetClient 获取客户端
func (m *Manager) GetClient() *ethclient.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Reader 链上读取器
func (m *Manager) Reader() *Reader {
	return m.reader
}

// Calls 写调用构造器
func (m *Manager) Calls() *Calls {
	return m.calls
}

// GetHealthStatus 获取健康状态
func (m *Manager) GetHealthStatus(ctx context.Context) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := map[string]interface{}{
		"network":       m.config.Network,
		"chain_id":      m.config.ChainId,
		"client_status": "connected",
		"fundl":         m.reader.Fundl().GetAddress().Hex(),
	}

	if m.client == nil {
		health["client_status"] = "closed"
		return health
	}
	block, err := m.reader.LatestBlock(ctx)
	if err != nil {
		health["client_status"] = "disconnected"
	} else {
		health["latest_block"] = block
	}
	return health
}

// Close 关闭管理器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Close()
		m.client = nil
	}

	logger.Info("Chain manager closed")
	return nil
}
