package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Identity IdentityConfig `mapstructure:"identity"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
}

// DSN postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ChainConfig 链与合约配置，由 Network 预设补全
type ChainConfig struct {
	Network         string        `mapstructure:"network"`  // anvil, base-sepolia
	ChainId         int64         `mapstructure:"chain_id"` // 链ID
	RpcUrl          string        `mapstructure:"rpc_url"`  // RPC节点URL
	FundlAddress    string        `mapstructure:"fundl_address"`
	TokenAddress    string        `mapstructure:"token_address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // 单次链上读取超时
	ListConcurrency int           `mapstructure:"list_concurrency"` // 列表并发读取数
}

type IdentityConfig struct {
	AppId           string `mapstructure:"app_id"`
	Issuer          string `mapstructure:"issuer"`
	VerificationKey string `mapstructure:"verification_key"` // ES256 公钥 PEM
	Header          string `mapstructure:"header"`
}

type WalletConfig struct {
	Provider   string `mapstructure:"provider"` // keyed, node
	PrivateKey string `mapstructure:"private_key"`
	From       string `mapstructure:"from"` // node 模式下使用的解锁账户，空则取 eth_accounts 第一个
}

type TaskConfig struct {
	OwnerSyncEnabled bool `mapstructure:"owner_sync_enabled"`
	Interval         int  `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// Network 链预设
type Network struct {
	ChainId        int64
	RpcUrl         string
	FundlAddress   string
	TokenAddress   string
	WalletProvider string
}

// Networks 已知网络预设；本地 anvil 使用默认部署地址
var Networks = map[string]Network{
	"anvil": {
		ChainId:        31337,
		RpcUrl:         "http://127.0.0.1:8545",
		FundlAddress:   "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		TokenAddress:   "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		WalletProvider: "node",
	},
	"base-sepolia": {
		ChainId:        84532,
		RpcUrl:         "https://sepolia.base.org",
		WalletProvider: "keyed",
	},
}

// Load 读取配置，失败直接退出
func Load() *Config {
	cfg, err := LoadFrom("")
	if err != nil {
		logger.Fatal("Unable to load config: %v", err)
	}
	return cfg
}

// LoadFrom 从指定文件读取配置；file 为空时按默认路径查找 config.yaml
func LoadFrom(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fundl")
	}

	// 设置默认值
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fundl")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "fundl.db")
	v.SetDefault("chain.network", "anvil")
	v.SetDefault("chain.chain_id", 0)
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.fundl_address", "")
	v.SetDefault("chain.token_address", "")
	v.SetDefault("chain.read_timeout", "5s")
	v.SetDefault("chain.list_concurrency", 8)
	v.SetDefault("identity.app_id", "")
	v.SetDefault("identity.issuer", "privy.io")
	v.SetDefault("identity.verification_key", "")
	v.SetDefault("identity.header", "privy-id-token")
	v.SetDefault("wallet.provider", "")
	v.SetDefault("wallet.private_key", "")
	v.SetDefault("wallet.from", "")
	v.SetDefault("task.owner_sync_enabled", false)
	v.SetDefault("task.interval", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")

	// 环境变量覆盖，如 FUNDL_CHAIN_RPC_URL
	v.SetEnvPrefix("fundl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.Warn("Could not find config file, using defaults and environment: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Chain.Resolve(&cfg.Wallet); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve 用网络预设补全未显式配置的字段
func (c *ChainConfig) Resolve(wallet *WalletConfig) error {
	preset, known := Networks[c.Network]
	if !known {
		if c.ChainId == 0 || c.RpcUrl == "" {
			return fmt.Errorf("unknown chain network %q: chain_id and rpc_url are required", c.Network)
		}
	}

	if c.ChainId == 0 {
		c.ChainId = preset.ChainId
	}
	if c.RpcUrl == "" {
		c.RpcUrl = preset.RpcUrl
	}
	if c.FundlAddress == "" {
		c.FundlAddress = preset.FundlAddress
	}
	if c.TokenAddress == "" {
		c.TokenAddress = preset.TokenAddress
	}
	if c.FundlAddress == "" {
		return fmt.Errorf("chain.fundl_address is required for network %q", c.Network)
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.ListConcurrency <= 0 {
		c.ListConcurrency = 8
	}

	if wallet != nil && wallet.Provider == "" {
		wallet.Provider = preset.WalletProvider
		if wallet.Provider == "" {
			wallet.Provider = "keyed"
		}
	}
	return nil
}
