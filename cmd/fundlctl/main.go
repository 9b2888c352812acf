package main

import (
	"context"
	"fmt"
	"os"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	waitTx  bool
)

var rootCmd = &cobra.Command{
	Use:   "fundlctl",
	Short: "Operate Fundl projects from the command line",
	Long: `fundlctl sends Fundl contract transactions through the configured wallet
and reads reconciled project state.

Usage:

> fundlctl create-project --goal 1000 --days 30
> fundlctl fund 0 --amount 25
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&waitTx, "wait", "w", true, "wait until each transaction is mined")

	rootCmd.AddCommand(CreateProjectCmd)
	rootCmd.AddCommand(FundCmd)
	rootCmd.AddCommand(CollectCmd)
	rootCmd.AddCommand(RequestRefundCmd)
	rootCmd.AddCommand(RefundCmd)
	rootCmd.AddCommand(ProjectCmd)
	rootCmd.AddCommand(SeedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig 读取配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session 一次命令使用的链连接与钱包
type session struct {
	cfg    *config.Config
	chain  *chain.Manager
	wallet wallet.Wallet
}

func openSession(ctx context.Context, withWallet bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	manager, err := chain.NewManager(cfg.Chain)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, chain: manager}
	if !withWallet {
		return s, nil
	}

	w, err := wallet.New(cfg.Wallet, cfg.Chain.ChainId, manager.GetClient())
	if err != nil {
		manager.Close()
		return nil, err
	}
	if err := w.Connect(ctx); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}
	s.wallet = w
	return s, nil
}

func (s *session) Close() {
	if s.wallet != nil {
		s.wallet.Disconnect()
	}
	s.chain.Close()
}
