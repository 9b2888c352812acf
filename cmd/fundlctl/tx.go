package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/PohSayKeong/fundl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

const minedPollInterval = time.Second

var (
	tokenAddress string
	goalAmount   string
	durationDays int
	fundAmount   string
)

// send 发送一笔调用并按需等待打包
func (s *session) send(ctx context.Context, cmd *cobra.Command, call *chain.Call, wait bool) error {
	hash, err := s.wallet.SendTransaction(ctx, call.To, call.Data, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", call.Method, err)
	}
	cmd.Printf("%s sent: %s\n", call.Method, hash.Hex())
	if !wait {
		return nil
	}

	receipt, err := wallet.WaitMined(ctx, s.chain.GetClient(), hash, minedPollInterval)
	if err != nil {
		return fmt.Errorf("%s: %w", call.Method, err)
	}
	cmd.Printf("%s mined in block %s\n", call.Method, receipt.BlockNumber)

	if created, err := chain.FindProjectCreated(s.chain.Reader().Fundl(), receipt); err == nil {
		cmd.Printf("project %d created by %s\n", created.ProjectId, created.Owner.Hex())
	}
	return nil
}

func parseProjectId(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid project id %q", arg)
	}
	return id, nil
}

var CreateProjectCmd = &cobra.Command{
	Use:   "create-project",
	Short: "Create a project on chain",
	Long: `
Creates a project accepting the given token. The goal is in whole tokens (18 decimals).
After it is mined, submit the transaction hash with metadata to POST /projects.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := model.ParseToken(goalAmount)
		if err != nil {
			return err
		}
		if durationDays <= 0 {
			return fmt.Errorf("days must be positive")
		}

		ctx := cmd.Context()
		s, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer s.Close()

		token := tokenAddress
		if token == "" {
			token = s.cfg.Chain.TokenAddress
		}
		if !common.IsHexAddress(token) {
			return fmt.Errorf("invalid token address %q", token)
		}

		endTime := uint64(time.Now().Add(time.Duration(durationDays) * 24 * time.Hour).Unix())
		call, err := s.chain.Calls().CreateProject(common.HexToAddress(token), goal, endTime)
		if err != nil {
			return err
		}
		return s.send(ctx, cmd, call, waitTx)
	},
}

var FundCmd = &cobra.Command{
	Use:   "fund <project-id>",
	Short: "Approve the token and fund a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProjectId(args[0])
		if err != nil {
			return err
		}
		amount, err := model.ParseToken(fundAmount)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer s.Close()

		project, err := s.chain.Reader().Project(ctx, id)
		if err != nil {
			return err
		}

		approve, err := s.chain.Calls().Approve(project.TokenAddress, amount)
		if err != nil {
			return err
		}
		fund, err := s.chain.Calls().Fund(id, amount)
		if err != nil {
			return err
		}

		// fundl 依赖 approve 已生效
		if err := s.send(ctx, cmd, approve, true); err != nil {
			return err
		}
		return s.send(ctx, cmd, fund, waitTx)
	},
}

// projectTxCmd 只需要项目 id 的写操作
func projectTxCmd(use, short string, build func(*chain.Calls, uint64) (*chain.Call, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectId(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, true)
			if err != nil {
				return err
			}
			defer s.Close()

			call, err := build(s.chain.Calls(), id)
			if err != nil {
				return err
			}
			return s.send(ctx, cmd, call, waitTx)
		},
	}
}

var (
	CollectCmd       = projectTxCmd("collect", "Collect available funding as the project owner", (*chain.Calls).Collect)
	RequestRefundCmd = projectTxCmd("request-refund", "Request a refund as a funder", (*chain.Calls).RequestRefund)
	RefundCmd        = projectTxCmd("refund", "Claim a refund once the project allows it", (*chain.Calls).Refund)
)

func init() {
	CreateProjectCmd.Flags().StringVarP(&tokenAddress, "token", "t", "", "accepted token address (default chain.token_address)")
	CreateProjectCmd.Flags().StringVarP(&goalAmount, "goal", "g", "", "goal in whole tokens")
	CreateProjectCmd.Flags().IntVarP(&durationDays, "days", "d", 30, "funding period in days")
	_ = CreateProjectCmd.MarkFlagRequired("goal")

	FundCmd.Flags().StringVarP(&fundAmount, "amount", "a", "", "amount in whole tokens")
	_ = FundCmd.MarkFlagRequired("amount")
}
