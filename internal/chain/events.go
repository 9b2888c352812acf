package chain

import (
	"math/big"

	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const EventProjectCreated = "ProjectCreated"

// ProjectCreated 创建交易回执中的 ProjectCreated 事件
type ProjectCreated struct {
	ProjectId uint64
	Owner     common.Address
	TxHash    common.Hash
}

// FindProjectCreated 在回执中查找 Fundl 合约发出的 ProjectCreated 事件。
// 交易失败或没有该事件时返回 model.ErrTxNotFound
func FindProjectCreated(fundl *Contract, receipt *types.Receipt) (*ProjectCreated, error) {
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return nil, model.ErrTxNotFound
	}

	for _, log := range receipt.Logs {
		if log == nil {
			continue
		}
		name, fields, ok := fundl.ParseEvent(*log)
		if !ok || name != EventProjectCreated {
			continue
		}

		id, _ := fields["projectId"].(*big.Int)
		owner, ok := fields["owner"].(common.Address)
		if id == nil || !id.IsUint64() || !ok {
			continue
		}
		return &ProjectCreated{
			ProjectId: id.Uint64(),
			Owner:     owner,
			TxHash:    receipt.TxHash,
		}, nil
	}
	return nil, model.ErrTxNotFound
}
