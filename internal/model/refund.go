package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RefundStatus 项目退款申请情况；User 为空时不含用户字段
type RefundStatus struct {
	ProjectId                  uint64
	TotalRefundRequestedAmount *big.Int
	RaisedAmount               *big.Int

	User                  *common.Address
	RefundRequestedByUser bool
	UserFundedAmount      *big.Int
}

type refundStatusJSON struct {
	ProjectId                  uint64  `json:"projectId"`
	TotalRefundRequestedAmount string  `json:"totalRefundRequestedAmount"`
	RaisedAmount               string  `json:"raisedAmount"`
	RefundRequestedPercent     string  `json:"refundRequestedPercent"`
	User                       *string `json:"user,omitempty"`
	RefundRequestedByUser      *bool   `json:"refundRequestedByUser,omitempty"`
	UserFundedAmount           *string `json:"userFundedAmount,omitempty"`
}

// MarshalJSON 百分比仅用于展示，是否达到退款条件由合约判定
func (r RefundStatus) MarshalJSON() ([]byte, error) {
	out := refundStatusJSON{
		ProjectId:                  r.ProjectId,
		TotalRefundRequestedAmount: AmountString(r.TotalRefundRequestedAmount),
		RaisedAmount:               AmountString(r.RaisedAmount),
		RefundRequestedPercent:     ProgressPercent(r.TotalRefundRequestedAmount, r.RaisedAmount),
	}
	if r.User != nil {
		user := r.User.Hex()
		requested := r.RefundRequestedByUser
		funded := AmountString(r.UserFundedAmount)
		out.User = &user
		out.RefundRequestedByUser = &requested
		out.UserFundedAmount = &funded
	}
	return json.Marshal(out)
}

// OwnerFunds 项目方可提取与已提取金额
type OwnerFunds struct {
	ProjectId        uint64
	AvailableToOwner *big.Int
	OwnerWithdrawn   *big.Int
}

// MarshalJSON 金额输出为最小单位字符串
func (o OwnerFunds) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProjectId               uint64 `json:"projectId"`
		AvailableToOwner        string `json:"availableToOwner"`
		AvailableToOwnerDisplay string `json:"availableToOwnerDisplay"`
		OwnerWithdrawn          string `json:"ownerWithdrawn"`
	}{
		ProjectId:               o.ProjectId,
		AvailableToOwner:        AmountString(o.AvailableToOwner),
		AvailableToOwnerDisplay: FormatToken(o.AvailableToOwner),
		OwnerWithdrawn:          AmountString(o.OwnerWithdrawn),
	})
}
