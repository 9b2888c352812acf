package model

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// UnnamedProject 链下元数据缺失时使用的占位名称
const UnnamedProject = "Unnamed Project"

// ProjectOnChain 合约 projects(uint256) 返回的项目状态
type ProjectOnChain struct {
	ProjectId      uint64
	TokenAddress   common.Address
	Owner          common.Address
	GoalAmount     *big.Int
	RaisedAmount   *big.Int
	OwnerWithdrawn *big.Int
	StartTime      uint64
	EndTime        uint64
}

// Exists 合约对不存在的项目返回零值元组，owner 为零地址
func (p *ProjectOnChain) Exists() bool {
	return p != nil && p.Owner != (common.Address{})
}

// Project 链上状态与链下元数据合并后的视图模型
type Project struct {
	ProjectOnChain

	Name        string
	Description string
	ImageURL    string
}

type projectJSON struct {
	ProjectId             uint64 `json:"projectId"`
	TokenAddress          string `json:"tokenAddress"`
	Owner                 string `json:"owner"`
	GoalAmount            string `json:"goalAmount"`
	RaisedAmount          string `json:"raisedAmount"`
	OwnerWithdrawn        string `json:"ownerWithdrawn"`
	GoalAmountDisplay     string `json:"goalAmountDisplay"`
	RaisedAmountDisplay   string `json:"raisedAmountDisplay"`
	OwnerWithdrawnDisplay string `json:"ownerWithdrawnDisplay"`
	Progress              string `json:"progress"`
	StartTime             uint64 `json:"startTime"`
	EndTime               uint64 `json:"endTime"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	ImageURL              string `json:"imageUrl"`
}

// MarshalJSON 金额以最小单位的十进制字符串输出，避免前端精度丢失
func (p Project) MarshalJSON() ([]byte, error) {
	return json.Marshal(projectJSON{
		ProjectId:             p.ProjectId,
		TokenAddress:          p.TokenAddress.Hex(),
		Owner:                 p.Owner.Hex(),
		GoalAmount:            AmountString(p.GoalAmount),
		RaisedAmount:          AmountString(p.RaisedAmount),
		OwnerWithdrawn:        AmountString(p.OwnerWithdrawn),
		GoalAmountDisplay:     FormatToken(p.GoalAmount),
		RaisedAmountDisplay:   FormatToken(p.RaisedAmount),
		OwnerWithdrawnDisplay: FormatToken(p.OwnerWithdrawn),
		Progress:              ProgressPercent(p.RaisedAmount, p.GoalAmount),
		StartTime:             p.StartTime,
		EndTime:               p.EndTime,
		Name:                  p.Name,
		Description:           p.Description,
		ImageURL:              p.ImageURL,
	})
}

// ProjectMetadata 可编辑的展示字段
type ProjectMetadata struct {
	Name        string
	Description string
	ImageURL    string
}

// Missing 空字符串或仅含空白视为缺失
func (m ProjectMetadata) Missing() bool {
	return strings.TrimSpace(m.Name) == "" ||
		strings.TrimSpace(m.Description) == "" ||
		strings.TrimSpace(m.ImageURL) == ""
}
