package model

import (
	"time"
)

// ProjectModel 项目链下元数据
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 与合约 projectIdCounter 分配的编号一一对应
	ProjectId uint64 `json:"project_id" gorm:"uniqueIndex;not null"`

	// 展示信息
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`

	// 冗余的链上 owner，仅用于查询；鉴权以链上为准
	Owner string `json:"owner" gorm:"index"`

	// 创建该项目的交易哈希
	TxHash string `json:"tx_hash"`
}

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}
