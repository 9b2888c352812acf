package database

import (
	"errors"
	"fmt"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/model"
	"gorm.io/gorm"
)

// SampleProjects 本地网络的示例元数据，对应 anvil 默认账户创建的前三个项目
var SampleProjects = []model.ProjectModel{
	{
		ProjectId:   0,
		Name:        "Ad Infinitum",
		Description: "A revolutionary AI Agent platform for developers",
		ImageURL:    "https://i.imgur.com/9GcO44P.jpeg",
		Owner:       "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
	},
	{
		ProjectId:   1,
		Name:        "Hardware Card Wallets",
		Description: "Hardware Wallet that happens to be an NFC Card! All funders who fund 10+ tokens get a free card!",
		ImageURL:    "https://i.imgur.com/CPhz19Ng.jpg",
		Owner:       "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
	},
	{
		ProjectId:   2,
		Name:        "Aetheria",
		Description: "An open-world blockchain educational game.",
		ImageURL:    "https://i.imgur.com/uImH6Zf.jpeg",
		Owner:       "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	},
}

// Seed 写入示例数据，已存在的项目跳过；返回新写入的条数
func Seed(db *gorm.DB) (int, error) {
	created := 0
	for _, sample := range SampleProjects {
		var existing model.ProjectModel
		err := db.Where("project_id = ?", sample.ProjectId).First(&existing).Error
		if err == nil {
			logger.Info("Project %d already seeded, skipping", sample.ProjectId)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to check project %d: %w", sample.ProjectId, err)
		}

		record := sample
		if err := db.Create(&record).Error; err != nil {
			return created, fmt.Errorf("failed to seed project %d: %w", sample.ProjectId, err)
		}
		created++
	}
	return created, nil
}
