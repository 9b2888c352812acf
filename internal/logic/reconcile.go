package logic

import "github.com/PohSayKeong/fundl/internal/model"

// Reconcile 合并链上状态与链下元数据。链上缺失时返回 nil；
// 金额、owner、时间只取链上，名称、描述、图片取链下，缺失时使用占位值
func Reconcile(onChain *model.ProjectOnChain, onDb *model.ProjectModel) *model.Project {
	if onChain == nil {
		return nil
	}

	project := &model.Project{
		ProjectOnChain: *onChain,
		Name:           model.UnnamedProject,
	}
	if onDb == nil || onDb.ProjectId != onChain.ProjectId {
		return project
	}

	if onDb.Name != "" {
		project.Name = onDb.Name
	}
	project.Description = onDb.Description
	project.ImageURL = onDb.ImageURL
	return project
}
