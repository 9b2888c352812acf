package repository

import (
	"context"
	"errors"

	"github.com/PohSayKeong/fundl/internal/model"
	"gorm.io/gorm"
)

// ProjectRepository 项目链下元数据存取，按 projectId 单条读写
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目元数据仓库
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Get 按 projectId 查询；不存在时返回 model.ErrRecordNotFound
func (r *ProjectRepository) Get(ctx context.Context, projectId uint64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRecordNotFound
		}
		return nil, model.Upstream("get project metadata", err)
	}
	return &project, nil
}

// List 全表读取，按 projectId 升序
func (r *ProjectRepository) List(ctx context.Context) ([]model.ProjectModel, error) {
	var projects []model.ProjectModel
	if err := r.db.WithContext(ctx).Order("project_id ASC").Find(&projects).Error; err != nil {
		return nil, model.Upstream("list project metadata", err)
	}
	return projects, nil
}

// Create 写入新记录；projectId 已存在时返回 model.ErrDuplicateProject
func (r *ProjectRepository) Create(ctx context.Context, project *model.ProjectModel) error {
	err := r.db.WithContext(ctx).Create(project).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicateProject
	}

	// 部分驱动不翻译唯一约束错误，回查一次区分冲突与故障
	if _, getErr := r.Get(ctx, project.ProjectId); getErr == nil {
		return model.ErrDuplicateProject
	}
	return model.Upstream("create project metadata", err)
}

// Update 更新展示字段；记录不存在时返回 model.ErrRecordNotFound
func (r *ProjectRepository) Update(ctx context.Context, projectId uint64, fields model.ProjectMetadata) (*model.ProjectModel, error) {
	project, err := r.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        fields.Name,
		"description": fields.Description,
		"image_url":   fields.ImageURL,
	}
	if err := r.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return nil, model.Upstream("update project metadata", err)
	}

	project.Name = fields.Name
	project.Description = fields.Description
	project.ImageURL = fields.ImageURL
	return project, nil
}

// UpdateOwner 以链上 owner 覆盖冗余的 owner 字段
func (r *ProjectRepository) UpdateOwner(ctx context.Context, projectId uint64, owner string) error {
	result := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("project_id = ?", projectId).
		Update("owner", owner)
	if result.Error != nil {
		return model.Upstream("update project owner", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrRecordNotFound
	}
	return nil
}
