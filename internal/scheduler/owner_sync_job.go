package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/go-co-op/gocron/v2"
)

const defaultOwnerSyncInterval = 5 * time.Minute

// OwnerSyncJob 以链上 owner 校正链下记录中冗余的 owner 字段
type OwnerSyncJob struct {
	reader   *chain.Reader
	repo     *repository.ProjectRepository
	interval time.Duration
}

// NewOwnerSyncJob 创建 owner 校正任务，interval 单位为秒
func NewOwnerSyncJob(reader *chain.Reader, repo *repository.ProjectRepository, interval int) *OwnerSyncJob {
	d := time.Duration(interval) * time.Second
	if d <= 0 {
		d = defaultOwnerSyncInterval
	}
	return &OwnerSyncJob{reader: reader, repo: repo, interval: d}
}

// GetName 获取任务名称
func (j *OwnerSyncJob) GetName() string {
	return "project_owner_sync"
}

// GetSchedule 获取调度配置
func (j *OwnerSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *OwnerSyncJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	logger.Info("Starting project owner sync task")
	updated, err := j.Run(ctx)
	if err != nil {
		logger.Error("Project owner sync failed: %v", err)
		return
	}
	logger.Info("Project owner sync completed. Updated %d projects", updated)
}

// Run 比对全部记录，返回更新条数；单条读取失败跳过，下一轮重试
func (j *OwnerSyncJob) Run(ctx context.Context) (int, error) {
	records, err := j.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		onChain, err := j.reader.Project(ctx, record.ProjectId)
		if err != nil {
			if errors.Is(err, model.ErrProjectNotFound) {
				logger.Warn("Project %d has metadata but no on-chain record", record.ProjectId)
			} else {
				logger.Warn("Failed to read project %d: %v", record.ProjectId, err)
			}
			continue
		}

		owner := onChain.Owner.Hex()
		if strings.EqualFold(record.Owner, owner) {
			continue
		}
		if err := j.repo.UpdateOwner(ctx, record.ProjectId, owner); err != nil {
			logger.Error("Failed to update project %d owner: %v", record.ProjectId, err)
			continue
		}
		logger.Info("Updated project %d owner from %s to %s", record.ProjectId, record.Owner, owner)
		updated++
	}
	return updated, nil
}
