package logic

import (
	"context"
	"errors"
	"sync"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"github.com/panjf2000/ants/v2"
)

const defaultListConcurrency = 8

// ProjectLogic 项目读路径：链上读取、链下元数据与合并
type ProjectLogic struct {
	reader      *chain.Reader
	repo        *repository.ProjectRepository
	concurrency int
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(reader *chain.Reader, repo *repository.ProjectRepository, concurrency int) *ProjectLogic {
	if concurrency <= 0 {
		concurrency = defaultListConcurrency
	}
	return &ProjectLogic{reader: reader, repo: repo, concurrency: concurrency}
}

// ListProjects 列出 [0, projectIdCounter) 的全部项目。
// 单个项目读取失败时对应位置为 nil，保持下标与项目 id 对齐
func (p *ProjectLogic) ListProjects(ctx context.Context) ([]*model.Project, error) {
	count, err := p.reader.ProjectCount(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []*model.Project{}, nil
	}

	onChain := p.readProjects(ctx, count)

	records, err := p.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byId := make(map[uint64]*model.ProjectModel, len(records))
	for i := range records {
		byId[records[i].ProjectId] = &records[i]
	}

	projects := make([]*model.Project, count)
	for i, project := range onChain {
		if project == nil {
			continue
		}
		projects[i] = Reconcile(project, byId[project.ProjectId])
	}
	return projects, nil
}

// readProjects 使用协程池并发读取链上元组
func (p *ProjectLogic) readProjects(ctx context.Context, count uint64) []*model.ProjectOnChain {
	results := make([]*model.ProjectOnChain, count)

	size := p.concurrency
	if uint64(size) > count {
		size = int(count)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		logger.Error("Failed to create read pool of size %d: %v", size, err)
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for id := uint64(0); id < count; id++ {
		id := id
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			project, err := p.reader.ProjectAt(ctx, id)
			if err != nil {
				logger.Warn("Failed to read project %d: %v", id, err)
				return
			}
			results[id] = project
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit read of project %d: %v", id, err)
		}
	}
	wg.Wait()

	return results
}

// GetProject 获取单个项目及代币符号；符号读取失败时返回 nil 而不报错
func (p *ProjectLogic) GetProject(ctx context.Context, projectId uint64) (*model.Project, *string, error) {
	onChain, err := p.reader.Project(ctx, projectId)
	if err != nil {
		return nil, nil, err
	}

	onDb, err := p.metadata(ctx, projectId)
	if err != nil {
		return nil, nil, err
	}

	var symbol *string
	if s, err := p.reader.TokenSymbol(ctx, onChain.TokenAddress); err != nil {
		logger.Debug("Token symbol unavailable for %s: %v", onChain.TokenAddress.Hex(), err)
	} else {
		symbol = &s
	}

	return Reconcile(onChain, onDb), symbol, nil
}

// metadata 读取链下记录，不存在时返回 nil
func (p *ProjectLogic) metadata(ctx context.Context, projectId uint64) (*model.ProjectModel, error) {
	record, err := p.repo.Get(ctx, projectId)
	if errors.Is(err, model.ErrRecordNotFound) {
		return nil, nil
	}
	return record, err
}

// GetRefundStatus 项目退款申请情况；user 非空时附带该用户的出资与申请状态
func (p *ProjectLogic) GetRefundStatus(ctx context.Context, projectId uint64, user *common.Address) (*model.RefundStatus, error) {
	onChain, err := p.reader.Project(ctx, projectId)
	if err != nil {
		return nil, err
	}

	total, err := p.reader.TotalRefundRequested(ctx, projectId)
	if err != nil {
		return nil, err
	}

	status := &model.RefundStatus{
		ProjectId:                  projectId,
		TotalRefundRequestedAmount: total,
		RaisedAmount:               onChain.RaisedAmount,
	}
	if user == nil {
		return status, nil
	}

	funded, err := p.reader.FundingOf(ctx, projectId, *user)
	if err != nil {
		return nil, err
	}
	requested, err := p.reader.RefundRequested(ctx, projectId, *user)
	if err != nil {
		return nil, err
	}
	status.User = user
	status.UserFundedAmount = funded
	status.RefundRequestedByUser = requested
	return status, nil
}

// GetOwnerFunds 项目方可提取金额，数值由合约计算
func (p *ProjectLogic) GetOwnerFunds(ctx context.Context, projectId uint64) (*model.OwnerFunds, error) {
	onChain, err := p.reader.Project(ctx, projectId)
	if err != nil {
		return nil, err
	}
	available, err := p.reader.AvailableToOwner(ctx, projectId)
	if err != nil {
		return nil, err
	}
	return &model.OwnerFunds{
		ProjectId:        projectId,
		AvailableToOwner: available,
		OwnerWithdrawn:   onChain.OwnerWithdrawn,
	}, nil
}
