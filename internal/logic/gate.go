package logic

import (
	"context"
	"strings"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/identity"
	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const msgMissingFields = "Missing required fields"

// TokenVerifier 身份令牌校验
type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// CreateMetadata 链上创建交易完成后提交的元数据
type CreateMetadata struct {
	Name        string
	Description string
	Image       string
	TxHash      string
}

func (c CreateMetadata) missing() bool {
	return blank(c.Name) || blank(c.Description) || blank(c.Image) || blank(c.TxHash)
}

// MetadataGate 链下元数据写入口：身份校验、交易回执与 owner 核对后才落库
type MetadataGate struct {
	reader   *chain.Reader
	repo     *repository.ProjectRepository
	verifier TokenVerifier
}

// NewMetadataGate 创建写入口
func NewMetadataGate(reader *chain.Reader, repo *repository.ProjectRepository, verifier TokenVerifier) *MetadataGate {
	return &MetadataGate{reader: reader, repo: repo, verifier: verifier}
}

// CreateProject 以创建交易证明 owner 身份后写入元数据。
// projectId 与 owner 取自回执中的 ProjectCreated 事件，不接受客户端传入
func (g *MetadataGate) CreateProject(ctx context.Context, token string, req CreateMetadata) (*model.Project, error) {
	id, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	if req.missing() {
		return nil, model.NewValidationError(msgMissingFields)
	}

	txHash, ok := parseTxHash(req.TxHash)
	if !ok {
		return nil, model.ErrTxNotFound
	}
	created, err := g.reader.ProjectCreated(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if !id.OwnsAddress(created.Owner.Hex()) {
		logger.Warn("User %s submitted metadata for project %d owned by %s", id.UserId, created.ProjectId, created.Owner.Hex())
		return nil, model.ErrOwnerMismatch
	}

	onChain, err := g.reader.ProjectAt(ctx, created.ProjectId)
	if err != nil {
		return nil, err
	}

	record := &model.ProjectModel{
		ProjectId:   created.ProjectId,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.Image,
		Owner:       created.Owner.Hex(),
		TxHash:      txHash.Hex(),
	}
	if err := g.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	logger.Info("Project %d metadata created by %s", created.ProjectId, id.UserId)
	return Reconcile(onChain, record), nil
}

// UpdateProject 校验调用者绑定了项目链上 owner 地址后更新展示字段
func (g *MetadataGate) UpdateProject(ctx context.Context, token string, projectId uint64, fields model.ProjectMetadata) (*model.Project, error) {
	id, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	if fields.Missing() {
		return nil, model.NewValidationError(msgMissingFields)
	}

	onChain, err := g.reader.Project(ctx, projectId)
	if err != nil {
		return nil, err
	}

	if !id.OwnsAddress(onChain.Owner.Hex()) {
		logger.Warn("User %s attempted to edit project %d owned by %s", id.UserId, projectId, onChain.Owner.Hex())
		return nil, model.ErrOwnerMismatch
	}

	record, err := g.repo.Update(ctx, projectId, fields)
	if err != nil {
		return nil, err
	}

	logger.Info("Project %d metadata updated by %s", projectId, id.UserId)
	return Reconcile(onChain, record), nil
}

// parseTxHash 要求 0x 开头的 32 字节十六进制
func parseTxHash(s string) (common.Hash, bool) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(b), true
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
