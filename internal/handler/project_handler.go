package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/PohSayKeong/fundl/internal/logic"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

const DefaultTokenHeader = "privy-id-token"

type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
	gate         *logic.MetadataGate
	tokenHeader  string
}

func NewProjectHandler(projectLogic *logic.ProjectLogic, gate *logic.MetadataGate, tokenHeader string) *ProjectHandler {
	if tokenHeader == "" {
		tokenHeader = DefaultTokenHeader
	}
	return &ProjectHandler{
		projectLogic: projectLogic,
		gate:         gate,
		tokenHeader:  tokenHeader,
	}
}

// parseProjectId 非负整数 id，失败时已写入响应。
// 超出 uint64 的整数不可能由合约计数器分配，按项目不存在处理
func parseProjectId(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			writeError(c, model.ErrProjectNotFound)
		} else {
			ErrorResponse(c, http.StatusBadRequest, msgInvalidProjectId)
		}
		return 0, false
	}
	return id, true
}

// bindBody 空请求体按全部字段缺失处理，交由业务层报告
func bindBody(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// GetProjects 获取项目列表，读取失败的项目位置为 null
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projectLogic.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseProjectId(c)
	if !ok {
		return
	}

	project, symbol, err := h.projectLogic.GetProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":     project,
		"tokenSymbol": symbol,
	})
}

// CreateProject 提交链上创建交易对应的元数据
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if !bindBody(c, &req) {
		return
	}

	project, err := h.gate.CreateProject(c.Request.Context(), c.GetHeader(h.tokenHeader), logic.CreateMetadata{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		TxHash:      req.TxHash,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"project": project,
	})
}

// UpdateProject 编辑项目展示字段
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseProjectId(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !bindBody(c, &req) {
		return
	}

	project, err := h.gate.UpdateProject(c.Request.Context(), c.GetHeader(h.tokenHeader), id, model.ProjectMetadata{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
	})
}

// GetRefundStatus 退款申请情况，address 可选
func (h *ProjectHandler) GetRefundStatus(c *gin.Context) {
	id, ok := parseProjectId(c)
	if !ok {
		return
	}

	var user *common.Address
	if address := c.Query("address"); address != "" {
		if !common.IsHexAddress(address) {
			ErrorResponse(c, http.StatusBadRequest, msgInvalidAddress)
			return
		}
		a := common.HexToAddress(address)
		user = &a
	}

	status, err := h.projectLogic.GetRefundStatus(c.Request.Context(), id, user)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetOwnerFunds 项目方可提取金额
func (h *ProjectHandler) GetOwnerFunds(c *gin.Context) {
	id, ok := parseProjectId(c)
	if !ok {
		return
	}

	funds, err := h.projectLogic.GetOwnerFunds(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, funds)
}
