package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChainHealth 链连接状态
type ChainHealth interface {
	GetHealthStatus(ctx context.Context) map[string]interface{}
}

type HealthHandler struct {
	chain ChainHealth
}

func NewHealthHandler(chain ChainHealth) *HealthHandler {
	return &HealthHandler{chain: chain}
}

// Health 服务与链节点状态；节点不可达时仍返回 200，由 chain.client_status 体现
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": "fundl",
	}
	if h.chain != nil {
		body["chain"] = h.chain.GetHealthStatus(c.Request.Context())
	}
	c.JSON(http.StatusOK, body)
}
