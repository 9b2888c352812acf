package handler

import (
	"errors"
	"net/http"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/PohSayKeong/fundl/internal/middleware"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidProjectId = "Invalid project id"
	msgInvalidBody      = "Invalid request body"
	msgInvalidAddress   = "Invalid address"
	msgInternal         = "Internal server error"
)

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: message})
}

// writeError 按错误类别映射状态码；上游错误只返回操作名，原因写入日志
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		ErrorResponse(c, http.StatusBadRequest, validation.Message)
		return
	}

	for _, m := range []struct {
		target error
		status int
	}{
		{model.ErrTxNotFound, http.StatusBadRequest},
		{model.ErrProjectNotFound, http.StatusNotFound},
		{model.ErrRecordNotFound, http.StatusNotFound},
		{model.ErrMissingToken, http.StatusUnauthorized},
		{model.ErrInvalidToken, http.StatusUnauthorized},
		{model.ErrOwnerMismatch, http.StatusForbidden},
		{model.ErrDuplicateProject, http.StatusConflict},
	} {
		if errors.Is(err, m.target) {
			ErrorResponse(c, m.status, m.target.Error())
			return
		}
	}

	logger.With(zap.String("request_id", c.GetString(middleware.ContextRequestId))).
		Error("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to "+upstream.Op)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, msgInternal)
}
