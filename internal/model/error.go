package model

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTuple   = errors.New("malformed project tuple")
	ErrProjectNotFound  = errors.New("Project not found")
	ErrRecordNotFound   = errors.New("Project metadata not found")
	ErrDuplicateProject = errors.New("Project metadata already exists")
	ErrMissingToken     = errors.New("Missing identity token")
	ErrInvalidToken     = errors.New("Invalid identity token")
	ErrTxNotFound       = errors.New("Transaction not found or contains no ProjectCreated event")
	ErrOwnerMismatch    = errors.New("Identity does not own the project owner address")
)

// ValidationError 请求参数错误，Message 指明字段
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建 ValidationError
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// UpstreamError 链节点或数据库不可用、超时
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream 包装上游错误；nil 原样返回
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}
