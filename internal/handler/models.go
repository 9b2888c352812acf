package handler

// 请求模型；字段缺失统一由业务层按空字符串处理

// CreateProjectRequest 链上创建完成后提交元数据
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	TxHash      string `json:"txHash"`
}

// UpdateProjectRequest 编辑项目展示字段
type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// ErrorBody 错误响应
type ErrorBody struct {
	Error string `json:"error"`
}
