package dto

import (
	"github.com/xiebiao/library/internal/domain/reader"
)

// ReaderRequest 登记/修改读者请求
type ReaderRequest struct {
	Name  string `json:"name" binding:"required,max=100" example:"张三"`
	Email string `json:"email" binding:"required,email,max=200" example:"zhangsan@example.com"`
}

// ReaderResponse 读者响应
type ReaderResponse struct {
	ID    int    `json:"id" example:"1"`
	Name  string `json:"name" example:"张三"`
	Email string `json:"email" example:"zhangsan@example.com"`
}

// NewReaderResponse 领域对象 → 响应，r为nil时返回nil
func NewReaderResponse(r *reader.Reader) *ReaderResponse {
	if r == nil {
		return nil
	}
	return &ReaderResponse{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
	}
}

// NewReaderList 读者列表响应
func NewReaderList(readers []*reader.Reader) []*ReaderResponse {
	list := make([]*ReaderResponse, 0, len(readers))
	for _, r := range readers {
		list = append(list, NewReaderResponse(r))
	}
	return list
}
