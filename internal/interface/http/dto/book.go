package dto

import (
	"github.com/xiebiao/library/internal/domain/book"
)

// BookRequest 添加/修改图书请求
// 可借状态不能通过目录接口修改，只由借还书流程维护
type BookRequest struct {
	Title  string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	ISBN   string `json:"isbn" binding:"required,max=20" example:"9787115428028"`
}

// BookResponse 图书响应
type BookResponse struct {
	ID        int    `json:"id" example:"1"`
	Title     string `json:"title" example:"Go语言实战"`
	Author    string `json:"author" example:"威廉·肯尼迪"`
	ISBN      string `json:"isbn" example:"9787115428028"`
	Available bool   `json:"available" example:"true"`
}

// NewBookResponse 领域对象 → 响应，b为nil时返回nil
func NewBookResponse(b *book.Book) *BookResponse {
	if b == nil {
		return nil
	}
	return &BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Available: b.Available,
	}
}

// NewBookList 图书列表响应，空列表返回[]而不是null
func NewBookList(books []*book.Book) []*BookResponse {
	list := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		list = append(list, NewBookResponse(b))
	}
	return list
}
