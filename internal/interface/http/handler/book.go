package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书目录HTTP处理器
type BookHandler struct {
	books book.Service
}

// NewBookHandler 创建图书处理器
func NewBookHandler(books book.Service) *BookHandler {
	return &BookHandler{books: books}
}

// ListBooks 查询全部图书
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.BookResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.books.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookList(books))
}

// GetBook 查询图书
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	b, found, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, book.ErrBookNotFound)
		return
	}
	response.Success(c, dto.NewBookResponse(b))
}

// CreateBook 添加图书
// @Summary      添加图书
// @Description  新书总是可借，ID由服务端分配
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. 调用领域服务
	b, err := h.books.Add(c.Request.Context(), book.NewBook(req.Title, req.Author, req.ISBN))
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 构建HTTP响应
	response.Created(c, dto.NewBookResponse(b))
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  只修改书名、作者、ISBN，不影响可借状态
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id path int true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}

	b, found, err := h.books.Update(c.Request.Context(), id, req.Title, req.Author, req.ISBN)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, book.ErrBookNotFound)
		return
	}
	response.Success(c, dto.NewBookResponse(b))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  不级联删除借阅记录
// @Tags         图书
// @Param        id path int true "图书ID"
// @Success      204
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.books.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, book.ErrBookNotFound)
		return
	}
	response.NoContent(c)
}
