package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	engine *lending.Engine
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(engine *lending.Engine) *LoanHandler {
	return &LoanHandler{engine: engine}
}

// ListLoans 查询全部借阅记录
// @Summary      借阅记录列表
// @Tags         借阅
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans [get]
func (h *LoanHandler) ListLoans(c *gin.Context) {
	loans, err := h.engine.GetAllLoans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLoanList(loans))
}

// GetLoan 查询借阅记录
// @Summary      借阅记录详情
// @Tags         借阅
// @Produce      json
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	l, found, err := h.engine.GetLoanByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, loan.ErrLoanNotFound)
		return
	}
	response.Success(c, dto.NewLoanResponse(l))
}

// ListLoansByReader 查询读者的借阅记录
// @Summary      读者借阅记录
// @Tags         借阅
// @Produce      json
// @Param        readerId path int true "读者ID"
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/reader/{readerId} [get]
func (h *LoanHandler) ListLoansByReader(c *gin.Context) {
	readerID, ok := pathID(c, "readerId")
	if !ok {
		return
	}

	loans, err := h.engine.GetLoansByReaderID(c.Request.Context(), readerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLoanList(loans))
}

// ListLoansByBook 查询图书的借阅记录
// @Summary      图书借阅记录
// @Tags         借阅
// @Produce      json
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/book/{bookId} [get]
func (h *LoanHandler) ListLoansByBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	loans, err := h.engine.GetLoansByBookID(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLoanList(loans))
}

// Borrow 借书
// @Summary      借书
// @Description  图书可借且读者存在时创建借阅记录，并把图书置为不可借
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Param        request body dto.BorrowRequest true "借书信息"
// @Success      201 {object} response.Response{data=dto.LoanResponse}
// @Failure      400 {object} response.Response "参数错误或图书不可借"
// @Router       /api/v1/loans [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.BorrowRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. 调用借阅引擎
	l, ok, err := h.engine.Borrow(c.Request.Context(), req.BookID, req.ReaderID, req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 拒绝不区分原因
	if !ok {
		response.Error(c, lending.ErrBorrowRejected)
		return
	}

	response.Created(c, dto.NewLoanResponse(l))
}

// Return 还书
// @Summary      还书
// @Tags         借阅
// @Produce      json
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      400 {object} response.Response "借阅已归还"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// 1. 预检查：引擎对不存在和已归还都是静默空操作，接口层需要区分
	l, found, err := h.engine.GetLoanByID(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, loan.ErrLoanNotFound)
		return
	}
	if l.Returned {
		response.Error(c, loan.ErrLoanAlreadyReturned)
		return
	}

	// 2. 还书
	if err := h.engine.Return(ctx, id); err != nil {
		response.Error(c, err)
		return
	}

	// 3. 返回最新状态
	l, found, err = h.engine.GetLoanByID(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, loan.ErrLoanNotFound)
		return
	}
	response.Success(c, dto.NewLoanResponse(l))
}

// UpdateLoan 修改应还日期
// @Summary      修改借阅记录
// @Description  只能修改应还日期，借还状态只能通过借书/还书改变
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Param        id path int true "借阅ID"
// @Param        request body dto.UpdateLoanRequest true "应还日期"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id} [put]
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateLoanRequest
	if !bindJSON(c, &req) {
		return
	}

	l := &loan.Loan{ID: id, DueDate: req.DueDate}
	found, err := h.engine.UpdateLoan(c.Request.Context(), l)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, loan.ErrLoanNotFound)
		return
	}
	response.Success(c, dto.NewLoanResponse(l))
}

// DeleteLoan 删除借阅记录
// @Summary      删除借阅记录
// @Tags         借阅
// @Param        id path int true "借阅ID"
// @Success      204
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.engine.DeleteLoan(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, loan.ErrLoanNotFound)
		return
	}
	response.NoContent(c)
}
