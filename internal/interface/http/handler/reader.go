package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/domain/reader"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// ReaderHandler 读者HTTP处理器
type ReaderHandler struct {
	readers reader.Service
}

// NewReaderHandler 创建读者处理器
func NewReaderHandler(readers reader.Service) *ReaderHandler {
	return &ReaderHandler{readers: readers}
}

// ListReaders 查询全部读者
// @Summary      读者列表
// @Tags         读者
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.ReaderResponse}
// @Router       /api/v1/readers [get]
func (h *ReaderHandler) ListReaders(c *gin.Context) {
	readers, err := h.readers.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReaderList(readers))
}

// GetReader 查询读者
// @Summary      读者详情
// @Tags         读者
// @Produce      json
// @Param        id path int true "读者ID"
// @Success      200 {object} response.Response{data=dto.ReaderResponse}
// @Failure      404 {object} response.Response "读者不存在"
// @Router       /api/v1/readers/{id} [get]
func (h *ReaderHandler) GetReader(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	r, found, err := h.readers.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, reader.ErrReaderNotFound)
		return
	}
	response.Success(c, dto.NewReaderResponse(r))
}

// CreateReader 登记读者
// @Summary      登记读者
// @Tags         读者
// @Accept       json
// @Produce      json
// @Param        request body dto.ReaderRequest true "读者信息"
// @Success      201 {object} response.Response{data=dto.ReaderResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/readers [post]
func (h *ReaderHandler) CreateReader(c *gin.Context) {
	var req dto.ReaderRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.readers.Add(c.Request.Context(), reader.NewReader(req.Name, req.Email))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewReaderResponse(r))
}

// UpdateReader 修改读者
// @Summary      修改读者
// @Tags         读者
// @Accept       json
// @Produce      json
// @Param        id path int true "读者ID"
// @Param        request body dto.ReaderRequest true "读者信息"
// @Success      200 {object} response.Response{data=dto.ReaderResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "读者不存在"
// @Router       /api/v1/readers/{id} [put]
func (h *ReaderHandler) UpdateReader(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReaderRequest
	if !bindJSON(c, &req) {
		return
	}

	r, found, err := h.readers.Update(c.Request.Context(), id, req.Name, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, reader.ErrReaderNotFound)
		return
	}
	response.Success(c, dto.NewReaderResponse(r))
}

// DeleteReader 删除读者
// @Summary      删除读者
// @Tags         读者
// @Param        id path int true "读者ID"
// @Success      204
// @Failure      404 {object} response.Response "读者不存在"
// @Router       /api/v1/readers/{id} [delete]
func (h *ReaderHandler) DeleteReader(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.readers.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, reader.ErrReaderNotFound)
		return
	}
	response.NoContent(c)
}
