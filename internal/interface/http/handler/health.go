package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// Pinger 存储探活
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	store  Pinger
	driver string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(store Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

// Ping 存活检查，不访问存储
func (h *HealthHandler) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "pong",
	})
}

// Health 就绪检查，存储不可用时返回503
// @Summary      健康检查
// @Tags         运维
// @Produce      json
// @Success      200 {object} response.Response
// @Failure      503 {object} response.Response "存储不可用"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.Error(c, apperrors.WrapCode(err, apperrors.ErrCodeUnavailable, "存储不可用"))
		return
	}
	response.Success(c, gin.H{
		"status":  "healthy",
		"storage": h.driver,
	})
}
