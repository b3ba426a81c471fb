package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// Reconciler 对账
type Reconciler interface {
	Reconcile(ctx context.Context) (*lending.Report, error)
}

// AdminHandler 运维接口
type AdminHandler struct {
	reconciler Reconciler
}

// NewAdminHandler 创建运维处理器
func NewAdminHandler(reconciler Reconciler) *AdminHandler {
	return &AdminHandler{reconciler: reconciler}
}

// Reconcile 立即执行一次可借状态对账
// @Summary      可借状态对账
// @Description  按未归还的借阅记录修复图书的可借状态，并列出引用了不存在图书的借阅记录
// @Tags         运维
// @Produce      json
// @Success      200 {object} response.Response{data=dto.ReconcileResponse}
// @Router       /api/v1/admin/reconcile [post]
func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReconcileResponse(report))
}
