// Package router 组装Gin引擎：中间件与路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/validator"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	Book   *handler.BookHandler
	Reader *handler.ReaderHandler
	Loan   *handler.LoanHandler
	Admin  *handler.AdminHandler
	Health *handler.HealthHandler
}

// New 创建Gin引擎并注册路由
// 中间件顺序：Recovery → Logger → Metrics → RateLimit
// 健康检查和指标端点不限流
func New(cfg *config.Config, log *zap.Logger, h Handlers) (*gin.Engine, error) {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 自定义校验规则(future)
	if err := validator.Register(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Metrics(),
	)

	// 运维端点
	r.GET("/ping", h.Health.Ping)
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	// 访问 http://localhost:8080/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	{
		books := v1.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/:id", h.Book.GetBook)
			books.POST("", h.Book.CreateBook)
			books.PUT("/:id", h.Book.UpdateBook)
			books.DELETE("/:id", h.Book.DeleteBook)
		}

		readers := v1.Group("/readers")
		{
			readers.GET("", h.Reader.ListReaders)
			readers.GET("/:id", h.Reader.GetReader)
			readers.POST("", h.Reader.CreateReader)
			readers.PUT("/:id", h.Reader.UpdateReader)
			readers.DELETE("/:id", h.Reader.DeleteReader)
		}

		loans := v1.Group("/loans")
		{
			loans.GET("", h.Loan.ListLoans)
			loans.GET("/:id", h.Loan.GetLoan)
			loans.GET("/reader/:readerId", h.Loan.ListLoansByReader)
			loans.GET("/book/:bookId", h.Loan.ListLoansByBook)
			loans.POST("", h.Loan.Borrow)
			loans.POST("/:id/return", h.Loan.Return)
			loans.PUT("/:id", h.Loan.UpdateLoan)
			loans.DELETE("/:id", h.Loan.DeleteLoan)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/reconcile", h.Admin.Reconcile)
		}
	}

	return r, nil
}
