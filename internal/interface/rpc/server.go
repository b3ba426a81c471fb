// Package rpc gRPC服务：标准健康检查与反射
//
// 健康状态由后台探针维护：按固定间隔Ping存储，失败时置为NOT_SERVING，
// 负载均衡和编排系统据此摘除实例。
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName 对外公布的服务名，空字符串表示整体状态
const ServiceName = "library.v1.Lending"

const (
	defaultHealthInterval = 10 * time.Second
	pingTimeout           = 3 * time.Second
)

// Pinger 存储探活
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server gRPC服务器
type Server struct {
	port     int
	interval time.Duration
	pinger   Pinger
	log      *zap.Logger

	srv    *grpc.Server
	health *health.Server
}

// NewServer 创建gRPC服务器
func NewServer(port int, interval time.Duration, pinger Pinger, log *zap.Logger) *Server {
	if interval <= 0 {
		interval = defaultHealthInterval
	}

	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(4*1024*1024),
		grpc.MaxSendMsgSize(4*1024*1024),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// 注册反射服务（用于grpcurl调试）
	reflection.Register(srv)

	return &Server{
		port:     port,
		interval: interval,
		pinger:   pinger,
		log:      log.Named("grpc"),
		srv:      srv,
		health:   hs,
	}
}

// Run 监听配置端口并阻塞到ctx结束，port为0时不启动
func (s *Server) Run(ctx context.Context) error {
	if s.port == 0 {
		s.log.Info("未配置gRPC端口，gRPC服务已禁用")
		return nil
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("监听gRPC端口失败: %w", err)
	}
	return s.Serve(ctx, lis)
}

// Serve 在指定listener上提供服务，ctx结束时优雅关闭
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	// 1. 先探测一次，避免启动后短暂对外报告SERVING
	s.probe(ctx)

	// 2. 后台探针
	probeCtx, stopProbe := context.WithCancel(ctx)
	defer stopProbe()
	go s.probeLoop(probeCtx)

	// 3. ctx结束时优雅关闭
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.srv.GracefulStop()
	}()

	s.log.Info("gRPC服务启动", zap.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC服务异常退出: %w", err)
	}
	s.log.Info("gRPC服务已停止")
	return nil
}

func (s *Server) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

// probe Ping存储并更新健康状态
func (s *Server) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("存储探活失败", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
