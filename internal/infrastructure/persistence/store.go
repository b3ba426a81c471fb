// Package persistence 按配置打开存储后端
package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mongo"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
)

// Store 一个存储后端提供的全部仓储
type Store struct {
	Driver   string
	Books    book.Repository
	Readers  reader.Repository
	Loans    loan.Repository
	Sequence identity.Sequence

	// TxManager 仅MySQL后端非nil
	TxManager *mysql.TxManager

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping 检查存储是否可用（健康检查）
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close 释放连接
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open 按storage.driver打开存储
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	log = log.Named("storage")

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("使用内存存储，重启后数据丢失")
		return NewMemoryStore(memory.NewStore()), nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:   config.DriverMongo,
			Books:    mongo.NewBookRepository(db),
			Readers:  mongo.NewReaderRepository(db),
			Loans:    mongo.NewLoanRepository(db),
			Sequence: mongo.NewSequence(db),
			ping: func(ctx context.Context) error {
				return mongo.Ping(ctx, client)
			},
			close: client.Disconnect,
		}, nil

	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	}

	return nil, fmt.Errorf("未知的存储后端: %q", cfg.Storage.Driver)
}

// NewMemoryStore 包装内存存储
func NewMemoryStore(s *memory.Store) *Store {
	return &Store{
		Driver:   config.DriverMemory,
		Books:    s.BookRepository(),
		Readers:  s.ReaderRepository(),
		Loans:    s.LoanRepository(),
		Sequence: s.Sequence(),
		ping:     s.Ping,
	}
}

// NewGormStore 包装GORM连接（MySQL，测试中也可以是SQLite）
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Driver:    config.DriverMySQL,
		Books:     mysql.NewBookRepository(db),
		Readers:   mysql.NewReaderRepository(db),
		Loans:     mysql.NewLoanRepository(db),
		Sequence:  mysql.NewSequence(db),
		TxManager: mysql.NewTxManager(db),
		ping: func(ctx context.Context) error {
			return mysql.Ping(ctx, db)
		},
		close: func(context.Context) error {
			return mysql.Close(db)
		},
	}
}
