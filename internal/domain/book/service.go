package book

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/pkg/lock"
)

// Service 图书目录服务接口
// 设计说明:
// 1. 目录维护是仓储的薄封装,附加ID分配和"找不到"语义
// 2. 写操作持有图书锁,与借还书串行,避免覆盖可借状态
type Service interface {
	// Add 添加图书
	// ID<=0时分配新ID;ID>0时原样使用(不查重,唯一约束由存储保证)
	// 新书总是可借
	Add(ctx context.Context, b *Book) (*Book, error)

	// GetByID 查询图书,ID非正或不存在时found=false
	GetByID(ctx context.Context, id int) (*Book, bool, error)

	// GetAll 查询全部图书
	GetAll(ctx context.Context) ([]*Book, error)

	// Update 修改书名、作者、ISBN
	Update(ctx context.Context, id int, title, author, isbn string) (*Book, bool, error)

	// Delete 删除图书,不级联删除借阅记录
	Delete(ctx context.Context, id int) (bool, error)
}

// service 图书目录服务实现
type service struct {
	repo   Repository
	ids    *identity.Allocator
	locker lock.Locker
	log    *zap.Logger
}

// NewService 创建图书目录服务
func NewService(repo Repository, ids *identity.Allocator, locker lock.Locker, log *zap.Logger) Service {
	return &service{
		repo:   repo,
		ids:    ids,
		locker: locker,
		log:    log.Named("catalog"),
	}
}

// Add 添加图书
func (s *service) Add(ctx context.Context, b *Book) (*Book, error) {
	// 1. 新书可借
	b.Available = true

	// 2. 调用方自带ID时登记后直接写入，重复由存储拒绝；否则分配ID写入
	if b.ID > 0 {
		if err := s.ids.Observe(ctx, identity.Books, b.ID); err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, b); err != nil {
			return nil, err
		}
	} else {
		_, err := s.ids.Create(ctx, identity.Books, s.scanIDs, ErrDuplicateID,
			func(ctx context.Context, id int) error {
				b.ID = id
				return s.repo.Create(ctx, b)
			})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("图书已添加", zap.Int("book_id", b.ID), zap.String("title", b.Title))
	return b, nil
}

// GetByID 查询图书
func (s *service) GetByID(ctx context.Context, id int) (*Book, bool, error) {
	if id <= 0 {
		return nil, false, nil
	}

	b, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrBookNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// GetAll 查询全部图书
func (s *service) GetAll(ctx context.Context) ([]*Book, error) {
	return s.repo.FindAll(ctx)
}

// Update 修改目录信息
func (s *service) Update(ctx context.Context, id int, title, author, isbn string) (*Book, bool, error) {
	if id <= 0 {
		return nil, false, nil
	}

	unlock, err := s.locker.Lock(ctx, lock.BookKey(id))
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	// 1. 锁内读取最新文档(可借状态以存储为准)
	b, found, err := s.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}

	// 2. 只修改目录字段
	b.UpdateInfo(title, author, isbn)

	// 3. 持久化
	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Delete 删除图书
func (s *service) Delete(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	unlock, err := s.locker.Lock(ctx, lock.BookKey(id))
	if err != nil {
		return false, err
	}
	defer unlock()

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, ErrBookNotFound) {
		s.log.Warn("删除的图书不存在", zap.Int("book_id", id))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scanIDs 扫描已有图书ID,供分配器首次播种
func (s *service) scanIDs(ctx context.Context) ([]int, error) {
	books, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids, nil
}
