package reader

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/identity"
)

// Service 读者登记服务接口
type Service interface {
	// Add 登记读者,ID<=0时分配新ID
	Add(ctx context.Context, r *Reader) (*Reader, error)

	// GetByID 查询读者,ID非正或不存在时found=false
	GetByID(ctx context.Context, id int) (*Reader, bool, error)

	// GetAll 查询全部读者
	GetAll(ctx context.Context) ([]*Reader, error)

	// Update 修改姓名和邮箱
	Update(ctx context.Context, id int, name, email string) (*Reader, bool, error)

	// Delete 删除读者,已有借阅记录中的读者快照不受影响
	Delete(ctx context.Context, id int) (bool, error)
}

type service struct {
	repo Repository
	ids  *identity.Allocator
	log  *zap.Logger
}

// NewService 创建读者登记服务
func NewService(repo Repository, ids *identity.Allocator, log *zap.Logger) Service {
	return &service{
		repo: repo,
		ids:  ids,
		log:  log.Named("registry"),
	}
}

func (s *service) Add(ctx context.Context, r *Reader) (*Reader, error) {
	if r.ID > 0 {
		if err := s.ids.Observe(ctx, identity.Readers, r.ID); err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, r); err != nil {
			return nil, err
		}
	} else {
		_, err := s.ids.Create(ctx, identity.Readers, s.scanIDs, ErrDuplicateID,
			func(ctx context.Context, id int) error {
				r.ID = id
				return s.repo.Create(ctx, r)
			})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("读者已登记", zap.Int("reader_id", r.ID))
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Reader, bool, error) {
	if id <= 0 {
		return nil, false, nil
	}

	r, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrReaderNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (s *service) GetAll(ctx context.Context) ([]*Reader, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) Update(ctx context.Context, id int, name, email string) (*Reader, bool, error) {
	r, found, err := s.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}

	r.UpdateProfile(name, email)
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrReaderNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return r, true, nil
}

func (s *service) Delete(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrReaderNotFound) {
		s.log.Warn("删除的读者不存在", zap.Int("reader_id", id))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) scanIDs(ctx context.Context) ([]int, error) {
	readers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(readers))
	for i, r := range readers {
		ids[i] = r.ID
	}
	return ids, nil
}
