package reader

import (
	"context"
)

// Repository 读者仓储接口
// FindByID/Update/Delete找不到时返回ErrReaderNotFound
type Repository interface {
	Create(ctx context.Context, reader *Reader) error
	FindByID(ctx context.Context, id int) (*Reader, error)
	FindAll(ctx context.Context) ([]*Reader, error)
	Update(ctx context.Context, reader *Reader) error
	Delete(ctx context.Context, id int) error
}
