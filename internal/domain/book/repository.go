package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(mongo/mysql/memory)
// 2. FindByID找不到时返回ErrBookNotFound,其他错误均为存储错误
// 3. Update是整文档替换,文档不存在时返回ErrBookNotFound
type Repository interface {
	// Create 插入图书,ID必须已分配
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id int) (*Book, error)

	// FindAll 查询全部图书(按ID升序)
	FindAll(ctx context.Context) ([]*Book, error)

	// Update 替换图书
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书,不存在时返回ErrBookNotFound
	Delete(ctx context.Context, id int) error
}
