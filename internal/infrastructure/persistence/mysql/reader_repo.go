package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/reader"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// readerRepository 读者仓储实现(MySQL)
type readerRepository struct {
	db *gorm.DB
}

// NewReaderRepository 创建读者仓储
func NewReaderRepository(db *gorm.DB) reader.Repository {
	return &readerRepository{db: db}
}

func (r *readerRepository) Create(ctx context.Context, rd *reader.Reader) error {
	model := &ReaderModel{ID: rd.ID, Name: rd.Name, Email: rd.Email}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return reader.ErrDuplicateID
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建读者失败")
	}
	return nil
}

func (r *readerRepository) FindByID(ctx context.Context, id int) (*reader.Reader, error) {
	var model ReaderModel
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reader.ErrReaderNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询读者失败")
	}
	return toReaderEntity(&model), nil
}

func (r *readerRepository) FindAll(ctx context.Context) ([]*reader.Reader, error) {
	var models []ReaderModel
	if err := conn(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询读者列表失败")
	}

	readers := make([]*reader.Reader, len(models))
	for i := range models {
		readers[i] = toReaderEntity(&models[i])
	}
	return readers, nil
}

func (r *readerRepository) Update(ctx context.Context, rd *reader.Reader) error {
	db := conn(ctx, r.db)
	result := db.Model(&ReaderModel{}).
		Where("id = ?", rd.ID).
		Updates(map[string]interface{}{
			"name":  rd.Name,
			"email": rd.Email,
		})
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "更新读者失败")
	}
	if result.RowsAffected == 0 {
		return exists(db, &ReaderModel{}, rd.ID, reader.ErrReaderNotFound)
	}
	return nil
}

func (r *readerRepository) Delete(ctx context.Context, id int) error {
	result := conn(ctx, r.db).Delete(&ReaderModel{}, id)
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "删除读者失败")
	}
	if result.RowsAffected == 0 {
		return reader.ErrReaderNotFound
	}
	return nil
}

func toReaderEntity(model *ReaderModel) *reader.Reader {
	return &reader.Reader{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
	}
}
