package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/identity"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Sequence 基于sequences表的ID计数器
// 每次分配在一个事务内执行 UPDATE value=value+1 再读取，行锁保证并发下不重复
type Sequence struct {
	db *gorm.DB
}

// NewSequence 创建计数器
func NewSequence(db *gorm.DB) *Sequence {
	return &Sequence{db: db}
}

// Next 计数器加一
func (s *Sequence) Next(ctx context.Context, entity identity.Entity) (int, error) {
	var next int
	err := conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, entity); err != nil {
			return err
		}
		if err := tx.Model(&SequenceModel{}).
			Where("name = ?", string(entity)).
			Update("value", gorm.Expr("value + 1")).Error; err != nil {
			return err
		}

		var model SequenceModel
		if err := tx.Where("name = ?", string(entity)).First(&model).Error; err != nil {
			return err
		}
		next = model.Value
		return nil
	})
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "分配ID失败")
	}
	return next, nil
}

// Raise 计数器不小于floor
func (s *Sequence) Raise(ctx context.Context, entity identity.Entity, floor int) error {
	err := conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, entity); err != nil {
			return err
		}
		// UPDATE sequences SET value = ? WHERE name = ? AND value < ?
		return tx.Model(&SequenceModel{}).
			Where("name = ? AND value < ?", string(entity), floor).
			Update("value", floor).Error
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新ID计数器失败")
	}
	return nil
}

// ensureRow 计数器行不存在时插入value=0的行
func ensureRow(tx *gorm.DB, entity identity.Entity) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&SequenceModel{Name: string(entity)}).Error
}
