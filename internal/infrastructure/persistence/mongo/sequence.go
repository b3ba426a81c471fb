package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiebiao/library/internal/domain/identity"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Sequence 基于sequences集合的ID计数器
// 单文档的$inc是原子的，多实例共享同一计数器
type Sequence struct {
	coll *mongo.Collection
}

// NewSequence 创建计数器
func NewSequence(db *mongo.Database) *Sequence {
	return &Sequence{coll: db.Collection(CollectionSequences)}
}

// Next 计数器加一
// findOneAndUpdate({_id: entity}, {$inc: {value: 1}}, {upsert: true, returnDocument: after})
func (s *Sequence) Next(ctx context.Context, entity identity.Entity) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc sequenceDocument
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": string(entity)},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "分配ID失败")
	}
	return doc.Value, nil
}

// Raise 计数器不小于floor
// updateOne({_id: entity}, {$max: {value: floor}}, {upsert: true})
func (s *Sequence) Raise(ctx context.Context, entity identity.Entity, floor int) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": string(entity)},
		bson.M{"$max": bson.M{"value": floor}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新ID计数器失败")
	}
	return nil
}
