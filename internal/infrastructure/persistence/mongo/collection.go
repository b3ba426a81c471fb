package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// collection 三个实体集合共用的CRUD
// D为文档类型，notFound/duplicate为对应实体包的哨兵错误
type collection[D any] struct {
	coll      *mongo.Collection
	name      string
	notFound  error
	duplicate error
}

func (c *collection[D]) insert(ctx context.Context, doc *D) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.duplicate
		}
		return c.wrap(err, "写入失败")
	}
	return nil
}

func (c *collection[D]) findByID(ctx context.Context, id int) (*D, error) {
	var doc D
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, c.notFound
	}
	if err != nil {
		return nil, c.wrap(err, "查询失败")
	}
	return &doc, nil
}

// find 按_id升序返回符合条件的文档
func (c *collection[D]) find(ctx context.Context, filter bson.M) ([]D, error) {
	cursor, err := c.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, c.wrap(err, "查询失败")
	}

	docs := make([]D, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, c.wrap(err, "读取结果失败")
	}
	return docs, nil
}

// replace 整体替换文档（无版本字段，后写者覆盖）
func (c *collection[D]) replace(ctx context.Context, id int, doc *D) error {
	result, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return c.wrap(err, "更新失败")
	}
	if result.MatchedCount == 0 {
		return c.notFound
	}
	return nil
}

func (c *collection[D]) delete(ctx context.Context, id int) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return c.wrap(err, "删除失败")
	}
	if result.DeletedCount == 0 {
		return c.notFound
	}
	return nil
}

func (c *collection[D]) wrap(err error, action string) error {
	return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, c.name+action)
}
