package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// 集合名称
const (
	CollectionBooks     = "books"
	CollectionReaders   = "readers"
	CollectionLoans     = "loans"
	CollectionSequences = "sequences"
)

// Connect 连接MongoDB并创建索引
// 设计说明：
// 1. 连接后立即Ping，启动阶段就暴露配置错误
// 2. 借阅集合按图书ID、读者ID建索引，支撑按书/按读者查询和对账
func Connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("MongoDB连接测试失败: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("创建索引失败: %w", err)
	}

	log.Info("MongoDB连接成功", zap.String("database", cfg.Database))
	return client, db, nil
}

// EnsureIndexes 创建借阅集合的索引（幂等）
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionLoans).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "book._id", Value: 1}, {Key: "is_returned", Value: 1}}},
		{Keys: bson.D{{Key: "reader._id", Value: 1}}},
	})
	return err
}

// Ping 检查连接
func Ping(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, readpref.Primary())
}
