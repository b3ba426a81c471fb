package mysql

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 2. 连接数据库
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 3. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 4. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("dbname", cfg.Database.DBName))

	// 5. 自动迁移表结构
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Migrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&ReaderModel{},
		&LoanModel{},
		&SequenceModel{},
	)
}

// Ping 检查数据库连接
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BookModel GORM图书模型
// 设计说明:
// 1. ID由应用分配(identity.Allocator),不使用自增
// 2. is_available有索引,对账时按状态扫描
type BookModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	Title     string    `gorm:"size:200;not null;comment:书名"`
	Author    string    `gorm:"size:100;not null;comment:作者"`
	ISBN      string    `gorm:"column:isbn;size:20;not null;comment:ISBN号"`
	Available bool      `gorm:"column:is_available;index;not null;comment:是否可借"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReaderModel GORM读者模型
type ReaderModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:100;not null;comment:姓名"`
	Email     string    `gorm:"size:200;not null;comment:邮箱"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReaderModel) TableName() string {
	return "readers"
}

// LoanModel GORM借阅模型
// 设计说明:
// 1. 图书、读者快照平铺在借阅行中(借出时刻的值),不做外键关联
// 2. BookID/ReaderID为NULL表示快照缺失
type LoanModel struct {
	ID            int        `gorm:"primaryKey;autoIncrement:false"`
	BookID        *int       `gorm:"index;comment:图书ID"`
	BookTitle     string     `gorm:"size:200;comment:书名快照"`
	BookAuthor    string     `gorm:"size:100;comment:作者快照"`
	BookISBN      string     `gorm:"column:book_isbn;size:20;comment:ISBN快照"`
	BookAvailable bool       `gorm:"comment:快照中的可借状态"`
	ReaderID      *int       `gorm:"index;comment:读者ID"`
	ReaderName    string     `gorm:"size:100;comment:姓名快照"`
	ReaderEmail   string     `gorm:"size:200;comment:邮箱快照"`
	BorrowDate    time.Time  `gorm:"not null;comment:借出时间"`
	DueDate       time.Time  `gorm:"not null;comment:应还时间"`
	ReturnDate    *time.Time `gorm:"comment:归还时间"`
	Returned      bool       `gorm:"column:is_returned;index;not null;comment:是否已归还"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}

// SequenceModel ID计数器,每个实体一行
type SequenceModel struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value int    `gorm:"not null;default:0"`
}

// TableName 指定表名
func (SequenceModel) TableName() string {
	return "sequences"
}
