package mysql

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
)

// setupTestDB 用SQLite代替MySQL测试GORM仓储
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// SQLite只允许一个写者
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestBookRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(setupTestDB(t))

	b := book.NewBook("活着", "余华", "9787506365437")
	b.ID = 3
	require.NoError(t, repo.Create(ctx, b))
	assert.ErrorIs(t, repo.Create(ctx, b), book.ErrDuplicateID)

	got, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	// 零值字段(Available=false)也要写入
	got.MarkBorrowed()
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.False(t, got.Available)

	// 值未变化的更新不报错
	require.NoError(t, repo.Update(ctx, got))

	missing := book.NewBook("x", "y", "z")
	missing.ID = 99
	assert.ErrorIs(t, repo.Update(ctx, missing), book.ErrBookNotFound)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	require.NoError(t, repo.Delete(ctx, 3))
	assert.ErrorIs(t, repo.Delete(ctx, 3), book.ErrBookNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReaderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(setupTestDB(t))

	for _, id := range []int{2, 1} {
		r := reader.NewReader("读者", "reader@example.com")
		r.ID = id
		require.NoError(t, repo.Create(ctx, r))
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)

	r := all[1]
	r.UpdateProfile("新名字", "new@example.com")
	require.NoError(t, repo.Update(ctx, r))

	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "新名字", got.Name)

	require.NoError(t, repo.Delete(ctx, 2))
	_, err = repo.FindByID(ctx, 2)
	assert.ErrorIs(t, err, reader.ErrReaderNotFound)
}

func TestLoanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLoanRepository(setupTestDB(t))

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &book.Book{ID: 7, Title: "围城", Author: "钱钟书", ISBN: "9787020090006"}
	r := &reader.Reader{ID: 8, Name: "李四", Email: "lisi@example.com"}
	l := loan.NewLoan(b, r, now, now.Add(24*time.Hour))
	l.ID = 1
	require.NoError(t, repo.Create(ctx, l))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, got.BookID())
	assert.Equal(t, "围城", got.Book.Title)
	assert.Equal(t, "lisi@example.com", got.Reader.Email)
	assert.True(t, now.Equal(got.BorrowDate))
	assert.Nil(t, got.ReturnDate)

	// 归还后整体替换
	require.NoError(t, got.MarkReturned(now.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Returned)
	require.NotNil(t, got.ReturnDate)
	assert.True(t, got.Book.Available)

	// 没有图书快照的记录
	legacy := &loan.Loan{ID: 2, Reader: r, BorrowDate: now, DueDate: now}
	require.NoError(t, repo.Create(ctx, legacy))
	got, err = repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got.Book)

	byBook, err := repo.FindByBookID(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, byBook, 1)

	byReader, err := repo.FindByReaderID(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, byReader, 2)

	assert.ErrorIs(t, repo.Create(ctx, legacy), loan.ErrDuplicateID)
	require.NoError(t, repo.Delete(ctx, 2))
	assert.ErrorIs(t, repo.Delete(ctx, 2), loan.ErrLoanNotFound)
	assert.ErrorIs(t, repo.Update(ctx, legacy), loan.ErrLoanNotFound)
}

func TestTxManager_RollbackAcrossTables(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	books := NewBookRepository(db)
	loans := NewLoanRepository(db)
	txm := NewTxManager(db)

	b := book.NewBook("平凡的世界", "路遥", "9787530216781")
	b.ID = 1
	require.NoError(t, books.Create(ctx, b))

	boom := errors.New("写入借阅记录失败")
	err := txm.Transaction(ctx, func(ctx context.Context) error {
		b.MarkBorrowed()
		if err := books.Update(ctx, b); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := books.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Available, "事务回滚后图书仍可借")

	// 提交的事务两张表都可见
	err = txm.Transaction(ctx, func(ctx context.Context) error {
		if err := books.Update(ctx, b); err != nil {
			return err
		}
		l := loan.NewLoan(b, &reader.Reader{ID: 1}, time.Now(), time.Now().Add(time.Hour))
		l.ID = 1
		return loans.Create(ctx, l)
	})
	require.NoError(t, err)
	_, err = loans.FindByID(ctx, 1)
	assert.NoError(t, err)
}

func TestSequence(t *testing.T) {
	ctx := context.Background()
	seq := NewSequence(setupTestDB(t))

	id, err := seq.Next(ctx, identity.Books)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	require.NoError(t, seq.Raise(ctx, identity.Books, 20))
	require.NoError(t, seq.Raise(ctx, identity.Books, 5))
	id, err = seq.Next(ctx, identity.Books)
	require.NoError(t, err)
	assert.Equal(t, 21, id)

	require.NoError(t, seq.Raise(ctx, identity.Readers, 4))
	id, err = seq.Next(ctx, identity.Readers)
	require.NoError(t, err)
	assert.Equal(t, 5, id)
}

func TestSequence_Concurrent(t *testing.T) {
	ctx := context.Background()
	seq := NewSequence(setupTestDB(t))

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := seq.Next(ctx, identity.Loans)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, ids, n)
}
