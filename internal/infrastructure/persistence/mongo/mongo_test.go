package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
)

func TestLoanDocument_FieldNames(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	l := &loan.Loan{
		ID:         3,
		Book:       &book.Book{ID: 1, Title: "边城", Author: "沈从文", ISBN: "9787020024759"},
		Reader:     &reader.Reader{ID: 2, Name: "王五", Email: "wangwu@example.com"},
		BorrowDate: now,
		DueDate:    now.Add(time.Hour),
	}

	raw, err := bson.Marshal(toLoanDocument(l))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, key := range []string{"_id", "book", "reader", "borrow_date", "due_date", "return_date", "is_returned"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "边城", m["book"].(bson.M)["title"])
	assert.Equal(t, false, m["book"].(bson.M)["is_available"])

	var doc loanDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.entity()
	assert.Equal(t, 1, got.BookID())
	assert.Equal(t, "wangwu@example.com", got.Reader.Email)
	assert.Nil(t, got.ReturnDate)
}

func TestLoanDocument_MissingBook(t *testing.T) {
	raw, err := bson.Marshal(toLoanDocument(&loan.Loan{ID: 1}))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.NotContains(t, m, "book")

	var doc loanDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Nil(t, doc.entity().Book)
}

// testDB 连接LIBRARY_TEST_MONGO_URI指定的MongoDB，未设置时跳过
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("LIBRARY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("未设置LIBRARY_TEST_MONGO_URI，跳过MongoDB测试")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, Ping(ctx, client))

	db := client.Database(fmt.Sprintf("library_test_%d", time.Now().UnixNano()))
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestRepositories(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	books := NewBookRepository(db)
	readers := NewReaderRepository(db)
	loans := NewLoanRepository(db)

	b := book.NewBook("边城", "沈从文", "9787020024759")
	b.ID = 1
	require.NoError(t, books.Create(ctx, b))
	assert.ErrorIs(t, books.Create(ctx, b), book.ErrDuplicateID)

	r := reader.NewReader("王五", "wangwu@example.com")
	r.ID = 1
	require.NoError(t, readers.Create(ctx, r))

	b.MarkBorrowed()
	require.NoError(t, books.Update(ctx, b))
	got, err := books.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got.Available)

	l := loan.NewLoan(b, r, time.Now().UTC().Truncate(time.Millisecond), time.Now().Add(time.Hour))
	l.ID = 1
	require.NoError(t, loans.Create(ctx, l))

	byBook, err := loans.FindByBookID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byBook, 1)
	byReader, err := loans.FindByReaderID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byReader, 1)

	require.NoError(t, l.MarkReturned(time.Now()))
	require.NoError(t, loans.Update(ctx, l))
	stored, err := loans.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.Returned)
	assert.NotNil(t, stored.ReturnDate)

	require.NoError(t, books.Delete(ctx, 1))
	_, err = books.FindByID(ctx, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, readers.Delete(ctx, 2), reader.ErrReaderNotFound)
	assert.ErrorIs(t, loans.Update(ctx, &loan.Loan{ID: 42}), loan.ErrLoanNotFound)
}

func TestSequence(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seq := NewSequence(db)

	id, err := seq.Next(ctx, identity.Books)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	require.NoError(t, seq.Raise(ctx, identity.Books, 10))
	require.NoError(t, seq.Raise(ctx, identity.Books, 3))
	id, err = seq.Next(ctx, identity.Books)
	require.NoError(t, err)
	assert.Equal(t, 11, id)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int]bool)
	)
	for i := 0; i < 20; i++ {
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
	assert.Len(t, ids, 20)
}
