package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/identity"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
)

func TestBookRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.BookRepository()

	b := book.NewBook("Go程序设计", "Kernighan", "9787111558422")
	b.ID = 2
	require.NoError(t, repo.Create(ctx, b))
	assert.ErrorIs(t, repo.Create(ctx, b), book.ErrDuplicateID)

	// 存储持有独立拷贝
	b.Title = "被调用方修改"
	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Go程序设计", got.Title)

	got.MarkBorrowed()
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, got.Available)

	require.NoError(t, repo.Delete(ctx, 2))
	_, err = repo.FindByID(ctx, 2)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 2), book.ErrBookNotFound)
	assert.ErrorIs(t, repo.Update(ctx, got), book.ErrBookNotFound)

	assert.Equal(t, int64(3), store.Writes())
}

func TestBookRepository_FindAllSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().BookRepository()

	for _, id := range []int{5, 1, 3} {
		b := book.NewBook("t", "a", "i")
		b.ID = id
		require.NoError(t, repo.Create(ctx, b))
	}

	books, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []int{1, 3, 5}, []int{books[0].ID, books[1].ID, books[2].ID})
}

func TestReaderRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().ReaderRepository()

	r := reader.NewReader("张三", "zhangsan@example.com")
	r.ID = 1
	require.NoError(t, repo.Create(ctx, r))
	assert.ErrorIs(t, repo.Create(ctx, r), reader.ErrDuplicateID)

	r.UpdateProfile("张三丰", "zsf@example.com")
	require.NoError(t, repo.Update(ctx, r))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "张三丰", got.Name)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, reader.ErrReaderNotFound)
}

func TestLoanRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().LoanRepository()

	now := time.Now()
	mk := func(id, bookID, readerID int) *loan.Loan {
		b := book.NewBook("t", "a", "i")
		b.ID = bookID
		r := reader.NewReader("n", "e@example.com")
		r.ID = readerID
		l := loan.NewLoan(b, r, now, now.Add(time.Hour))
		l.ID = id
		return l
	}

	require.NoError(t, repo.Create(ctx, mk(1, 10, 100)))
	require.NoError(t, repo.Create(ctx, mk(2, 11, 100)))
	require.NoError(t, repo.Create(ctx, mk(3, 10, 101)))
	orphan := mk(4, 0, 101)
	orphan.Book = nil
	require.NoError(t, repo.Create(ctx, orphan))

	byReader, err := repo.FindByReaderID(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, byReader, 2)

	byBook, err := repo.FindByBookID(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, byBook, 2)

	none, err := repo.FindByBookID(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Nil(t, all[3].Book)
}

func TestLoanRepository_ReturnDateIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().LoanRepository()

	b := book.NewBook("t", "a", "i")
	b.ID = 1
	r := reader.NewReader("n", "e@example.com")
	r.ID = 1
	l := loan.NewLoan(b, r, time.Now(), time.Now().Add(time.Hour))
	l.ID = 1
	require.NoError(t, l.MarkReturned(time.Now()))
	require.NoError(t, repo.Create(ctx, l))

	*l.ReturnDate = time.Time{}
	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnDate)
	assert.False(t, got.ReturnDate.IsZero())
}

func TestSequence(t *testing.T) {
	ctx := context.Background()
	seq := NewSequence()

	id, err := seq.Next(ctx, identity.Books)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	require.NoError(t, seq.Raise(ctx, identity.Books, 10))
	require.NoError(t, seq.Raise(ctx, identity.Books, 3)) // 只升不降

	id, err = seq.Next(ctx, identity.Books)
	require.NoError(t, err)
	assert.Equal(t, 11, id)

	// 实体之间互不影响
	id, err = seq.Next(ctx, identity.Readers)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore()
	_, err := store.BookRepository().FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}
