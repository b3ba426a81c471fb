package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/reader"
)

func newTestLoan() *Loan {
	b := book.NewBook("Go语言圣经", "Alan Donovan", "9787111558422")
	b.ID = 1
	b.MarkBorrowed()
	r := reader.NewReader("张三", "zhangsan@example.com")
	r.ID = 7

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return NewLoan(b, r, now, now.Add(14*24*time.Hour))
}

func TestNewLoan_Snapshots(t *testing.T) {
	b := book.NewBook("原书名", "作者", "isbn")
	b.ID = 3
	r := reader.NewReader("李四", "lisi@example.com")
	r.ID = 4

	l := NewLoan(b, r, time.Now(), time.Now().Add(time.Hour))

	// 修改原对象不影响快照
	b.UpdateInfo("新书名", "作者", "isbn")
	r.UpdateProfile("王五", "wangwu@example.com")

	assert.Equal(t, "原书名", l.Book.Title)
	assert.Equal(t, "李四", l.Reader.Name)
	assert.Equal(t, 3, l.BookID())
	assert.Equal(t, 4, l.ReaderID())
	assert.Equal(t, StatusActive, l.Status())
	assert.Nil(t, l.ReturnDate)
}

func TestLoan_MarkReturned(t *testing.T) {
	l := newTestLoan()
	at := l.BorrowDate.Add(48 * time.Hour)

	require.NoError(t, l.MarkReturned(at))
	assert.True(t, l.Returned)
	require.NotNil(t, l.ReturnDate)
	assert.Equal(t, at, *l.ReturnDate)
	assert.True(t, l.Book.Available, "快照中的图书应标记为可借")
	assert.Equal(t, StatusReturned, l.Status())

	// 不可重复归还
	err := l.MarkReturned(at.Add(time.Hour))
	assert.ErrorIs(t, err, ErrLoanAlreadyReturned)
	assert.Equal(t, at, *l.ReturnDate)
}

func TestLoan_MarkReturned_NilBook(t *testing.T) {
	l := newTestLoan()
	l.Book = nil

	require.NoError(t, l.MarkReturned(time.Now()))
	assert.Equal(t, 0, l.BookID())
}

func TestLoan_IsOverdue(t *testing.T) {
	l := newTestLoan()

	assert.False(t, l.IsOverdue(l.DueDate.Add(-time.Minute)))
	assert.True(t, l.IsOverdue(l.DueDate.Add(time.Minute)))

	require.NoError(t, l.MarkReturned(l.DueDate.Add(time.Hour)))
	assert.False(t, l.IsOverdue(l.DueDate.Add(48*time.Hour)), "已归还的记录不算逾期")
}

func TestLoan_KeepLifecycleOf(t *testing.T) {
	stored := newTestLoan()
	stored.ID = 9

	newDue := stored.DueDate.Add(7 * 24 * time.Hour)
	patch := &Loan{ID: 100, Returned: true, DueDate: newDue}
	patch.KeepLifecycleOf(stored)

	assert.Equal(t, 9, patch.ID)
	assert.False(t, patch.Returned)
	assert.Nil(t, patch.ReturnDate)
	assert.Equal(t, newDue, patch.DueDate)
	assert.Equal(t, stored.BorrowDate, patch.BorrowDate)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "借出中", StatusActive.String())
	assert.Equal(t, "已归还", StatusReturned.String())
	assert.Equal(t, "未知状态", Status(0).String())
}
