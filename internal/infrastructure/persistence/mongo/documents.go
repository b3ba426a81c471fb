package mongo

import (
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
)

// bookDocument books集合文档
type bookDocument struct {
	ID        int    `bson:"_id"`
	Title     string `bson:"title"`
	Author    string `bson:"author"`
	ISBN      string `bson:"isbn"`
	Available bool   `bson:"is_available"`
}

// readerDocument readers集合文档
type readerDocument struct {
	ID    int    `bson:"_id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

// loanDocument loans集合文档
// book/reader是借出时刻的内嵌快照，缺失时不写入该字段
type loanDocument struct {
	ID         int             `bson:"_id"`
	Book       *bookDocument   `bson:"book,omitempty"`
	Reader     *readerDocument `bson:"reader,omitempty"`
	BorrowDate time.Time       `bson:"borrow_date"`
	DueDate    time.Time       `bson:"due_date"`
	ReturnDate *time.Time      `bson:"return_date"`
	Returned   bool            `bson:"is_returned"`
}

// sequenceDocument sequences集合文档，_id为实体名
type sequenceDocument struct {
	ID    string `bson:"_id"`
	Value int    `bson:"value"`
}

func toBookDocument(b *book.Book) *bookDocument {
	if b == nil {
		return nil
	}
	return &bookDocument{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Available: b.Available,
	}
}

func (d *bookDocument) entity() *book.Book {
	if d == nil {
		return nil
	}
	return &book.Book{
		ID:        d.ID,
		Title:     d.Title,
		Author:    d.Author,
		ISBN:      d.ISBN,
		Available: d.Available,
	}
}

func toReaderDocument(r *reader.Reader) *readerDocument {
	if r == nil {
		return nil
	}
	return &readerDocument{ID: r.ID, Name: r.Name, Email: r.Email}
}

func (d *readerDocument) entity() *reader.Reader {
	if d == nil {
		return nil
	}
	return &reader.Reader{ID: d.ID, Name: d.Name, Email: d.Email}
}

func toLoanDocument(l *loan.Loan) *loanDocument {
	return &loanDocument{
		ID:         l.ID,
		Book:       toBookDocument(l.Book),
		Reader:     toReaderDocument(l.Reader),
		BorrowDate: l.BorrowDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
	}
}

func (d *loanDocument) entity() *loan.Loan {
	return &loan.Loan{
		ID:         d.ID,
		Book:       d.Book.entity(),
		Reader:     d.Reader.entity(),
		BorrowDate: d.BorrowDate,
		DueDate:    d.DueDate,
		ReturnDate: d.ReturnDate,
		Returned:   d.Returned,
	}
}
