package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
)

// =========================================
// 图书
// =========================================

type bookRepository struct {
	c collection[bookDocument]
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *mongo.Database) book.Repository {
	return &bookRepository{c: collection[bookDocument]{
		coll:      db.Collection(CollectionBooks),
		name:      "图书",
		notFound:  book.ErrBookNotFound,
		duplicate: book.ErrDuplicateID,
	}}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	return r.c.insert(ctx, toBookDocument(b))
}

func (r *bookRepository) FindByID(ctx context.Context, id int) (*book.Book, error) {
	doc, err := r.c.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.entity(), nil
}

func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	docs, err := r.c.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	books := make([]*book.Book, len(docs))
	for i := range docs {
		books[i] = docs[i].entity()
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	return r.c.replace(ctx, b.ID, toBookDocument(b))
}

func (r *bookRepository) Delete(ctx context.Context, id int) error {
	return r.c.delete(ctx, id)
}

// =========================================
// 读者
// =========================================

type readerRepository struct {
	c collection[readerDocument]
}

// NewReaderRepository 创建读者仓储
func NewReaderRepository(db *mongo.Database) reader.Repository {
	return &readerRepository{c: collection[readerDocument]{
		coll:      db.Collection(CollectionReaders),
		name:      "读者",
		notFound:  reader.ErrReaderNotFound,
		duplicate: reader.ErrDuplicateID,
	}}
}

func (r *readerRepository) Create(ctx context.Context, rd *reader.Reader) error {
	return r.c.insert(ctx, toReaderDocument(rd))
}

func (r *readerRepository) FindByID(ctx context.Context, id int) (*reader.Reader, error) {
	doc, err := r.c.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.entity(), nil
}

func (r *readerRepository) FindAll(ctx context.Context) ([]*reader.Reader, error) {
	docs, err := r.c.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	readers := make([]*reader.Reader, len(docs))
	for i := range docs {
		readers[i] = docs[i].entity()
	}
	return readers, nil
}

func (r *readerRepository) Update(ctx context.Context, rd *reader.Reader) error {
	return r.c.replace(ctx, rd.ID, toReaderDocument(rd))
}

func (r *readerRepository) Delete(ctx context.Context, id int) error {
	return r.c.delete(ctx, id)
}

// =========================================
// 借阅
// =========================================

type loanRepository struct {
	c collection[loanDocument]
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *mongo.Database) loan.Repository {
	return &loanRepository{c: collection[loanDocument]{
		coll:      db.Collection(CollectionLoans),
		name:      "借阅记录",
		notFound:  loan.ErrLoanNotFound,
		duplicate: loan.ErrDuplicateID,
	}}
}

func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	return r.c.insert(ctx, toLoanDocument(l))
}

func (r *loanRepository) FindByID(ctx context.Context, id int) (*loan.Loan, error) {
	doc, err := r.c.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.entity(), nil
}

func (r *loanRepository) FindAll(ctx context.Context) ([]*loan.Loan, error) {
	return r.find(ctx, bson.M{})
}

func (r *loanRepository) FindByReaderID(ctx context.Context, readerID int) ([]*loan.Loan, error) {
	return r.find(ctx, bson.M{"reader._id": readerID})
}

func (r *loanRepository) FindByBookID(ctx context.Context, bookID int) ([]*loan.Loan, error) {
	return r.find(ctx, bson.M{"book._id": bookID})
}

func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	return r.c.replace(ctx, l.ID, toLoanDocument(l))
}

func (r *loanRepository) Delete(ctx context.Context, id int) error {
	return r.c.delete(ctx, id)
}

func (r *loanRepository) find(ctx context.Context, filter bson.M) ([]*loan.Loan, error) {
	docs, err := r.c.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	loans := make([]*loan.Loan, len(docs))
	for i := range docs {
		loans[i] = docs[i].entity()
	}
	return loans, nil
}
