package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅仓储实现(MySQL)
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	if err := conn(ctx, r.db).Create(toLoanModel(l)).Error; err != nil {
		if isDuplicateError(err) {
			return loan.ErrDuplicateID
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建借阅记录失败")
	}
	return nil
}

func (r *loanRepository) FindByID(ctx context.Context, id int) (*loan.Loan, error) {
	var model LoanModel
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询借阅记录失败")
	}
	return toLoanEntity(&model), nil
}

func (r *loanRepository) FindAll(ctx context.Context) ([]*loan.Loan, error) {
	return r.find(conn(ctx, r.db))
}

func (r *loanRepository) FindByReaderID(ctx context.Context, readerID int) ([]*loan.Loan, error) {
	return r.find(conn(ctx, r.db).Where("reader_id = ?", readerID))
}

func (r *loanRepository) FindByBookID(ctx context.Context, bookID int) ([]*loan.Loan, error) {
	return r.find(conn(ctx, r.db).Where("book_id = ?", bookID))
}

// Update 整体替换借阅记录
func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	db := conn(ctx, r.db)
	// Select("*")保证零值字段(is_returned=false、return_date=NULL)也被写入
	result := db.Model(&LoanModel{ID: l.ID}).Select("*").Omit("id").Updates(toLoanModel(l))
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "更新借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return exists(db, &LoanModel{}, l.ID, loan.ErrLoanNotFound)
	}
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id int) error {
	result := conn(ctx, r.db).Delete(&LoanModel{}, id)
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "删除借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrLoanNotFound
	}
	return nil
}

func (r *loanRepository) find(query *gorm.DB) ([]*loan.Loan, error) {
	var models []LoanModel
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询借阅记录失败")
	}

	loans := make([]*loan.Loan, len(models))
	for i := range models {
		loans[i] = toLoanEntity(&models[i])
	}
	return loans, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toLoanModel(l *loan.Loan) *LoanModel {
	model := &LoanModel{
		ID:         l.ID,
		BorrowDate: l.BorrowDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
	}
	if b := l.Book; b != nil {
		id := b.ID
		model.BookID = &id
		model.BookTitle = b.Title
		model.BookAuthor = b.Author
		model.BookISBN = b.ISBN
		model.BookAvailable = b.Available
	}
	if rd := l.Reader; rd != nil {
		id := rd.ID
		model.ReaderID = &id
		model.ReaderName = rd.Name
		model.ReaderEmail = rd.Email
	}
	return model
}

func toLoanEntity(model *LoanModel) *loan.Loan {
	l := &loan.Loan{
		ID:         model.ID,
		BorrowDate: model.BorrowDate,
		DueDate:    model.DueDate,
		ReturnDate: model.ReturnDate,
		Returned:   model.Returned,
	}
	if model.BookID != nil {
		l.Book = &book.Book{
			ID:        *model.BookID,
			Title:     model.BookTitle,
			Author:    model.BookAuthor,
			ISBN:      model.BookISBN,
			Available: model.BookAvailable,
		}
	}
	if model.ReaderID != nil {
		l.Reader = &reader.Reader{
			ID:    *model.ReaderID,
			Name:  model.ReaderName,
			Email: model.ReaderEmail,
		}
	}
	return l
}
