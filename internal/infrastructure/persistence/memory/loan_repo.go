package memory

import (
	"context"

	"github.com/xiebiao/library/internal/domain/loan"
)

type loanRepository struct {
	store *Store
}

func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.loans[l.ID]; exists {
		return loan.ErrDuplicateID
	}
	r.store.loans[l.ID] = copyLoan(l)
	r.store.writes.Add(1)
	return nil
}

func (r *loanRepository) FindByID(ctx context.Context, id int) (*loan.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	l, ok := r.store.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	return copyLoan(l), nil
}

func (r *loanRepository) FindAll(ctx context.Context) ([]*loan.Loan, error) {
	return r.filter(ctx, func(*loan.Loan) bool { return true })
}

func (r *loanRepository) FindByReaderID(ctx context.Context, readerID int) ([]*loan.Loan, error) {
	return r.filter(ctx, func(l *loan.Loan) bool { return l.ReaderID() == readerID })
}

func (r *loanRepository) FindByBookID(ctx context.Context, bookID int) ([]*loan.Loan, error) {
	return r.filter(ctx, func(l *loan.Loan) bool { return l.BookID() == bookID })
}

func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.loans[l.ID]; !ok {
		return loan.ErrLoanNotFound
	}
	r.store.loans[l.ID] = copyLoan(l)
	r.store.writes.Add(1)
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.loans[id]; !ok {
		return loan.ErrLoanNotFound
	}
	delete(r.store.loans, id)
	r.store.writes.Add(1)
	return nil
}

func (r *loanRepository) filter(ctx context.Context, keep func(*loan.Loan) bool) ([]*loan.Loan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loans := make([]*loan.Loan, 0)
	for _, id := range sortedKeys(r.store.loans) {
		if l := r.store.loans[id]; keep(l) {
			loans = append(loans, copyLoan(l))
		}
	}
	return loans, nil
}
