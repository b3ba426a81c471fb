package memory

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

type bookRepository struct {
	store *Store
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.books[b.ID]; exists {
		return book.ErrDuplicateID
	}
	r.store.books[b.ID] = b.Snapshot()
	r.store.writes.Add(1)
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id int) (*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b.Snapshot(), nil
}

func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	books := make([]*book.Book, 0, len(r.store.books))
	for _, id := range sortedKeys(r.store.books) {
		books = append(books, r.store.books[id].Snapshot())
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.store.books[b.ID] = b.Snapshot()
	r.store.writes.Add(1)
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.store.books, id)
	r.store.writes.Add(1)
	return nil
}
