package memory

import (
	"context"

	"github.com/xiebiao/library/internal/domain/reader"
)

type readerRepository struct {
	store *Store
}

func (r *readerRepository) Create(ctx context.Context, rd *reader.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.readers[rd.ID]; exists {
		return reader.ErrDuplicateID
	}
	r.store.readers[rd.ID] = rd.Snapshot()
	r.store.writes.Add(1)
	return nil
}

func (r *readerRepository) FindByID(ctx context.Context, id int) (*reader.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rd, ok := r.store.readers[id]
	if !ok {
		return nil, reader.ErrReaderNotFound
	}
	return rd.Snapshot(), nil
}

func (r *readerRepository) FindAll(ctx context.Context) ([]*reader.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	readers := make([]*reader.Reader, 0, len(r.store.readers))
	for _, id := range sortedKeys(r.store.readers) {
		readers = append(readers, r.store.readers[id].Snapshot())
	}
	return readers, nil
}

func (r *readerRepository) Update(ctx context.Context, rd *reader.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.readers[rd.ID]; !ok {
		return reader.ErrReaderNotFound
	}
	r.store.readers[rd.ID] = rd.Snapshot()
	r.store.writes.Add(1)
	return nil
}

func (r *readerRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.readers[id]; !ok {
		return reader.ErrReaderNotFound
	}
	delete(r.store.readers, id)
	r.store.writes.Add(1)
	return nil
}
