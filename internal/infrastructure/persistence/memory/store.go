package memory

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reader"
)

// Store 内存实体存储
// 设计说明:
// 1. 三个集合共用一把读写锁,但每次调用只改一个集合,与文档库一样不提供跨集合原子写
// 2. 存取都做深拷贝,调用方持有的指针不会与存储共享
// 3. writes统计成功的写操作次数,测试用来断言"拒绝时没有写入"
type Store struct {
	mu      sync.RWMutex
	books   map[int]*book.Book
	readers map[int]*reader.Reader
	loans   map[int]*loan.Loan

	writes atomic.Int64
	seq    *Sequence
}

// NewStore 创建空的内存存储
func NewStore() *Store {
	return &Store{
		books:   make(map[int]*book.Book),
		readers: make(map[int]*reader.Reader),
		loans:   make(map[int]*loan.Loan),
		seq:     NewSequence(),
	}
}

// BookRepository 图书仓储
func (s *Store) BookRepository() book.Repository {
	return &bookRepository{store: s}
}

// ReaderRepository 读者仓储
func (s *Store) ReaderRepository() reader.Repository {
	return &readerRepository{store: s}
}

// LoanRepository 借阅仓储
func (s *Store) LoanRepository() loan.Repository {
	return &loanRepository{store: s}
}

// Sequence ID计数器
func (s *Store) Sequence() *Sequence {
	return s.seq
}

// Writes 成功写操作次数
func (s *Store) Writes() int64 {
	return s.writes.Load()
}

// Ping 内存存储总是可用
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// sortedKeys 按ID升序返回键,保证FindAll结果稳定
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func copyLoan(l *loan.Loan) *loan.Loan {
	cp := *l
	cp.Book = l.Book.Snapshot()
	cp.Reader = l.Reader.Snapshot()
	if l.ReturnDate != nil {
		at := *l.ReturnDate
		cp.ReturnDate = &at
	}
	return &cp
}
