package book

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. ID为0表示尚未分配,由Service在Add时分配
// 2. Available只能由借阅流程修改(借出→false,归还→true,对账→按借阅记录推导)
// 3. 目录维护(Update)只修改Title/Author/ISBN
type Book struct {
	ID        int
	Title     string
	Author    string
	ISBN      string
	Available bool
}

// NewBook 创建新图书(工厂方法),新书总是可借
func NewBook(title, author, isbn string) *Book {
	return &Book{
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Available: true,
	}
}

// MarkBorrowed 借出
func (b *Book) MarkBorrowed() {
	b.Available = false
}

// MarkReturned 归还
func (b *Book) MarkReturned() {
	b.Available = true
}

// UpdateInfo 更新目录信息,不影响可借状态
func (b *Book) UpdateInfo(title, author, isbn string) {
	b.Title = title
	b.Author = author
	b.ISBN = isbn
}

// Snapshot 拷贝一份,用于嵌入借阅记录
func (b *Book) Snapshot() *Book {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}
