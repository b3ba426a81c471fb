package reader

// Reader 读者实体(聚合根)
// 借阅流程只读取读者,用于校验存在性和生成借阅快照
type Reader struct {
	ID    int
	Name  string
	Email string
}

// NewReader 创建新读者(工厂方法)
func NewReader(name, email string) *Reader {
	return &Reader{
		Name:  name,
		Email: email,
	}
}

// UpdateProfile 更新读者信息
func (r *Reader) UpdateProfile(name, email string) {
	r.Name = name
	r.Email = email
}

// Snapshot 拷贝一份,用于嵌入借阅记录
func (r *Reader) Snapshot() *Reader {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
