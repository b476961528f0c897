package bookstore

// Book is a single row of the inventory record file.
// Two books with the same normalized (title, author) pair are considered the
// same book regardless of casing, spacing, or id.
type Book struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Key returns the normalized identity key of the book.
func (b Book) Key() string {
	return Normalize(b.Title) + "\x00" + Normalize(b.Author)
}
