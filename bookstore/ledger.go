package bookstore

import (
	"fmt"
	"strings"
	"sync"
)

// AuditLog receives one line per state-changing ledger operation. The line
// is appended after the record file has been durably rewritten.
type AuditLog interface {
	Record(message string) error
}

// Ledger is the business-rule layer over the record store. It enforces
// merge-on-duplicate creates, non-negative stock on purchases, required
// fields, and emits exactly one audit line per successful mutation.
//
// Every mutation is a sequential read-modify-write over the entire record
// file; the mutex keeps writers one-at-a-time within this process.
type Ledger struct {
	mu    sync.Mutex
	store *Store
	audit AuditLog
}

// NewLedger wires a ledger to its record store and audit sink.
func NewLedger(store *Store, audit AuditLog) *Ledger {
	return &Ledger{store: store, audit: audit}
}

// BookInput carries the caller-supplied fields of a create or update. Price
// arrives as text because the boundary accepts both "49.90" and "49,90".
type BookInput struct {
	Title    string
	Author   string
	Quantity int
	Price    string
}

// textField trims and validates a required text field. The record file is
// comma-delimited, so a comma inside the field would change the row's column
// count and make it unreadable.
func textField(name, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", NewValidationError(name, "required")
	}
	if strings.Contains(v, ",") {
		return "", NewValidationError(name, "must not contain a comma")
	}
	return v, nil
}

// List returns all books in record-file order.
func (l *Ledger) List() ([]Book, error) {
	return l.store.ListAll()
}

// Create adds a book, or merges quantity into an existing one when the
// normalized (title, author) pair already exists. On merge the existing
// row's id, title, author, and price are preserved; only the quantity grows.
// New rows get id max(existing)+1, starting at 1.
func (l *Ledger) Create(in BookInput) (Book, error) {
	title, err := textField("title", in.Title)
	if err != nil {
		return Book{}, err
	}
	author, err := textField("author", in.Author)
	if err != nil {
		return Book{}, err
	}
	qty := in.Quantity
	if qty < 0 {
		qty = 0
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return Book{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	books, err := l.store.ListAll()
	if err != nil {
		return Book{}, err
	}

	want := Book{Title: title, Author: author}.Key()
	for i, b := range books {
		if b.Key() != want {
			continue
		}
		before := b.Quantity
		after := before + qty
		books[i].Quantity = after
		if err := l.store.SaveAll(books); err != nil {
			return Book{}, err
		}
		if err := l.audit.Record(fmt.Sprintf(
			"ATUALIZACAO|acao=MERGE|id=%d|livro=%s|autor=%s|antes=%d|adicionado=%d|depois=%d|preco=%.2f",
			b.ID, title, author, before, qty, after, b.Price)); err != nil {
			return Book{}, err
		}
		return books[i], nil
	}

	maxID := 0
	for _, b := range books {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	book := Book{ID: maxID + 1, Title: title, Author: author, Quantity: qty, Price: price}
	books = append(books, book)
	if err := l.store.SaveAll(books); err != nil {
		return Book{}, err
	}
	if err := l.audit.Record(fmt.Sprintf(
		"CRIACAO|id=%d|livro=%s|autor=%s|qtd=%d|preco=%.2f",
		book.ID, book.Title, book.Author, book.Quantity, book.Price)); err != nil {
		return Book{}, err
	}
	return book, nil
}

// Update replaces the fields of the row with the given id unconditionally.
// The row keeps its position and id. No merge is attempted even if the new
// (title, author) collides with another row; create-time uniqueness is not
// re-checked here.
func (l *Ledger) Update(id int, in BookInput) (Book, error) {
	title, err := textField("title", in.Title)
	if err != nil {
		return Book{}, err
	}
	author, err := textField("author", in.Author)
	if err != nil {
		return Book{}, err
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return Book{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	books, err := l.store.ListAll()
	if err != nil {
		return Book{}, err
	}

	idx := -1
	for i, b := range books {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}

	books[idx] = Book{ID: id, Title: title, Author: author, Quantity: in.Quantity, Price: price}
	if err := l.store.SaveAll(books); err != nil {
		return Book{}, err
	}
	if err := l.audit.Record(fmt.Sprintf(
		"ATUALIZACAO|id=%d|livro=%s|autor=%s|qtd=%d|preco=%.2f",
		id, title, author, in.Quantity, price)); err != nil {
		return Book{}, err
	}
	return books[idx], nil
}

// Delete removes the row with the given id. A row whose quantity is exactly
// zero is never removed: the attempt is logged as blocked and the call
// returns without error. Any other quantity is deletable.
func (l *Ledger) Delete(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	books, err := l.store.ListAll()
	if err != nil {
		return err
	}

	idx := -1
	for i, b := range books {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	target := books[idx]

	if target.Quantity == 0 {
		return l.audit.Record(fmt.Sprintf(
			"BLOQUEADA|acao=EXCLUSAO|id=%d|livro=%s|motivo=ESTOQUE_ZERO",
			id, target.Title))
	}

	books = append(books[:idx], books[idx+1:]...)
	if err := l.store.SaveAll(books); err != nil {
		return err
	}
	return l.audit.Record(fmt.Sprintf("EXCLUSAO|id=%d|livro=%s", id, target.Title))
}

// Purchase decrements stock for a sale. The book is matched by normalized
// title only. Stock never goes negative: a request for more than the
// current quantity fails with ErrInsufficientStock and changes nothing.
func (l *Ledger) Purchase(title, customer string, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok, err := l.store.FindByTitle(title)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("book %q: %w", strings.TrimSpace(title), ErrNotFound)
	}
	if quantity <= 0 {
		return NewValidationError("quantity", "must be positive")
	}

	before := book.Quantity
	after := before - quantity
	if after < 0 {
		return fmt.Errorf("book %q has %d in stock, want %d: %w",
			book.Title, before, quantity, ErrInsufficientStock)
	}

	books, err := l.store.ListAll()
	if err != nil {
		return err
	}
	for i := range books {
		if books[i].ID == book.ID {
			books[i].Quantity = after
		}
	}
	if err := l.store.SaveAll(books); err != nil {
		return err
	}
	return l.audit.Record(fmt.Sprintf(
		"COMPRA|cliente=%s|livro=%s|qtd=%d|antes=%d|depois=%d",
		strings.TrimSpace(customer), book.Title, quantity, before, after))
}
