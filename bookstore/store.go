package bookstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	recordHeader  = "id,title,author,quantity,price"
	recordColumns = 5
)

// Store reads and writes the full set of book records from a delimited
// tabular file. There are no partial writes: SaveAll always replaces the
// entire file, so the file is either the old version or the new one.
type Store struct {
	path string
}

// NewStore returns a store backed by the record file at path. The file is
// not created until EnsureFile or SaveAll is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing record file.
func (s *Store) Path() string { return s.path }

// EnsureFile creates the parent directory and a header-only record file if
// none exists yet, so first-run succeeds.
func (s *Store) EnsureFile() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, []byte(recordHeader+"\n"), 0o644); err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	return nil
}

// ListAll returns every book in file order. The header line is skipped, and
// malformed rows (wrong column count, non-numeric fields) are silently
// dropped rather than failing the whole read.
func (s *Store) ListAll() ([]Book, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	defer f.Close()

	var books []Book
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		b, ok := parseRecord(line)
		if !ok {
			continue
		}
		books = append(books, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return books, nil
}

// SaveAll rewrites the record file wholesale: header line first, then one
// row per book. The new content is written to a temporary file in the same
// directory and renamed over the target, so a crash mid-write never leaves
// a half-written record file behind.
func (s *Store) SaveAll(books []Book) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintln(w, recordHeader)
	for _, b := range books {
		// Decimal point, two places, regardless of host locale.
		fmt.Fprintf(w, "%d,%s,%s,%d,%.2f\n",
			b.ID, strings.TrimSpace(b.Title), strings.TrimSpace(b.Author), b.Quantity, b.Price)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// FindByID scans for a book with the given id. The boolean reports whether
// it was found; absence is not an error.
func (s *Store) FindByID(id int) (Book, bool, error) {
	books, err := s.ListAll()
	if err != nil {
		return Book{}, false, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, true, nil
		}
	}
	return Book{}, false, nil
}

// FindByTitle scans for the first book whose normalized title matches.
func (s *Store) FindByTitle(title string) (Book, bool, error) {
	books, err := s.ListAll()
	if err != nil {
		return Book{}, false, err
	}
	want := Normalize(title)
	for _, b := range books {
		if Normalize(b.Title) == want {
			return b, true, nil
		}
	}
	return Book{}, false, nil
}

// FindByTitleAndAuthor scans for a book matching both normalized fields.
func (s *Store) FindByTitleAndAuthor(title, author string) (Book, bool, error) {
	books, err := s.ListAll()
	if err != nil {
		return Book{}, false, err
	}
	wantT, wantA := Normalize(title), Normalize(author)
	for _, b := range books {
		if Normalize(b.Title) == wantT && Normalize(b.Author) == wantA {
			return b, true, nil
		}
	}
	return Book{}, false, nil
}

func parseRecord(line string) (Book, bool) {
	cols := strings.Split(line, ",")
	if len(cols) != recordColumns {
		return Book{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(cols[0]))
	if err != nil {
		return Book{}, false
	}
	qty, err := strconv.Atoi(strings.TrimSpace(cols[3]))
	if err != nil {
		return Book{}, false
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(cols[4]), 64)
	if err != nil {
		return Book{}, false
	}
	return Book{
		ID:       id,
		Title:    strings.TrimSpace(cols[1]),
		Author:   strings.TrimSpace(cols[2]),
		Quantity: qty,
		Price:    price,
	}, true
}
