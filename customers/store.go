package customers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const customerHeader = "id,name,email"

// Store persists the customer roster as a comma-delimited file with a
// header row, rewritten wholesale on every save.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// EnsureFile creates a header-only file (and parent directories) if the
// file does not exist yet.
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
	if err := os.WriteFile(s.path, []byte(customerHeader+"\n"), 0o644); err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	return nil
}

// ListAll returns every customer in file order, skipping the header and any
// malformed rows.
func (s *Store) ListAll() ([]Customer, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	defer f.Close()

	var all []Customer
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
		cols := strings.Split(line, ",")
		if len(cols) != 3 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(cols[0]))
		if err != nil {
			continue
		}
		all = append(all, Customer{
			ID:    id,
			Name:  strings.TrimSpace(cols[1]),
			Email: strings.TrimSpace(cols[2]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return all, nil
}

// SaveAll rewrites the whole file via temp-and-rename.
func (s *Store) SaveAll(all []Customer) error {
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
	fmt.Fprintln(w, customerHeader)
	for _, c := range all {
		fmt.Fprintf(w, "%d,%s,%s\n", c.ID, strings.TrimSpace(c.Name), strings.TrimSpace(c.Email))
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
