package tickets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Tickets use a semicolon delimiter so free-text descriptions may contain
// commas.
const (
	ticketSep    = ";"
	ticketHeader = "id;title;description;email;priority;status"
)

// Store persists tickets as a semicolon-delimited file with a header row,
// rewritten wholesale on every save. A missing file reads as empty.
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
	if err := os.WriteFile(s.path, []byte(ticketHeader+"\n"), 0o644); err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	return nil
}

// ListAll returns every ticket in file order, skipping the header and any
// malformed rows. Unlike the record store, a missing ticket file is not an
// error: the subsystem starts empty.
func (s *Store) ListAll() ([]Ticket, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	defer f.Close()

	var all []Ticket
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
		cols := strings.Split(line, ticketSep)
		if len(cols) != 6 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(cols[0]))
		if err != nil {
			continue
		}
		priority, err := ParsePriority(cols[4])
		if err != nil {
			continue
		}
		status, err := ParseStatus(cols[5])
		if err != nil {
			continue
		}
		all = append(all, Ticket{
			ID:          id,
			Title:       strings.TrimSpace(cols[1]),
			Description: strings.TrimSpace(cols[2]),
			Email:       strings.TrimSpace(cols[3]),
			Priority:    priority,
			Status:      status,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return all, nil
}

// SaveAll rewrites the whole file via temp-and-rename. Semicolons inside
// fields would corrupt the row shape, so they are stripped on write.
func (s *Store) SaveAll(all []Ticket) error {
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
	fmt.Fprintln(w, ticketHeader)
	for _, t := range all {
		row := strings.Join([]string{
			strconv.Itoa(t.ID),
			clean(t.Title),
			clean(t.Description),
			clean(t.Email),
			string(t.Priority),
			string(t.Status),
		}, ticketSep)
		fmt.Fprintln(w, row)
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

func clean(field string) string {
	return strings.TrimSpace(strings.ReplaceAll(field, ticketSep, " "))
}
