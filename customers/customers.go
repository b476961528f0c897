// Package customers holds the customer roster: plain CRUD over a CSV file
// with duplicate detection on create. Unlike books there is no merge; a
// duplicate registration is blocked, audited, and rejected.
package customers

import (
	"fmt"
	"strings"
	"sync"

	"bookstore-management/bookstore"
)

// Customer is one row of the customer file.
type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuditLog receives one line per customer mutation (and per blocked
// duplicate registration).
type AuditLog interface {
	Record(message string) error
}

// Service enforces the customer rules over its store.
type Service struct {
	mu    sync.Mutex
	store *Store
	audit AuditLog
}

// NewService wires a customer service to its store and audit sink.
func NewService(store *Store, audit AuditLog) *Service {
	return &Service{store: store, audit: audit}
}

// validateFields trims name and email. The roster file is comma-delimited,
// so a comma inside either field would corrupt the row shape.
func validateFields(name, email string) (string, string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", "", bookstore.NewValidationError("name", "required")
	}
	if strings.Contains(n, ",") {
		return "", "", bookstore.NewValidationError("name", "must not contain a comma")
	}
	e := strings.TrimSpace(email)
	if e == "" {
		return "", "", bookstore.NewValidationError("email", "required")
	}
	if strings.Contains(e, ",") {
		return "", "", bookstore.NewValidationError("email", "must not contain a comma")
	}
	return n, e, nil
}

// List returns all customers in file order.
func (s *Service) List() ([]Customer, error) {
	return s.store.ListAll()
}

// Create registers a new customer. A duplicate normalized (name, email)
// pair is blocked: the attempt is audited and a validation failure is
// returned without touching the file.
func (s *Service) Create(name, email string) (Customer, error) {
	name, email, err := validateFields(name, email)
	if err != nil {
		return Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListAll()
	if err != nil {
		return Customer{}, err
	}

	nameKey, emailKey := bookstore.Normalize(name), bookstore.Normalize(email)
	for _, c := range all {
		if bookstore.Normalize(c.Name) == nameKey && bookstore.Normalize(c.Email) == emailKey {
			if err := s.audit.Record(fmt.Sprintf(
				"BLOQUEADA|acao=CRIACAO_CLIENTE|motivo=DUPLICADO|nome=%s|email=%s",
				strings.TrimSpace(name), strings.TrimSpace(email))); err != nil {
				return Customer{}, err
			}
			return Customer{}, bookstore.NewValidationError("customer", "already registered")
		}
	}

	maxID := 0
	for _, c := range all {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	customer := Customer{ID: maxID + 1, Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	all = append(all, customer)
	if err := s.store.SaveAll(all); err != nil {
		return Customer{}, err
	}
	if err := s.audit.Record(fmt.Sprintf(
		"CRIACAO_CLIENTE|id=%d|nome=%s|email=%s",
		customer.ID, customer.Name, customer.Email)); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// Update replaces the name and email of the customer with the given id.
func (s *Service) Update(id int, name, email string) (Customer, error) {
	name, email, err := validateFields(name, email)
	if err != nil {
		return Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListAll()
	if err != nil {
		return Customer{}, err
	}
	idx := -1
	for i, c := range all {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Customer{}, fmt.Errorf("customer %d: %w", id, bookstore.ErrNotFound)
	}

	all[idx] = Customer{ID: id, Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := s.store.SaveAll(all); err != nil {
		return Customer{}, err
	}
	if err := s.audit.Record(fmt.Sprintf("ATUALIZACAO_CLIENTE|id=%d", id)); err != nil {
		return Customer{}, err
	}
	return all[idx], nil
}

// Delete removes the customer with the given id.
func (s *Service) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListAll()
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range all {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("customer %d: %w", id, bookstore.ErrNotFound)
	}

	all = append(all[:idx], all[idx+1:]...)
	if err := s.store.SaveAll(all); err != nil {
		return err
	}
	return s.audit.Record(fmt.Sprintf("EXCLUSAO_CLIENTE|id=%d", id))
}
