// Package tickets is the support-ticket subsystem: CRUD over a
// semicolon-delimited file with priority/status enums and light email
// validation. Tickets are operational data, not inventory, so they do not
// write audit events.
package tickets

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"bookstore-management/bookstore"
)

// Priority of a ticket, lowest to highest.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Status of a ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusCancelled  Status = "cancelled"
)

// ParsePriority parses a priority token case-insensitively. Empty input
// defaults to medium.
func ParsePriority(raw string) (Priority, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	}
	return "", bookstore.NewValidationError("priority", "must be low, medium, high or critical")
}

// ParseStatus parses a status token case-insensitively. Empty input
// defaults to open.
func ParseStatus(raw string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch Status(s) {
	case "":
		return StatusOpen, nil
	case StatusOpen, StatusInProgress, StatusResolved, StatusCancelled:
		return Status(s), nil
	}
	return "", bookstore.NewValidationError("status", "must be open, in_progress, resolved or cancelled")
}

// Ticket is one row of the ticket file.
type Ticket struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Email       string   `json:"email"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// Just enough shape-checking to catch obvious typos; full RFC 5322
// validation is not the goal.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Input carries the caller-supplied ticket fields. Priority and Status are
// raw tokens; empty values take the defaults.
type Input struct {
	Title       string
	Description string
	Email       string
	Priority    string
	Status      string
}

// Service enforces the ticket rules over its store.
type Service struct {
	mu    sync.Mutex
	store *Store
}

// NewService wires a ticket service to its store.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// List returns all tickets in file order.
func (s *Service) List() ([]Ticket, error) {
	return s.store.ListAll()
}

// Get returns the ticket with the given id.
func (s *Service) Get(id int) (Ticket, error) {
	all, err := s.store.ListAll()
	if err != nil {
		return Ticket{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return Ticket{}, fmt.Errorf("ticket %d: %w", id, bookstore.ErrNotFound)
}

// Create validates and stores a new ticket, assigning id max(existing)+1.
func (s *Service) Create(in Input) (Ticket, error) {
	t, err := validate(in)
	if err != nil {
		return Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListAll()
	if err != nil {
		return Ticket{}, err
	}
	maxID := 0
	for _, existing := range all {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	t.ID = maxID + 1
	all = append(all, t)
	if err := s.store.SaveAll(all); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// Update replaces the fields of the ticket with the given id.
func (s *Service) Update(id int, in Input) (Ticket, error) {
	t, err := validate(in)
	if err != nil {
		return Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListAll()
	if err != nil {
		return Ticket{}, err
	}
	idx := -1
	for i, existing := range all {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Ticket{}, fmt.Errorf("ticket %d: %w", id, bookstore.ErrNotFound)
	}

	t.ID = id
	all[idx] = t
	if err := s.store.SaveAll(all); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// Delete removes the ticket with the given id.
func (s *Service) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListAll()
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range all {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("ticket %d: %w", id, bookstore.ErrNotFound)
	}
	all = append(all[:idx], all[idx+1:]...)
	return s.store.SaveAll(all)
}

func validate(in Input) (Ticket, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Ticket{}, bookstore.NewValidationError("title", "required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return Ticket{}, bookstore.NewValidationError("email", "required")
	}
	if !emailRe.MatchString(email) {
		return Ticket{}, bookstore.NewValidationError("email", "invalid address")
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return Ticket{}, err
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Email:       email,
		Priority:    priority,
		Status:      status,
	}, nil
}
