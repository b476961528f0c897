// Package reports derives operational reports from the audit log on
// demand. There is no persisted index: every query re-reads and re-parses
// the whole log, then filters, aggregates, and paginates in memory.
package reports

import (
	"strings"
	"time"

	"bookstore-management/auditlog"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Query holds the report parameters. All fields are optional: zero values
// mean "no filter" and default pagination.
type Query struct {
	Page int
	Size int

	// Kind filters by event kind, case-insensitive exact match.
	Kind string
	// Customer filters by case-insensitive substring of the customer name.
	Customer string
	// Book filters by case-insensitive substring of the book title.
	Book string

	// From and To bound the event's calendar date, inclusive on both ends.
	From *time.Time
	To   *time.Time
}

// Row is one report line, shaped for the boundary.
type Row struct {
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind"`
	Customer    string `json:"customer"`
	Book        string `json:"book"`
	Quantity    int    `json:"quantity"`
	StockBefore *int   `json:"stockBefore"`
	StockAfter  *int   `json:"stockAfter"`
	Message     string `json:"message"`
}

// Totals aggregates the whole filtered result set, not just the returned
// page. UnitsSold sums quantity over purchase events only.
type Totals struct {
	RowCount  int   `json:"rowCount"`
	UnitsSold int64 `json:"unitsSold"`
}

// Pagination describes the returned slice.
type Pagination struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"hasNext"`
}

// Result is a single report page plus totals and pagination metadata.
type Result struct {
	Rows       []Row      `json:"rows"`
	Totals     Totals     `json:"totals"`
	Pagination Pagination `json:"pagination"`
}

// Engine answers report queries against a log reader. It is read-only and
// stateless; results reflect whatever the log contains at call time.
type Engine struct {
	reader *auditlog.Reader
}

// NewEngine returns an engine over the given log reader.
func NewEngine(reader *auditlog.Reader) *Engine {
	return &Engine{reader: reader}
}

// Run reconstructs all events, applies the filters in sequence (date range,
// kind, customer substring, title substring), computes totals over the
// filtered set, and slices out the requested page. An out-of-range page
// yields an empty page, not an error.
func (e *Engine) Run(q Query) (*Result, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	// Zero means the caller did not set a size; anything else clamps into
	// the 1..MaxPageSize range.
	size := q.Size
	if size == 0 {
		size = DefaultPageSize
	} else if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	events, err := e.reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var matched []auditlog.Event
	for _, ev := range events {
		if !q.matches(ev) {
			continue
		}
		matched = append(matched, ev)
	}

	var unitsSold int64
	for _, ev := range matched {
		if ev.Kind == auditlog.KindPurchase && ev.Quantity != nil {
			unitsSold += int64(*ev.Quantity)
		}
	}

	from := (page - 1) * size
	to := from + size
	if to > len(matched) {
		to = len(matched)
	}
	rows := []Row{}
	if from < to {
		for _, ev := range matched[from:to] {
			rows = append(rows, toRow(ev))
		}
	}

	return &Result{
		Rows:   rows,
		Totals: Totals{RowCount: len(matched), UnitsSold: unitsSold},
		Pagination: Pagination{
			Page:    page,
			Size:    size,
			HasNext: to < len(matched),
		},
	}, nil
}

func (q Query) matches(ev auditlog.Event) bool {
	// Dates compare as calendar days in each value's own location, so a
	// filter parsed in UTC still lines up with local event timestamps.
	if q.From != nil && ev.Timestamp.Format(time.DateOnly) < q.From.Format(time.DateOnly) {
		return false
	}
	if q.To != nil && ev.Timestamp.Format(time.DateOnly) > q.To.Format(time.DateOnly) {
		return false
	}
	if k := strings.TrimSpace(q.Kind); k != "" && !strings.EqualFold(string(ev.Kind), k) {
		return false
	}
	// Substring filters discard events that lack the field: an event with no
	// customer can never match an active customer filter.
	if c := strings.TrimSpace(q.Customer); c != "" {
		if !strings.Contains(strings.ToLower(ev.Customer), strings.ToLower(c)) {
			return false
		}
	}
	if b := strings.TrimSpace(q.Book); b != "" {
		if !strings.Contains(strings.ToLower(ev.Book), strings.ToLower(b)) {
			return false
		}
	}
	return true
}

func toRow(ev auditlog.Event) Row {
	qty := 0
	if ev.Quantity != nil {
		qty = *ev.Quantity
	}
	return Row{
		Timestamp:   ev.Timestamp.Format("2006-01-02 15:04:05"),
		Kind:        string(ev.Kind),
		Customer:    ev.Customer,
		Book:        ev.Book,
		Quantity:    qty,
		StockBefore: ev.StockBefore,
		StockAfter:  ev.StockAfter,
		Message:     ev.Message,
	}
}
