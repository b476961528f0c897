package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookstore-management/reports"
)

// handleReport runs the audit-log report with filters taken from query
// parameters. Unparseable page/size/date values are ignored rather than
// rejected, leaving the defaults in place.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := reports.Query{
		Kind:     r.URL.Query().Get("kind"),
		Customer: r.URL.Query().Get("customer"),
		Book:     r.URL.Query().Get("book"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		q.Size = size
	}
	q.From = parseDay(r.URL.Query().Get("from"))
	q.To = parseDay(r.URL.Query().Get("to"))

	result, err := s.reports.Run(q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseDay(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
