// Package server is the HTTP boundary: routing, JSON marshaling, error
// mapping, and request middleware. All business rules live below it.
package server

import (
	"log/slog"
	"net/http"

	"bookstore-management/bookstore"
	"bookstore-management/customers"
	"bookstore-management/reports"
	"bookstore-management/tickets"
)

// Server bundles the subsystems behind the REST surface.
type Server struct {
	ledger    *bookstore.Ledger
	customers *customers.Service
	tickets   *tickets.Service
	reports   *reports.Engine
	logger    *slog.Logger
	staticDir string
}

// New builds a server over the given subsystems. staticDir may be empty to
// disable static file hosting.
func New(
	ledger *bookstore.Ledger,
	customerSvc *customers.Service,
	ticketSvc *tickets.Service,
	reportEngine *reports.Engine,
	logger *slog.Logger,
	staticDir string,
) *Server {
	return &Server{
		ledger:    ledger,
		customers: customerSvc,
		tickets:   ticketSvc,
		reports:   reportEngine,
		logger:    logger,
		staticDir: staticDir,
	}
}

// Handler returns the full route table wrapped in the middleware chain
// (request-id, request logging, panic recovery, outermost first).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Books and purchases.
	mux.HandleFunc("GET /api/books", s.handleListBooks)
	mux.HandleFunc("POST /api/books", s.handleCreateBook)
	mux.HandleFunc("PUT /api/books/{id}", s.handleUpdateBook)
	mux.HandleFunc("DELETE /api/books/{id}", s.handleDeleteBook)
	mux.HandleFunc("POST /api/purchases", s.handlePurchase)

	// Customers.
	mux.HandleFunc("GET /api/customers", s.handleListCustomers)
	mux.HandleFunc("POST /api/customers", s.handleCreateCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", s.handleUpdateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", s.handleDeleteCustomer)

	// Support tickets.
	mux.HandleFunc("GET /api/tickets", s.handleListTickets)
	mux.HandleFunc("GET /api/tickets/{id}", s.handleGetTicket)
	mux.HandleFunc("POST /api/tickets", s.handleCreateTicket)
	mux.HandleFunc("PUT /api/tickets/{id}", s.handleUpdateTicket)
	mux.HandleFunc("DELETE /api/tickets/{id}", s.handleDeleteTicket)

	// Reports and health.
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}

	return Chain(mux,
		RequestID,
		Logger(s.logger),
		Recover(s.logger),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
