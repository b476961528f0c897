package server

import (
	"net/http"

	"bookstore-management/tickets"
)

type ticketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func (tr ticketRequest) input() tickets.Input {
	return tickets.Input{
		Title:       tr.Title,
		Description: tr.Description,
		Email:       tr.Email,
		Priority:    tr.Priority,
		Status:      tr.Status,
	}
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	all, err := s.tickets.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if all == nil {
		all = []tickets.Ticket{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ticket, err := s.tickets.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ticket, err := s.tickets.Create(req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ticketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ticket, err := s.tickets.Update(id, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.tickets.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
