package server

import (
	"net/http"

	"bookstore-management/customers"
)

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	all, err := s.customers.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if all == nil {
		all = []customers.Customer{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	customer, err := s.customers.Create(req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req customerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	customer, err := s.customers.Update(id, req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.customers.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
