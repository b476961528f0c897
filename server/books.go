package server

import (
	"encoding/json"
	"net/http"

	"bookstore-management/bookstore"
)

// priceField accepts a JSON string or a bare number, so both
// {"price":"49,90"} and {"price":49.9} parse. The text is handed to the
// ledger untouched.
type priceField string

func (p *priceField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = priceField(s)
		return nil
	}
	*p = priceField(b)
	return nil
}

type bookRequest struct {
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	Quantity *int       `json:"quantity"`
	Price    priceField `json:"price"`
}

func (br bookRequest) input() bookstore.BookInput {
	qty := 0
	if br.Quantity != nil {
		qty = *br.Quantity
	}
	return bookstore.BookInput{
		Title:    br.Title,
		Author:   br.Author,
		Quantity: qty,
		Price:    string(br.Price),
	}
}

type purchaseRequest struct {
	Title    string `json:"title"`
	Customer string `json:"customer"`
	Quantity *int   `json:"quantity"`
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.ledger.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if books == nil {
		books = []bookstore.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	book, err := s.ledger.Create(req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req bookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	book, err := s.ledger.Update(id, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ledger.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if err := s.ledger.Purchase(req.Title, req.Customer, qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purchased"})
}
