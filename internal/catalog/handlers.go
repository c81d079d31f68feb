package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) clients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.books.Clients(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Err(err).Msg("list clients")
		jsonErr(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResp(w, r, http.StatusOK, library.ClientsResponse{Clients: clients})
}

func (s *Server) clientBooks(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	snap, ok := s.books.Lookup(clientID)
	if !ok {
		jsonErr(w, r, http.StatusNotFound, library.ErrNotFound.Error())
		return
	}
	jsonResp(w, r, http.StatusOK, snap)
}

func jsonResp(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromContext(r.Context()).Err(err).Msg("encode response")
	}
}

func jsonErr(w http.ResponseWriter, r *http.Request, status int, msg string) {
	jsonResp(w, r, status, errorResponse{Error: msg})
}
