package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// triggerSummary is one entry of GET /triggers.
type triggerSummary struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	URL     string `json:"url"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	reg, err := decodeRegistration(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	def, err := s.triggerSvc.Register(r.Context(), reg)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, fmt.Sprintf("Registered new trigger %s", def.Name))
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNotify(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res := s.triggerSvc.Notify(r.Context(), req.Name, req.Payload)
	respond(w, res.Status, res.Message)
}

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	defs := s.triggerSvc.List(r.Context())
	out := make([]triggerSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, triggerSummary{Name: d.Name, Service: d.Service, URL: d.URL})
	}
	respond(w, http.StatusOK, out)
}

func (s *Server) handleGetTrigger(w http.ResponseWriter, r *http.Request) {
	def, err := s.triggerSvc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, def)
}

func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	entries, err := s.triggerSvc.Deliveries(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, entries)
}
