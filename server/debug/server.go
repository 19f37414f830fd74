//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

// Package debug provides an HTTP server that publishes live debug snapshots
// of registered machines for external tooling.
package debug

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/cmu-tbd/behavior-machine-go/core"
	"github.com/cmu-tbd/behavior-machine-go/log"
)

// Server exposes HTTP endpoints over a set of registered machines:
//
//	GET /machines        — names of the registered machines
//	GET /machines/{name} — live debug snapshot of one machine
//
// Snapshots are safe to take while machines run.
type Server struct {
	mu       sync.RWMutex
	machines map[string]*core.Machine
	handler  http.Handler
}

// Option configures the Server instance.
type Option func(*Server)

// WithMachines registers machines at construction time.
func WithMachines(machines ...*core.Machine) Option {
	return func(s *Server) {
		for _, m := range machines {
			s.machines[m.Name()] = m
		}
	}
}

// New creates a debug server. The behaviour can be tweaked via functional
// options; further machines can be registered later with Register.
func New(opts ...Option) *Server {
	s := &Server{machines: make(map[string]*core.Machine)}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.HandleFunc("/machines", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/machines/{name}", s.handleSnapshot).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	s.handler = c.Handler(r)
	return s
}

// Register adds a machine under its own name, replacing any previous machine
// with that name.
func (s *Server) Register(m *core.Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machines[m.Name()] = m
}

// Handler returns the server's HTTP handler, CORS middleware included.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves the handler on addr, blocking until the listener
// fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("debug server listening on %s", addr)
	return http.ListenAndServe(addr, s.handler)
}

func (s *Server) machine(name string) (*core.Machine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.machines[name]
	return m, ok
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.machines))
	for name := range s.machines {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string]any{"machines": names})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	m, ok := s.machine(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "machine not found: " + name})
		return
	}
	writeJSON(w, http.StatusOK, m.DebugInfo())
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("debug server: encode response: %v", err)
	}
}
