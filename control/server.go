// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package control serves the HTTP control surface of a run: a graceful stop
// request, the current status and a live event stream.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ttbt-io/igsweep/sweeper"
)

// EventStatus is sent to every new event client before live events.
const EventStatus = "status"

// Options represent control server options.
type Options struct {
	// Addr is the TCP address to listen on. Ignored when Listener is set.
	Addr string
	// Secret enables bearer token authentication when not empty.
	Secret string
	// Stop is set by POST /api/stop.
	Stop   *sweeper.StopToken
	Logger *zerolog.Logger

	Listener net.Listener
}

// Status is the JSON body of GET /api/status.
type Status struct {
	RunID         string        `json:"runId,omitempty"`
	Running       bool          `json:"running"`
	StopRequested bool          `json:"stopRequested"`
	StartedAt     time.Time     `json:"startedAt,omitzero"`
	Cycle         int           `json:"cycle"`
	Deleted       int           `json:"deleted"`
	Cause         sweeper.Cause `json:"cause,omitempty"`
	Error         string        `json:"error,omitempty"`
	Clients       int           `json:"clients"`
}

// Server is a running control server. It implements sweeper.Observer.
type Server struct {
	opts       Options
	logger     zerolog.Logger
	hub        *hub
	httpServer *http.Server
	listener   net.Listener

	mu     sync.Mutex
	status Status
}

var _ sweeper.Observer = (*Server)(nil)

// NewServer creates a server without starting it. Use Handler to mount it
// elsewhere or Start to listen.
func NewServer(opts Options) (*Server, error) {
	if opts.Stop == nil {
		return nil, errors.New("control: nil stop token")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("component", "control").Logger()
	return &Server{
		opts:   opts,
		logger: logger,
		hub:    newHub(logger),
	}, nil
}

// Start creates a server and starts serving in the background.
func Start(opts Options) (*Server, error) {
	s, err := NewServer(opts)
	if err != nil {
		return nil, err
	}
	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", opts.Addr); err != nil {
			return nil, err
		}
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("control server failed")
		}
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Bool("auth", opts.Secret != "").Msg("Control server listening")
	return s, nil
}

// Addr returns the listening address, or "" if not started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the HTTP server and disconnects event clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the HTTP handler of the control API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/events", s.serveEvents)
	return s.authMiddleware(mux)
}

// Notify records e in the status and forwards it to event clients.
func (s *Server) Notify(e sweeper.Event) {
	s.mu.Lock()
	switch e.Type {
	case sweeper.EventRunStarted:
		s.status = Status{RunID: e.RunID, Running: true, StartedAt: e.Time, StopRequested: s.opts.Stop.Stopped()}
	case sweeper.EventCycleCompleted:
		s.status.Cycle = e.Cycle
		s.status.Deleted = e.Deleted
	case sweeper.EventRunFinished:
		s.status.Running = false
		s.status.Cycle = e.Cycle
		s.status.Deleted = e.Deleted
		s.status.Cause = e.Cause
		s.status.Error = e.Error
	}
	s.mu.Unlock()
	s.hub.broadcast(e)
}

func (s *Server) currentStatus() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	st.StopRequested = s.opts.Stop.Stopped()
	st.Clients = s.hub.count()
	return st
}

// statusEvent reports the recorded status. It takes only the status lock and
// may be called with the hub lock held.
func (s *Server) statusEvent() sweeper.Event {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	return sweeper.Event{
		Type:    EventStatus,
		RunID:   st.RunID,
		Time:    time.Now(),
		Cycle:   st.Cycle,
		Deleted: st.Deleted,
		Cause:   st.Cause,
		Error:   st.Error,
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !s.opts.Stop.Stopped() {
		s.logger.Info().Str("remote", r.RemoteAddr).Msg("Stop requested via control server")
	}
	s.opts.Stop.Stop()
	writeJSON(w, http.StatusAccepted, s.currentStatus())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentStatus())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
