// Package server exposes a daisyworld world over HTTP and websockets: a JSON
// state snapshot, mutation endpoints for the model controls, and a broadcast
// stream that pushes the state after every advance.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"daisyworld/internal/core"
	"daisyworld/internal/sims/daisyworld"
)

const defaultTPS = 60

// Server owns a world and serializes all access to it.
type Server struct {
	mu     sync.Mutex
	world  *daisyworld.World
	hub    *Hub
	logger Logger

	upgrader websocket.Upgrader

	runMu   sync.Mutex
	running atomic.Bool
	tps     int
	stop    chan struct{}
	stopped chan struct{}
}

// New wraps a world in a server. A nil logger keeps the server silent.
func New(world *daisyworld.World, logger Logger) *Server {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Server{
		world:  world,
		hub:    NewHub(logger),
		logger: logger,
		tps:    defaultTPS,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/luminosity", s.handleLuminosity).Methods(http.MethodPost)
	r.HandleFunc("/growth", s.handleGrowth).Methods(http.MethodPost)
	r.HandleFunc("/mode", s.handleMode).Methods(http.MethodPost)
	r.HandleFunc("/species/{species}/enabled", s.handleSpeciesEnabled).Methods(http.MethodPost)
	r.HandleFunc("/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/boost", s.handleBoost).Methods(http.MethodPost)
	r.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	return r
}

// Close stops the background runner and drops every websocket client.
func (s *Server) Close() {
	s.StopRun()
	s.hub.Close()
}

// State returns a snapshot of the world.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildState(s.world, s.running.Load())
}

func (s *Server) stateJSON() ([]byte, error) {
	state := s.State()
	return json.Marshal(state)
}

func (s *Server) broadcastState() {
	payload, err := s.stateJSON()
	if err != nil {
		s.logger.Errorf("state marshal failed: %v", err)
		return
	}
	s.hub.Broadcast(payload)
}

// StartRun begins stepping the world in the background at the given ticks
// per second. Zero keeps the previous rate. Calling it while running adjusts
// the rate by restarting the loop.
func (s *Server) StartRun(tps int) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if tps > 0 {
		if s.running.Load() && tps == s.tps {
			return
		}
		s.tps = tps
	}
	s.stopLocked()

	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	s.running.Store(true)
	s.logger.Infof("runner started at %d tps", s.tps)

	go s.runLoop(s.tps, s.stop, s.stopped)
}

// StopRun halts background stepping. It is safe to call when idle.
func (s *Server) StopRun() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.stopLocked()
}

func (s *Server) stopLocked() {
	if !s.running.Load() {
		return
	}
	close(s.stop)
	<-s.stopped
	s.running.Store(false)
	s.logger.Infof("runner stopped")
}

// Running reports whether the background runner is active.
func (s *Server) Running() bool {
	return s.running.Load()
}

func (s *Server) runLoop(tps int, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	pacer := core.NewFixedStep(tps)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			advanced := false
			s.mu.Lock()
			for pacer.ShouldStep() {
				s.world.Update()
				advanced = true
			}
			s.mu.Unlock()
			if advanced {
				s.broadcastState()
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

func (s *Server) writeState(w http.ResponseWriter) {
	payload, err := s.stateJSON()
	if err != nil {
		s.logger.Errorf("state marshal failed: %v", err)
		http.Error(w, "state marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	// Seed the client with the current state before the hub takes over
	// writing, then hold the connection open until the peer goes away.
	if payload, err := s.stateJSON(); err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			return
		}
	}
	s.hub.Register(conn)
	s.logger.Debugf("websocket client connected")

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Unregister(conn)
				s.logger.Debugf("websocket client disconnected: %v", err)
				return
			}
		}
	}()
}

func (s *Server) handleLuminosity(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.world.SetLuminosity(req.Value)
	s.mu.Unlock()
	s.logger.Infof("luminosity set to %g", req.Value)

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.world.SetGrowthEnabled(req.Enabled)
	s.mu.Unlock()
	s.logger.Infof("growth enabled=%t", req.Enabled)

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Round bool `json:"round"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.world.SetRound(req.Round)
	s.mu.Unlock()
	s.logger.Infof("round mode=%t", req.Round)

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleSpeciesEnabled(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	name := mux.Vars(r)["species"]
	species, ok := daisyworld.ParseSpecies(name)
	if !ok {
		http.Error(w, "unknown species: "+name, http.StatusNotFound)
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.world.SetSpeciesEnabled(species, req.Enabled)
	s.mu.Unlock()
	s.logger.Infof("species %s enabled=%t", name, req.Enabled)

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req := struct {
		Count int `json:"count"`
	}{Count: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Count < 1 {
		http.Error(w, "count must be at least 1", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	for i := 0; i < req.Count; i++ {
		s.world.Update()
	}
	s.mu.Unlock()

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleBoost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Threshold < 0 {
		http.Error(w, "threshold must not be negative", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if req.Threshold > 0 {
		s.world.SetFloatParameter("boost_level", req.Threshold)
	}
	s.world.BoostIfExtinct()
	s.mu.Unlock()
	s.logger.Infof("boosted extinct populations")

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Seed int64 `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.world.Reset(req.Seed)
	s.mu.Unlock()
	s.logger.Infof("world reset with seed %d", req.Seed)

	s.broadcastState()
	s.writeState(w)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Running bool `json:"running"`
		TPS     int  `json:"tps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.TPS < 0 {
		http.Error(w, "tps must not be negative", http.StatusBadRequest)
		return
	}

	if req.Running {
		s.StartRun(req.TPS)
	} else {
		s.StopRun()
	}

	s.writeState(w)
}
