// Package progress exposes the run's status over HTTP (spec.md §6's
// "progress emitted alongside each line for UIs"): a plain health check, a
// polling snapshot, and a websocket feed for live updates. Routing is
// gorilla/mux and the live feed is gorilla/websocket, matching the pack's
// control-plane services.
package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Snapshot is the run's state at a point in time.
type Snapshot struct {
	Progress    float64        `json:"progress"`
	Total       int64          `json:"total"`
	Valid       int64          `json:"valid"`
	RejectCounts map[string]int64 `json:"reject_counts"`
	Done        bool           `json:"done"`
	Err         string         `json:"error,omitempty"`
}

// Server tracks the current Snapshot and fans it out to websocket
// subscribers as it changes.
type Server struct {
	mu       sync.RWMutex
	snapshot Snapshot

	upgrader websocket.Upgrader

	subsMu sync.Mutex
	subs   map[*websocket.Conn]struct{}
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[*websocket.Conn]struct{}),
	}
}

// Update replaces the current snapshot and pushes it to every connected
// websocket client. Send failures drop that client; they do not block or
// fail the caller's ingestion loop.
func (s *Server) Update(snap Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for conn := range s.subs {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(snap); err != nil {
			_ = conn.Close()
			delete(s.subs, conn)
		}
	}
}

func (s *Server) current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Router builds the mux.Router exposing /healthz, /progress, and /ws.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(s.current())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := conn.WriteJSON(s.current()); err != nil {
		_ = conn.Close()
		return
	}

	s.subsMu.Lock()
	s.subs[conn] = struct{}{}
	s.subsMu.Unlock()

	go func() {
		defer func() {
			s.subsMu.Lock()
			delete(s.subs, conn)
			s.subsMu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
