// Package monitor pushes live experiment telemetry to websocket clients:
// one JSON frame per control step carrying the vehicle state, the selected
// subgoal, the verified reach tube's planar projection, and the obstacle
// layout. A dashboard page can render the frames without polling.
package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
)

// writeWait bounds a single frame write to a slow peer.
const writeWait = time.Second

// RectXY is a planar projection of a box.
type RectXY struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
}

// Frame is one telemetry sample.
type Frame struct {
	Time      float64   `json:"time"`
	State     []float64 `json:"state"`
	Subgoal   []float64 `json:"subgoal,omitempty"`
	Safe      bool      `json:"safe"`
	Tube      []RectXY  `json:"tube,omitempty"`
	Obstacles []RectXY  `json:"obstacles,omitempty"`
}

// TubeProjection projects a reach tube onto the position plane.
func TubeProjection(tube []reach.TimedRect) []RectXY {
	out := make([]RectXY, 0, len(tube))
	for _, tr := range tube {
		out = append(out, RectXY{
			XMin: tr.Rect.Dims[0].Min,
			XMax: tr.Rect.Dims[0].Max,
			YMin: tr.Rect.Dims[1].Min,
			YMax: tr.Rect.Dims[1].Max,
		})
	}
	return out
}

// FieldProjection captures the obstacle layout.
func FieldProjection(f *obstacle.Field) []RectXY {
	if f == nil {
		return nil
	}
	snap := f.Snapshot()
	out := make([]RectXY, 0, snap.Len())
	for _, b := range append(snap.Dynamic(), snap.StaticBoxes()...) {
		out = append(out, RectXY{XMin: b.X.Min, XMax: b.X.Max, YMin: b.Y.Min, YMax: b.Y.Max})
	}
	return out
}

// Server broadcasts frames to all connected clients.
type Server struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewServer returns an empty telemetry hub.
func NewServer() *Server {
	return &Server{conns: make(map[*websocket.Conn]bool)}
}

// ServeHTTP upgrades the request and registers the client.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()
}

// Publish sends the frame to every client, dropping peers whose writes
// fail.
func (s *Server) Publish(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			conn.Close()
			delete(s.conns, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close disconnects all clients.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
		delete(s.conns, conn)
	}
}
