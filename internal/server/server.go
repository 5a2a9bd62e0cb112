// Package server exposes a proximity graph over HTTP so a viewer can draw it,
// cut edges out of it and request fresh routes while it changes.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
	"github.com/rstrohkorb/dynamic-A-Star/scene"
)

type ctxKey struct{}

// Server owns the live graph. Searches share a read lock; edge removal and
// rebuilds take the write lock.
type Server struct {
	mu      sync.RWMutex
	graph   *graph.Graph
	scene   scene.Config
	metrics *metrics
	mux     *http.ServeMux
}

// New creates a server. g may be nil until /build is called.
func New(g *graph.Graph, cfg scene.Config) *Server {
	s := &Server{
		graph:   g,
		scene:   cfg,
		metrics: newMetrics(),
		mux:     http.NewServeMux(),
	}
	if g != nil {
		s.metrics.graphNodes.Set(float64(g.Size()))
	}

	s.mux.HandleFunc("/build", s.instrument("build", s.buildHandler))
	s.mux.HandleFunc("/lines", s.instrument("lines", s.linesHandler))
	s.mux.HandleFunc("/route", s.instrument("route", s.routeHandler))
	s.mux.HandleFunc("/routes", s.instrument("routes", s.routesHandler))
	s.mux.HandleFunc("/removeEdge", s.instrument("removeEdge", s.removeEdgeHandler))
	s.mux.HandleFunc("/replan", s.instrument("replan", s.replanHandler))
	s.mux.HandleFunc("/block", s.instrument("block", s.blockHandler))
	s.mux.HandleFunc("/health", s.instrument("health", s.healthHandler))
	s.mux.Handle("/metrics", s.metrics.handler())
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// current returns the graph under the read lock. The returned unlock must be called.
func (s *Server) current() (*graph.Graph, func()) {
	s.mu.RLock()
	return s.graph, s.mu.RUnlock
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// LogEndpoints prints the endpoint table
func LogEndpoints() {
	log.Println("Endpoints:")
	log.Println("  POST /build        - Build a graph from a scene config")
	log.Println("  GET  /lines        - Get graph edges for visualization (?format=geojson)")
	log.Println("  POST /route        - Compute a route between two nodes or points")
	log.Println("  POST /routes       - Compute several routes concurrently")
	log.Println("  POST /removeEdge   - Remove an edge in both directions")
	log.Println("  POST /replan       - Re-anchor a position on the graph and route to a goal")
	log.Println("  POST /block        - Cut every edge crossing GeoJSON polygons")
	log.Println("  GET  /health       - Check server status")
	log.Println("  GET  /metrics      - Prometheus metrics")
	log.Println("")
	log.Println("CORS enabled for all origins")
}

// statusRecorder captures the response code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument adds CORS headers, a request id and request counting
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			s.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(rec.code)).Inc()
		}()

		// Handle preflight
		if r.Method == http.MethodOptions {
			rec.WriteHeader(http.StatusOK)
			return
		}

		id := uuid.NewString()
		rec.Header().Set("X-Request-ID", id)
		next(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	}
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}
