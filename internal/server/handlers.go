package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
	"github.com/rstrohkorb/dynamic-A-Star/scene"
)

var errMissingEndpoint = errors.New("route needs a node index or a point")

// RouteRequest names its endpoints by node index or by coordinates.
// Coordinates are snapped to the nearest node.
type RouteRequest struct {
	Start      *int         `json:"start,omitempty"`
	Goal       *int         `json:"goal,omitempty"`
	StartPoint *graph.Point `json:"startPoint,omitempty"`
	GoalPoint  *graph.Point `json:"goalPoint,omitempty"`
}

type RouteResponse struct {
	Path     graph.Path `json:"path"`
	Success  bool       `json:"success"`
	Message  string     `json:"message,omitempty"`
	Start    int        `json:"start"`
	Goal     int        `json:"goal"`
	Distance float64    `json:"distance,omitempty"`
}

type RoutesRequest struct {
	Routes []RouteRequest `json:"routes"`
}

type RoutesResponse struct {
	Routes  []RouteResponse `json:"routes"`
	Success bool            `json:"success"`
}

type BuildRequest struct {
	Scene *scene.Config `json:"scene,omitempty"`
	Force bool          `json:"force,omitempty"` // Set to true to force rebuild
}

type EdgeRequest struct {
	A int `json:"a"`
	B int `json:"b"`
}

// ReplanRequest re-anchors a walker standing on a node and routes it to goal
type ReplanRequest struct {
	Position graph.Point `json:"position"`
	Goal     graph.Point `json:"goal"`
}

// segment is one undirected edge for drawing
type segment struct {
	From int
	To   int
	A, B graph.Point
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNoSuchEdge), errors.Is(err, graph.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrIndexOutOfRange),
		errors.Is(err, graph.ErrDegenerateInput),
		errors.Is(err, graph.ErrEmptyGraph),
		errors.Is(err, scene.ErrInvalidConfig),
		errors.Is(err, errMissingEndpoint):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	log.Printf("❌ %v\n", err)
	http.Error(w, err.Error(), statusFor(err))
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func notBuilt(w http.ResponseWriter) {
	log.Println("❌ Graph not available")
	http.Error(w, "Graph not built. Call /build first", http.StatusBadRequest)
}

// resolve picks the node for one end of a route
func resolve(g *graph.Graph, index *int, point *graph.Point, which string) (int, error) {
	switch {
	case index != nil:
		if _, err := g.Position(*index); err != nil {
			return -1, fmt.Errorf("%s: %w", which, err)
		}
		return *index, nil
	case point != nil:
		id, _, err := g.Nearest(*point)
		if err != nil {
			return -1, fmt.Errorf("%s: %w", which, err)
		}
		return id, nil
	default:
		return -1, fmt.Errorf("%s: %w", which, errMissingEndpoint)
	}
}

// solve runs one search and records its outcome
func (s *Server) solve(g *graph.Graph, start, goal int) RouteResponse {
	began := time.Now()
	path, err := g.FindPath(start, goal)
	s.metrics.solveSeconds.Observe(time.Since(began).Seconds())

	response := RouteResponse{Path: path, Start: start, Goal: goal, Success: err == nil}
	if err != nil {
		s.metrics.routes.WithLabelValues("unreachable").Inc()
		response.Path = graph.Path{}
		response.Message = err.Error()
		return response
	}
	s.metrics.routes.WithLabelValues("found").Inc()
	if origin, err := g.Position(start); err == nil {
		response.Distance = path.Length(origin)
	}
	return response
}

func logPath(path graph.Path) {
	log.Printf("✅ Path found with %d waypoints\n", len(path))
	log.Println("   Path preview (first/last 3 waypoints):")
	for i := 0; i < len(path) && i < 3; i++ {
		log.Printf("      %d: (%.3f, %.3f, %.3f)\n", i, path[i].X, path[i].Y, path[i].Z)
	}
	if len(path) > 6 {
		log.Printf("      ... (%d intermediate waypoints)\n", len(path)-6)
		for i := len(path) - 3; i < len(path); i++ {
			log.Printf("      %d: (%.3f, %.3f, %.3f)\n", i, path[i].X, path[i].Y, path[i].Z)
		}
	}
}

// POST /route - Compute a route between two nodes
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Printf("📍 [%s] Route request received\n", requestID(r))
	defer log.Println("========================================")

	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	g, unlock := s.current()
	defer unlock()
	if g == nil {
		notBuilt(w)
		return
	}

	start, err := resolve(g, req.Start, req.StartPoint, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	goal, err := resolve(g, req.Goal, req.GoalPoint, "goal")
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("   Start: node %d\n", start)
	log.Printf("   Goal:  node %d\n", goal)

	log.Println("🔍 Running A* on graph...")
	response := s.solve(g, start, goal)
	if response.Success {
		logPath(response.Path)
		log.Printf("   Distance: %.3f\n", response.Distance)
	} else {
		log.Printf("❌ %s\n", response.Message)
	}

	writeJSON(w, http.StatusOK, response)
}

// POST /routes - Compute several routes concurrently against one graph snapshot
func (s *Server) routesHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("🧭 [%s] Batch route request received\n", requestID(r))

	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req RoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	g, unlock := s.current()
	defer unlock()
	if g == nil {
		notBuilt(w)
		return
	}

	results := make([]RouteResponse, len(req.Routes))
	eg, ctx := errgroup.WithContext(r.Context())
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, route := range req.Routes {
		i, route := i, route
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start, err := resolve(g, route.Start, route.StartPoint, "start")
			if err != nil {
				return fmt.Errorf("route %d: %w", i, err)
			}
			goal, err := resolve(g, route.Goal, route.GoalPoint, "goal")
			if err != nil {
				return fmt.Errorf("route %d: %w", i, err)
			}
			results[i] = s.solve(g, start, goal)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		writeError(w, err)
		return
	}

	found := 0
	for _, res := range results {
		if res.Success {
			found++
		}
	}
	log.Printf("   ✅ %d/%d routes found\n", found, len(results))

	writeJSON(w, http.StatusOK, RoutesResponse{Routes: results, Success: found == len(results)})
}

// POST /build - Build a graph from a scene config
func (s *Server) buildHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Printf("🗺️  [%s] Build graph request received\n", requestID(r))
	defer log.Println("========================================")

	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	cfg := scene.DefaultConfig()
	req := BuildRequest{Scene: &cfg}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	alreadyExists := s.graph != nil
	s.mu.RUnlock()

	if alreadyExists && !req.Force {
		log.Println("⚠️  Graph already exists")
		log.Println("   To rebuild, set force:true in request or restart the server")
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"error":   "graph already exists",
			"message": "Graph is already built. Set 'force: true' to rebuild, or restart the server.",
		})
		return
	}
	if alreadyExists {
		log.Println("🔄 Force rebuild requested - recreating graph...")
	}

	log.Printf("   Topology: %s %dD, degree %d\n", cfg.Topology, cfg.Dimensions, cfg.EffectiveDegree())

	began := time.Now()
	g, err := scene.Build(cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	s.graph = g
	s.scene = cfg
	s.mu.Unlock()
	s.metrics.graphNodes.Set(float64(g.Size()))

	log.Printf("✅ Graph built: %d nodes in %.3f seconds\n", g.Size(), time.Since(began).Seconds())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"numNodes": g.Size(),
		"degree":   g.Degree(),
		"scene":    cfg,
	})
}

// uniqueSegments lists every undirected edge once
func uniqueSegments(g *graph.Graph) []segment {
	segments := make([]segment, 0)
	for n := 0; n < g.Size(); n++ {
		a, _ := g.Position(n)
		for _, m := range g.Neighbors(n) {
			if n > m && g.HasEdge(m, n) {
				continue
			}
			b, _ := g.Position(m)
			segments = append(segments, segment{From: n, To: m, A: a, B: b})
		}
	}
	return segments
}

// GET /lines - Get graph edges as line segments for visualization
func (s *Server) linesHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("📊 [%s] Get graph lines request received\n", requestID(r))

	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	g, unlock := s.current()
	defer unlock()
	if g == nil {
		notBuilt(w)
		return
	}

	segments := uniqueSegments(g)
	log.Printf("   Returning %d line segments\n", len(segments))

	if r.URL.Query().Get("format") == "geojson" {
		fc := geojson.NewFeatureCollection()
		for _, seg := range segments {
			f := geojson.NewFeature(orb.LineString{scene.ToOrb(seg.A), scene.ToOrb(seg.B)})
			f.Properties["from"] = seg.From
			f.Properties["to"] = seg.To
			fc.Append(f)
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			writeError(w, fmt.Errorf("failed to marshal lines: %w", err))
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
		return
	}

	lines := make([][]graph.Point, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, []graph.Point{seg.A, seg.B})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"lines":         lines,
		"numNodes":      g.Size(),
		"numEdges":      len(segments),
		"numLinePoints": len(g.Lines()),
	})
}

// POST /removeEdge - Remove an edge in both directions
func (s *Server) removeEdgeHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("✂️  [%s] Remove edge request received\n", requestID(r))

	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req EdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		notBuilt(w)
		return
	}

	if err := s.graph.RemoveEdge(req.A, req.B); err != nil {
		writeError(w, err)
		return
	}
	s.metrics.edgesRemoved.Inc()
	log.Printf("   ✅ Removed edge %d-%d\n", req.A, req.B)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"a":          req.A,
		"b":          req.B,
		"neighborsA": s.graph.Neighbors(req.A),
		"neighborsB": s.graph.Neighbors(req.B),
	})
}

// POST /replan - Route from the node under position to the node under goal
func (s *Server) replanHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔁 [%s] Replan request received\n", requestID(r))

	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req ReplanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	g, unlock := s.current()
	defer unlock()
	if g == nil {
		notBuilt(w)
		return
	}

	start, err := g.NodeAt(req.Position)
	if err != nil {
		writeError(w, fmt.Errorf("position: %w", err))
		return
	}
	goal, err := g.NodeAt(req.Goal)
	if err != nil {
		writeError(w, fmt.Errorf("goal: %w", err))
		return
	}

	response := s.solve(g, start, goal)
	if response.Success {
		logPath(response.Path)
	} else {
		log.Printf("❌ %s\n", response.Message)
	}
	writeJSON(w, http.StatusOK, response)
}

// POST /block - Cut every edge crossing the polygons of a GeoJSON FeatureCollection
func (s *Server) blockHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("🚧 [%s] Block request received\n", requestID(r))

	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rings, err := scene.ParseObstacles(data)
	if err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	log.Printf("   Blocking polygons: %d\n", len(rings))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		notBuilt(w)
		return
	}

	removed, err := scene.Cut(s.graph, rings)
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.edgesRemoved.Add(float64(len(removed)))
	log.Printf("   ✅ Removed %d edges\n", len(removed))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
		"count":   len(removed),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	hasGraph := s.graph != nil
	numNodes, degree := 0, 0
	if hasGraph {
		numNodes = s.graph.Size()
		degree = s.graph.Degree()
	}
	cfg := s.scene
	s.mu.RUnlock()

	status := "ready"
	if !hasGraph {
		status = "waiting for graph"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"hasGraph": hasGraph,
		"numNodes": numNodes,
		"degree":   degree,
		"scene":    cfg,
	})
}
