package rest

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/application/services"
	"isometry-backend/infrastructure/config"
	"isometry-backend/interfaces/http/rest/handlers"
	"isometry-backend/interfaces/http/rest/middleware"
	pkgerrors "isometry-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg    *config.Config
	graph  *services.GraphService
	nodes  ports.NodeRepository
	edges  ports.EdgeRepository
	db     *sql.DB
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	graph *services.GraphService,
	nodes ports.NodeRepository,
	edges ports.EdgeRepository,
	db *sql.DB,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:    cfg,
		graph:  graph,
		nodes:  nodes,
		edges:  edges,
		db:     db,
		logger: logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	errHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "tauri://localhost"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	nodeHandler := handlers.NewNodeHandler(rt.nodes, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.graph, rt.edges, rt.logger)
	graphHandler := handlers.NewGraphHandler(rt.graph, rt.edges, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg, rt.logger))

		// Node endpoints
		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Get("/", nodeHandler.ListNodes)
			r.Get("/pending-sync", nodeHandler.GetPendingSync)
			r.Get("/with-location", nodeHandler.GetWithLocation)
			r.Get("/{nodeID}", nodeHandler.GetNode)
			r.Put("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Post("/{nodeID}/restore", nodeHandler.RestoreNode)

			// Per-node graph views
			r.Get("/{nodeID}/edges", edgeHandler.NodeEdges)
			r.Get("/{nodeID}/neighbors", graphHandler.Neighbors)
			r.Get("/{nodeID}/subgraph", graphHandler.Subgraph)
			r.Get("/{nodeID}/children", graphHandler.Children)
			r.Get("/{nodeID}/parent", graphHandler.Parent)
			r.Get("/{nodeID}/descendants", graphHandler.Descendants)
			r.Get("/{nodeID}/ancestors", graphHandler.Ancestors)
			r.Get("/{nodeID}/sequence", graphHandler.Sequence)
		})

		// Edge endpoints
		r.Route("/edges", func(r chi.Router) {
			r.Get("/", edgeHandler.ListEdges)
			r.Post("/link", edgeHandler.CreateLink)
			r.Post("/nest", edgeHandler.CreateNest)
			r.Post("/sequence", edgeHandler.CreateSequence)
			r.Post("/affinity", edgeHandler.CreateAffinity)
			r.Get("/{edgeID}", edgeHandler.GetEdge)
			r.Put("/{edgeID}", edgeHandler.UpdateEdge)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})

		// Whole-graph endpoints
		r.Route("/graph", func(r chi.Router) {
			r.Get("/paths", graphHandler.FindPaths)
			r.Get("/shortest-path", graphHandler.ShortestPath)
			r.Get("/components", graphHandler.Components)
			r.Get("/centrality", graphHandler.Centrality)
			r.Get("/clusters", graphHandler.Clusters)
			r.Get("/analysis", graphHandler.Analyze)
			r.Get("/roots", graphHandler.Roots)
			r.Get("/leaves", graphHandler.Leaves)
			r.Get("/sequences", graphHandler.Sequences)
		})

		// Search and raw query
		r.Get("/search", nodeHandler.SearchNodes)
		r.Post("/query", nodeHandler.ExecuteQuery)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the store answers a ping.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := rt.db.PingContext(req.Context()); err != nil {
		rt.logger.Warn("Readiness ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
