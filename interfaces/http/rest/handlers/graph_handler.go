package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/application/services"
	"isometry-backend/domain/core/valueobjects"
	"isometry-backend/pkg/common"
)

// GraphHandler exposes traversal and analysis over HTTP
type GraphHandler struct {
	graph  *services.GraphService
	edges  ports.EdgeRepository
	logger *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(graph *services.GraphService, edges ports.EdgeRepository, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{graph: graph, edges: edges, logger: logger}
}

// FindPaths handles GET /graph/paths?source=&target=&max_length=&max_paths=
func (h *GraphHandler) FindPaths(w http.ResponseWriter, r *http.Request) {
	sourceID, targetID, ok := h.endpoints(w, r)
	if !ok {
		return
	}

	paths, err := h.graph.FindAllPaths(r.Context(), sourceID, targetID,
		intParam(r, "max_length", 0), intParam(r, "max_paths", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, paths)
}

// ShortestPath handles GET /graph/shortest-path?source=&target=&type=&max_distance=
func (h *GraphHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	sourceID, targetID, ok := h.endpoints(w, r)
	if !ok {
		return
	}
	edgeType, ok := optionalEdgeType(w, r)
	if !ok {
		return
	}

	path, err := h.edges.FindShortestPath(r.Context(), sourceID, targetID,
		edgeType, intParam(r, "max_distance", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, path)
}

// Neighbors handles GET /nodes/{nodeID}/neighbors?type=&direction=&distance=
func (h *GraphHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.pathNodeID(w, r)
	if !ok {
		return
	}
	edgeType, ok := optionalEdgeType(w, r)
	if !ok {
		return
	}
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}

	var (
		ids []valueobjects.NodeID
		err error
	)
	if distance := intParam(r, "distance", 1); distance > 1 {
		ids, err = h.edges.GetNodesAtDistance(r.Context(), nodeID, distance, edgeType, direction)
	} else {
		ids, err = h.edges.GetNeighbors(r.Context(), nodeID, edgeType, direction)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ids)
}

// Subgraph handles GET /nodes/{nodeID}/subgraph?depth=&type=&direction=
func (h *GraphHandler) Subgraph(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.pathNodeID(w, r)
	if !ok {
		return
	}
	edgeType, ok := optionalEdgeType(w, r)
	if !ok {
		return
	}
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}

	subgraph, err := h.edges.ExtractSubgraph(r.Context(), nodeID,
		intParam(r, "depth", 1), edgeType, direction)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, subgraph)
}

// Components handles GET /graph/components?type=&min_size=
func (h *GraphHandler) Components(w http.ResponseWriter, r *http.Request) {
	edgeType, ok := optionalEdgeType(w, r)
	if !ok {
		return
	}

	components, err := h.edges.FindConnectedComponents(r.Context(), edgeType,
		intParam(r, "min_size", 1))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, components)
}

// Centrality handles GET /graph/centrality?measure=&limit=
func (h *GraphHandler) Centrality(w http.ResponseWriter, r *http.Request) {
	measure := services.CentralityMeasure(r.URL.Query().Get("measure"))
	if measure == "" {
		measure = services.CentralityDegree
	}

	result, err := h.graph.GetNodesByCentrality(r.Context(), measure, intParam(r, "limit", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// Clusters handles GET /graph/clusters?algorithm=&min_size=
func (h *GraphHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	algorithm := services.ClusterAlgorithm(r.URL.Query().Get("algorithm"))
	if algorithm == "" {
		algorithm = services.ClusterConnectedComponents
	}

	result, err := h.graph.FindClusters(r.Context(), algorithm, intParam(r, "min_size", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// Analyze handles GET /graph/analysis
func (h *GraphHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.graph.AnalyzeGraph(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, analysis)
}

// Children handles GET /nodes/{nodeID}/children
func (h *GraphHandler) Children(w http.ResponseWriter, r *http.Request) {
	h.respondHierarchy(w, r, h.edges.GetChildren)
}

// Ancestors handles GET /nodes/{nodeID}/ancestors
func (h *GraphHandler) Ancestors(w http.ResponseWriter, r *http.Request) {
	h.respondHierarchy(w, r, h.edges.GetAncestors)
}

// Parent handles GET /nodes/{nodeID}/parent. A root responds 200 with
// null.
func (h *GraphHandler) Parent(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.pathNodeID(w, r)
	if !ok {
		return
	}

	parent, err := h.edges.GetParent(r.Context(), nodeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if parent.IsZero() {
		common.RespondJSON(w, http.StatusOK, nil)
		return
	}

	common.RespondJSON(w, http.StatusOK, parent)
}

// Descendants handles GET /nodes/{nodeID}/descendants?max_depth=
func (h *GraphHandler) Descendants(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.pathNodeID(w, r)
	if !ok {
		return
	}

	ids, err := h.edges.GetDescendants(r.Context(), nodeID, intParam(r, "max_depth", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ids)
}

// Roots handles GET /graph/roots
func (h *GraphHandler) Roots(w http.ResponseWriter, r *http.Request) {
	ids, err := h.edges.GetRootNodes(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ids)
}

// Leaves handles GET /graph/leaves
func (h *GraphHandler) Leaves(w http.ResponseWriter, r *http.Request) {
	ids, err := h.edges.GetLeafNodes(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ids)
}

// Sequence handles GET /nodes/{nodeID}/sequence?max_length=
func (h *GraphHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.pathNodeID(w, r)
	if !ok {
		return
	}

	chain, err := h.edges.GetSequence(r.Context(), nodeID, intParam(r, "max_length", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, chain)
}

// Sequences handles GET /graph/sequences?min_length=
func (h *GraphHandler) Sequences(w http.ResponseWriter, r *http.Request) {
	chains, err := h.edges.GetAllSequences(r.Context(), intParam(r, "min_length", 0))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, chains)
}

// Helper methods

func (h *GraphHandler) respondHierarchy(
	w http.ResponseWriter,
	r *http.Request,
	query func(context.Context, valueobjects.NodeID) ([]valueobjects.NodeID, error),
) {
	nodeID, ok := h.pathNodeID(w, r)
	if !ok {
		return
	}

	ids, err := query(r.Context(), nodeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ids)
}

func (h *GraphHandler) pathNodeID(w http.ResponseWriter, r *http.Request) (valueobjects.NodeID, bool) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid node ID format")
		return valueobjects.NodeID{}, false
	}
	return id, true
}

func (h *GraphHandler) endpoints(w http.ResponseWriter, r *http.Request) (valueobjects.NodeID, valueobjects.NodeID, bool) {
	sourceID, err := valueobjects.NewNodeIDFromString(r.URL.Query().Get("source"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid source node ID")
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	targetID, err := valueobjects.NewNodeIDFromString(r.URL.Query().Get("target"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid target node ID")
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	return sourceID, targetID, true
}

func (h *GraphHandler) direction(w http.ResponseWriter, r *http.Request) (valueobjects.Direction, bool) {
	raw := r.URL.Query().Get("direction")
	if raw == "" {
		return valueobjects.DirectionBoth, true
	}
	direction, err := valueobjects.ParseDirection(raw)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", err.Error())
		return "", false
	}
	return direction, true
}

// intParam parses an integer query parameter, falling back on absence
// or garbage.
func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
