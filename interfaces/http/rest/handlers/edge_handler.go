package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/application/services"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	"isometry-backend/pkg/common"
	"isometry-backend/pkg/utils"
)

// EdgeHandler handles edge-related HTTP requests. Typed construction
// goes through the graph service so its invariants hold; plain edge
// reads and deletes hit the repository directly.
type EdgeHandler struct {
	graph  *services.GraphService
	edges  ports.EdgeRepository
	logger *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(graph *services.GraphService, edges ports.EdgeRepository, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{graph: graph, edges: edges, logger: logger}
}

// CreateLinkRequest represents the request body for creating a link
type CreateLinkRequest struct {
	SourceID string  `json:"source_id" validate:"required,uuid"`
	TargetID string  `json:"target_id" validate:"required,uuid"`
	Label    string  `json:"label,omitempty" validate:"omitempty,max=200"`
	Weight   float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
}

// CreateLink handles POST /edges/link
func (h *EdgeHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	sourceID, targetID, ok := h.pair(w, req.SourceID, req.TargetID)
	if !ok {
		return
	}
	if req.Weight == 0 {
		req.Weight = 1.0
	}

	edge, err := h.graph.CreateLink(r.Context(), sourceID, targetID, req.Label, req.Weight)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, edge)
}

// CreateNestRequest represents the request body for nesting a node
type CreateNestRequest struct {
	ParentID string `json:"parent_id" validate:"required,uuid"`
	ChildID  string `json:"child_id" validate:"required,uuid"`
}

// CreateNest handles POST /edges/nest
func (h *EdgeHandler) CreateNest(w http.ResponseWriter, r *http.Request) {
	var req CreateNestRequest
	if !h.decode(w, r, &req) {
		return
	}

	parentID, childID, ok := h.pair(w, req.ParentID, req.ChildID)
	if !ok {
		return
	}

	edge, err := h.graph.CreateNest(r.Context(), parentID, childID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, edge)
}

// CreateSequenceRequest represents the request body for chaining nodes
type CreateSequenceRequest struct {
	NodeIDs []string `json:"node_ids" validate:"required,min=2,dive,uuid"`
}

// CreateSequence handles POST /edges/sequence
func (h *EdgeHandler) CreateSequence(w http.ResponseWriter, r *http.Request) {
	var req CreateSequenceRequest
	if !h.decode(w, r, &req) {
		return
	}

	ids := make([]valueobjects.NodeID, 0, len(req.NodeIDs))
	for _, raw := range req.NodeIDs {
		id, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid node ID "+raw)
			return
		}
		ids = append(ids, id)
	}

	edges, err := h.graph.CreateSequence(r.Context(), ids)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, edges)
}

// CreateAffinityRequest represents the request body for an affinity
type CreateAffinityRequest struct {
	SourceID string  `json:"source_id" validate:"required,uuid"`
	TargetID string  `json:"target_id" validate:"required,uuid"`
	Weight   float64 `json:"weight" validate:"min=0,max=1"`
}

// CreateAffinity handles POST /edges/affinity
func (h *EdgeHandler) CreateAffinity(w http.ResponseWriter, r *http.Request) {
	var req CreateAffinityRequest
	if !h.decode(w, r, &req) {
		return
	}

	sourceID, targetID, ok := h.pair(w, req.SourceID, req.TargetID)
	if !ok {
		return
	}

	edge, err := entities.NewAffinityEdge(sourceID, targetID, req.Weight)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.edges.Create(r.Context(), edge); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, edge)
}

// GetEdge handles GET /edges/{edgeID}
func (h *EdgeHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	edge, err := h.edges.Get(r.Context(), chi.URLParam(r, "edgeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, edge)
}

// UpdateEdgeRequest allows mutating an edge's descriptive attributes.
// Structural fields (type, endpoints) are immutable over HTTP.
type UpdateEdgeRequest struct {
	Label      *string                `json:"label,omitempty" validate:"omitempty,max=200"`
	Weight     *float64               `json:"weight,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// UpdateEdge handles PUT /edges/{edgeID}
func (h *EdgeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var req UpdateEdgeRequest
	if !h.decode(w, r, &req) {
		return
	}

	edge, err := h.edges.Get(r.Context(), chi.URLParam(r, "edgeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if req.Label != nil {
		edge.Label = *req.Label
	}
	if req.Weight != nil {
		edge.Weight = *req.Weight
	}
	if req.Properties != nil {
		edge.Properties = req.Properties
	}

	if err := h.edges.Update(r.Context(), edge); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, edge)
}

// DeleteEdge handles DELETE /edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.edges.Delete(r.Context(), chi.URLParam(r, "edgeID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEdges handles GET /edges?type=
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edgeType, err := valueobjects.ParseEdgeType(r.URL.Query().Get("type"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", err.Error())
		return
	}

	edges, err := h.edges.GetByType(r.Context(), edgeType)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, edges)
}

// NodeEdges handles GET /nodes/{nodeID}/edges?direction=&type=
func (h *EdgeHandler) NodeEdges(w http.ResponseWriter, r *http.Request) {
	nodeID, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid node ID format")
		return
	}

	edgeType, ok := optionalEdgeType(w, r)
	if !ok {
		return
	}

	direction := valueobjects.DirectionBoth
	if raw := r.URL.Query().Get("direction"); raw != "" {
		direction, err = valueobjects.ParseDirection(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", err.Error())
			return
		}
	}

	var edges []*entities.Edge
	switch direction {
	case valueobjects.DirectionOutgoing:
		edges, err = h.edges.GetOutgoingEdges(r.Context(), nodeID, edgeType)
	case valueobjects.DirectionIncoming:
		edges, err = h.edges.GetIncomingEdges(r.Context(), nodeID, edgeType)
	default:
		edges, err = h.edges.GetConnectedEdges(r.Context(), nodeID, edgeType)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, edges)
}

func (h *EdgeHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid request body: "+err.Error())
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return false
	}
	return true
}

func (h *EdgeHandler) pair(w http.ResponseWriter, rawSource, rawTarget string) (valueobjects.NodeID, valueobjects.NodeID, bool) {
	sourceID, err := valueobjects.NewNodeIDFromString(rawSource)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid source node ID")
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	targetID, err := valueobjects.NewNodeIDFromString(rawTarget)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid target node ID")
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	return sourceID, targetID, true
}

// optionalEdgeType parses the type query parameter; nil means all
// types.
func optionalEdgeType(w http.ResponseWriter, r *http.Request) (*valueobjects.EdgeType, bool) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return nil, true
	}
	edgeType, err := valueobjects.ParseEdgeType(raw)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", err.Error())
		return nil, false
	}
	return &edgeType, true
}
