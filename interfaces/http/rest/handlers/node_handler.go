package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/validators"
	"isometry-backend/domain/core/valueobjects"
	"isometry-backend/pkg/common"
	pkgerrors "isometry-backend/pkg/errors"
	"isometry-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	nodes     ports.NodeRepository
	validator *validators.NodeValidator
	logger    *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(nodes ports.NodeRepository, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		nodes:     nodes,
		validator: validators.NewNodeValidator(),
		logger:    logger,
	}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Type       string               `json:"type" validate:"required,min=1,max=100"`
	Name       string               `json:"name" validate:"required,min=1,max=500"`
	Content    string               `json:"content,omitempty"`
	Tags       []string             `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	Folder     string               `json:"folder,omitempty" validate:"omitempty,max=500"`
	Priority   *int                 `json:"priority,omitempty" validate:"omitempty,min=0,max=10"`
	Importance *int                 `json:"importance,omitempty" validate:"omitempty,min=0,max=10"`
	DueAt      *time.Time           `json:"due_at,omitempty"`
	EventStart *time.Time           `json:"event_start,omitempty"`
	EventEnd   *time.Time           `json:"event_end,omitempty"`
	Location   *valueobjects.Location `json:"location,omitempty"`
}

// UpdateNodeRequest represents the request body for updating a node.
// Nil fields are left untouched.
type UpdateNodeRequest struct {
	Name       *string                `json:"name,omitempty" validate:"omitempty,min=1,max=500"`
	Content    *string                `json:"content,omitempty"`
	Tags       *[]string              `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	Folder     *string                `json:"folder,omitempty" validate:"omitempty,max=500"`
	Priority   *int                   `json:"priority,omitempty" validate:"omitempty,min=0,max=10"`
	Importance *int                   `json:"importance,omitempty" validate:"omitempty,min=0,max=10"`
	DueAt      *time.Time             `json:"due_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	EventStart *time.Time             `json:"event_start,omitempty"`
	EventEnd   *time.Time             `json:"event_end,omitempty"`
	Location   *valueobjects.Location `json:"location,omitempty"`
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	node, err := entities.NewNode(valueobjects.NodeType(req.Type), req.Name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	node.Content = req.Content
	node.Folder = req.Folder
	node.DueAt = req.DueAt
	node.EventStart = req.EventStart
	node.EventEnd = req.EventEnd
	node.Location = req.Location
	if req.Priority != nil {
		node.Priority = *req.Priority
	}
	if req.Importance != nil {
		node.Importance = *req.Importance
	}
	for _, tag := range req.Tags {
		node.AddTag(tag)
	}

	if err := h.validator.Validate(node); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.nodes.Create(r.Context(), node); err != nil {
		h.logger.Error("Failed to create node",
			zap.String("nodeID", node.ID.String()),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, node)
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	node, err := h.nodes.Get(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// UpdateNode handles PUT /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	var req UpdateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	node, err := h.nodes.Get(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if req.Name != nil {
		node.Name = *req.Name
	}
	if req.Content != nil {
		node.Content = *req.Content
	}
	if req.Tags != nil {
		node.Tags = *req.Tags
	}
	if req.Folder != nil {
		node.Folder = *req.Folder
	}
	if req.Priority != nil {
		node.Priority = *req.Priority
	}
	if req.Importance != nil {
		node.Importance = *req.Importance
	}
	if req.DueAt != nil {
		node.DueAt = req.DueAt
	}
	if req.CompletedAt != nil {
		node.CompletedAt = req.CompletedAt
	}
	if req.EventStart != nil {
		node.EventStart = req.EventStart
	}
	if req.EventEnd != nil {
		node.EventEnd = req.EventEnd
	}
	if req.Location != nil {
		node.Location = req.Location
	}

	if err := h.validator.Validate(node); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.nodes.Update(r.Context(), node); err != nil {
		h.logger.Error("Failed to update node",
			zap.String("nodeID", id.String()),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /nodes/{nodeID}. Default is a soft delete;
// ?hard=true removes the row and fails with 409 while edges still
// reference it.
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	var err error
	if r.URL.Query().Get("hard") == "true" {
		err = h.nodes.HardDelete(r.Context(), id)
	} else {
		err = h.nodes.Delete(r.Context(), id)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreNode handles POST /nodes/{nodeID}/restore
func (h *NodeHandler) RestoreNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	node, err := h.nodes.Get(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if !node.IsDeleted() {
		common.RespondJSON(w, http.StatusOK, node)
		return
	}

	node.Restore()
	if err := h.nodes.Update(r.Context(), node); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// ListNodes handles GET /nodes. Filters: type, folder, tags (comma
// separated, OR-matched), from/to with date_field; at most one filter
// family applies, checked in that order.
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)
	opts := ports.ListOptions{
		Limit:          page.Limit,
		Offset:         page.Offset,
		IncludeDeleted: page.IncludeDeleted,
	}

	q := r.URL.Query()
	var (
		nodes []*entities.Node
		err   error
	)
	switch {
	case q.Get("type") != "":
		nodes, err = h.nodes.GetByType(r.Context(), valueobjects.NodeType(q.Get("type")), opts)
	case q.Get("folder") != "":
		nodes, err = h.nodes.GetByFolder(r.Context(), q.Get("folder"), opts)
	case q.Get("tags") != "":
		nodes, err = h.nodes.GetByTags(r.Context(), strings.Split(q.Get("tags"), ","), opts)
	case q.Get("from") != "" || q.Get("to") != "":
		nodes, err = h.listByDateRange(r, opts)
	default:
		nodes, err = h.nodes.GetAll(r.Context(), opts)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, nodes)
}

func (h *NodeHandler) listByDateRange(r *http.Request, opts ports.ListOptions) ([]*entities.Node, error) {
	q := r.URL.Query()

	field := ports.DateField(q.Get("date_field"))
	if field == "" {
		field = ports.DateFieldCreated
	}
	if !field.IsValid() {
		return nil, pkgerrors.NewInvalidDataError("unknown date_field " + string(field))
	}

	start, end := time.Time{}, time.Now().UTC()
	if raw := q.Get("from"); raw != "" {
		t, err := utils.ParseRFC3339(raw)
		if err != nil {
			return nil, pkgerrors.NewInvalidDataError("from must be RFC3339")
		}
		start = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := utils.ParseRFC3339(raw)
		if err != nil {
			return nil, pkgerrors.NewInvalidDataError("to must be RFC3339")
		}
		end = t
	}

	return h.nodes.GetByDateRange(r.Context(), field, start, end, opts)
}

// SearchNodes handles GET /search?q=
func (h *NodeHandler) SearchNodes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "query parameter q is required")
		return
	}

	page := common.ExtractPageParams(r)
	opts := ports.ListOptions{Limit: page.Limit, Offset: page.Offset}

	nodes, err := h.nodes.Search(r.Context(), query, opts)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, nodes)
}

// GetPendingSync handles GET /nodes/pending-sync
func (h *NodeHandler) GetPendingSync(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.nodes.GetPendingSync(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, nodes)
}

// GetWithLocation handles GET /nodes/with-location
func (h *NodeHandler) GetWithLocation(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.nodes.GetWithLocation(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, nodes)
}

// QueryRequest represents the body of the raw query endpoint
type QueryRequest struct {
	SQL  string        `json:"sql" validate:"required"`
	Args []interface{} `json:"args,omitempty"`
}

// ExecuteQuery handles POST /query, a read-only SQL escape hatch.
func (h *NodeHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rows, err := h.nodes.ExecuteSQL(r.Context(), req.SQL, req.Args...)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID, _ := common.GetUserID(r.Context())
	h.logger.Info("Ad-hoc query executed",
		zap.String("userID", userID),
		zap.Int("rows", len(rows)),
	)
	common.RespondJSON(w, http.StatusOK, rows)
}

// nodeID parses the nodeID path parameter, responding on failure.
func (h *NodeHandler) nodeID(w http.ResponseWriter, r *http.Request) (valueobjects.NodeID, bool) {
	raw := chi.URLParam(r, "nodeID")
	id, err := valueobjects.NewNodeIDFromString(raw)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_DATA", "invalid node ID format")
		return valueobjects.NodeID{}, false
	}
	return id, true
}
