package entities

import (
	"strings"
	"time"

	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

// Node is a typed knowledge unit, the vertex of the property graph.
// Attributes follow the LATCH axes: Location, Alphabet (name), Time,
// Category (type, tags, folder) and Hierarchy (priority, importance).
//
// Repository reads return fully materialized nodes; server-assigned
// fields (ID, Version, CreatedAt) are set once at construction.
type Node struct {
	ID       valueobjects.NodeID   `json:"id"`
	Type     valueobjects.NodeType `json:"type"`
	Name     string                `json:"name"`
	Content  string                `json:"content,omitempty"`
	Location *valueobjects.Location `json:"location,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	EventStart *time.Time `json:"event_start,omitempty"`
	EventEnd   *time.Time `json:"event_end,omitempty"`

	Tags     []string `json:"tags,omitempty"`
	Folder   string   `json:"folder,omitempty"`
	Priority int      `json:"priority"`
	Importance int    `json:"importance"`

	// DeletedAt is nil while the node is alive; soft delete sets it.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Version is a monotonically increasing local counter, bumped on
	// every update.
	Version int `json:"version"`

	// Sync bookkeeping owned by the external reconciliation layer but
	// persisted alongside the node.
	SyncVersion  int        `json:"sync_version"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

const (
	// MinPriority and MaxPriority bound the small-integer LATCH ranks.
	MinPriority = 0
	MaxPriority = 10
)

// NewNode creates a node with server-assigned fields populated.
func NewNode(nodeType valueobjects.NodeType, name string) (*Node, error) {
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewInvalidDataError("invalid node type: " + nodeType.String())
	}
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.NewInvalidDataError("node name cannot be empty")
	}

	now := time.Now().UTC()
	return &Node{
		ID:         valueobjects.NewNodeID(),
		Type:       nodeType,
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
		Version:    1,
	}, nil
}

// Validate checks the node's own invariants; it says nothing about
// edges, which the repositories and graph service own.
func (n *Node) Validate() error {
	if n.ID.IsZero() {
		return pkgerrors.NewInvalidDataError("node ID cannot be empty")
	}
	if !n.Type.IsValid() {
		return pkgerrors.NewInvalidDataError("invalid node type: " + n.Type.String())
	}
	if strings.TrimSpace(n.Name) == "" {
		return pkgerrors.NewInvalidDataError("node name cannot be empty")
	}
	if n.Priority < MinPriority || n.Priority > MaxPriority {
		return pkgerrors.NewInvalidDataError("priority out of range")
	}
	if n.Importance < MinPriority || n.Importance > MaxPriority {
		return pkgerrors.NewInvalidDataError("importance out of range")
	}
	if n.Location != nil {
		if err := n.Location.Validate(); err != nil {
			return pkgerrors.NewInvalidDataError(err.Error())
		}
	}
	return nil
}

// Touch bumps the version counter and the modification timestamp.
// Every repository update path goes through it.
func (n *Node) Touch() {
	n.Version++
	n.ModifiedAt = time.Now().UTC()
}

// SoftDelete marks the node deleted while keeping it queryable.
func (n *Node) SoftDelete() {
	now := time.Now().UTC()
	n.DeletedAt = &now
	n.Touch()
}

// Restore clears a soft delete.
func (n *Node) Restore() {
	n.DeletedAt = nil
	n.Touch()
}

// IsDeleted reports whether the node is soft-deleted.
func (n *Node) IsDeleted() bool {
	return n.DeletedAt != nil
}

// AddTag adds a tag, keeping the set deduplicated. Returns true when
// the tag was actually added.
func (n *Node) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || n.HasTag(tag) {
		return false
	}
	n.Tags = append(n.Tags, tag)
	return true
}

// RemoveTag removes a tag. Returns true when the tag was present.
func (n *Node) RemoveTag(tag string) bool {
	for i, t := range n.Tags {
		if t == tag {
			n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// HasTag reports whether the node carries the tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MarkSynced records a completed external reconciliation.
func (n *Node) MarkSynced(syncVersion int) {
	now := time.Now().UTC()
	n.SyncVersion = syncVersion
	n.LastSyncedAt = &now
}

// PendingSync reports whether the node has local changes the sync
// layer has not yet seen.
func (n *Node) PendingSync() bool {
	return n.LastSyncedAt == nil || n.Version > n.SyncVersion
}
