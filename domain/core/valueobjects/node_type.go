package valueobjects

import "strings"

// NodeType classifies a node along the Category axis.
// The built-in set is fixed; anything else is carried as a
// "custom:" prefixed variant so the taxonomy stays open-ended
// without losing the closed core.
type NodeType string

const (
	NodeTypeNote     NodeType = "note"
	NodeTypeTask     NodeType = "task"
	NodeTypeEvent    NodeType = "event"
	NodeTypePerson   NodeType = "person"
	NodeTypePlace    NodeType = "place"
	NodeTypeResource NodeType = "resource"
)

const customNodeTypePrefix = "custom:"

// CustomNodeType builds an open-variant node type from a caller-supplied name.
func CustomNodeType(name string) NodeType {
	return NodeType(customNodeTypePrefix + strings.TrimSpace(name))
}

// IsCustom reports whether the type is an open custom variant.
func (t NodeType) IsCustom() bool {
	return strings.HasPrefix(string(t), customNodeTypePrefix)
}

// CustomName returns the name portion of a custom type, or "" for built-ins.
func (t NodeType) CustomName() string {
	if !t.IsCustom() {
		return ""
	}
	return strings.TrimPrefix(string(t), customNodeTypePrefix)
}

// IsValid checks that the type is a built-in or a non-empty custom variant.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeNote, NodeTypeTask, NodeTypeEvent, NodeTypePerson, NodeTypePlace, NodeTypeResource:
		return true
	}
	return t.IsCustom() && t.CustomName() != ""
}

// String returns the string representation of the node type
func (t NodeType) String() string {
	return string(t)
}
