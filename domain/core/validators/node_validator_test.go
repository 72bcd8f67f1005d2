package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isometry-backend/domain/config"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

func newTestNode(t *testing.T) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(valueobjects.NodeTypeNote, "A note")
	require.NoError(t, err)
	return node
}

func TestNodeValidator_AcceptsReasonableNode(t *testing.T) {
	v := NewNodeValidator()

	node := newTestNode(t)
	node.Content = "some content"
	node.Tags = []string{"go", "graphs"}
	node.Folder = "projects/knowledge"

	assert.NoError(t, v.Validate(node))
}

func TestNodeValidator_NameBounds(t *testing.T) {
	v := NewNodeValidator()

	node := newTestNode(t)
	node.Name = strings.Repeat("x", 501)
	assert.True(t, pkgerrors.IsValidation(v.Validate(node)))

	node.Name = "   "
	assert.True(t, pkgerrors.IsValidation(v.Validate(node)))
}

func TestNodeValidator_TagRules(t *testing.T) {
	v := NewNodeValidator()

	node := newTestNode(t)
	node.Tags = []string{"ok", "with,comma"}
	assert.True(t, pkgerrors.IsValidation(v.Validate(node)))

	node.Tags = []string{strings.Repeat("t", 101)}
	assert.True(t, pkgerrors.IsValidation(v.Validate(node)))

	node.Tags = make([]string, 51)
	for i := range node.Tags {
		node.Tags[i] = "t" + strings.Repeat("a", i%5+1)
	}
	assert.True(t, pkgerrors.IsValidation(v.Validate(node)))
}

func TestNodeValidator_FolderShape(t *testing.T) {
	v := NewNodeValidator()
	node := newTestNode(t)

	for _, folder := range []string{"/leading", "trailing/", "a//b"} {
		node.Folder = folder
		assert.True(t, pkgerrors.IsValidation(v.Validate(node)), folder)
	}

	node.Folder = "a/b/c"
	assert.NoError(t, v.Validate(node))
}

func TestNodeValidator_CustomConfig(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxTagsPerNode = 1
	v := NewNodeValidatorWithConfig(cfg)

	node := newTestNode(t)
	node.Tags = []string{"one", "two"}

	assert.True(t, pkgerrors.IsValidation(v.Validate(node)))
}
