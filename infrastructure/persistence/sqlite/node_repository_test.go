package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

func openTestDB(t *testing.T) (ports.NodeRepository, ports.EdgeRepository) {
	t.Helper()
	logger := zap.NewNop()
	db, err := Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNodeRepository(db, logger), NewEdgeRepository(db, logger)
}

func mustNode(t *testing.T, nodeType valueobjects.NodeType, name string) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(nodeType, name)
	require.NoError(t, err)
	return node
}

func TestNodeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	node := mustNode(t, valueobjects.NodeTypeTask, "write report")
	node.Content = "quarterly numbers"
	node.Folder = "work/reports"
	node.Priority = 7
	node.AddTag("urgent")
	node.AddTag("finance")
	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	node.DueAt = &due
	node.Location = &valueobjects.Location{Latitude: 51.5, Longitude: -0.12, Altitude: 11}

	require.NoError(t, nodes.Create(ctx, node))

	got, err := nodes.Get(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.Name, got.Name)
	assert.Equal(t, node.Content, got.Content)
	assert.Equal(t, node.Folder, got.Folder)
	assert.Equal(t, node.Priority, got.Priority)
	assert.Equal(t, []string{"urgent", "finance"}, got.Tags)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))
	require.NotNil(t, got.Location)
	assert.Equal(t, 51.5, got.Location.Latitude)
	assert.Equal(t, 1, got.Version)
}

func TestNodeRepository_CreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	node := mustNode(t, valueobjects.NodeTypeNote, "once")
	require.NoError(t, nodes.Create(ctx, node))

	err := nodes.Create(ctx, node)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestNodeRepository_UpdateBumpsVersion(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	node := mustNode(t, valueobjects.NodeTypeNote, "draft")
	require.NoError(t, nodes.Create(ctx, node))

	node.Name = "final"
	require.NoError(t, nodes.Update(ctx, node))

	got, err := nodes.Get(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Name)
	assert.Equal(t, 2, got.Version)
}

func TestNodeRepository_UpdateMissingNode(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	node := mustNode(t, valueobjects.NodeTypeNote, "ghost")
	err := nodes.Update(ctx, node)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestNodeRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	node := mustNode(t, valueobjects.NodeTypeNote, "temporary")
	require.NoError(t, nodes.Create(ctx, node))
	require.NoError(t, nodes.Delete(ctx, node.ID))

	// Get still sees it, with the deletion recorded.
	got, err := nodes.Get(ctx, node.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
	assert.Equal(t, 2, got.Version)

	visible, err := nodes.GetAll(ctx, ports.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := nodes.GetAll(ctx, ports.ListOptions{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Deleting again is NOT_FOUND, not a second bump.
	err = nodes.Delete(ctx, node.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestNodeRepository_HardDelete(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)

	a := mustNode(t, valueobjects.NodeTypeNote, "a")
	b := mustNode(t, valueobjects.NodeTypeNote, "b")
	require.NoError(t, nodes.Create(ctx, a))
	require.NoError(t, nodes.Create(ctx, b))

	link, err := entities.NewLinkEdge(a.ID, b.ID, "", 1.0)
	require.NoError(t, err)
	require.NoError(t, edges.Create(ctx, link))

	// Referenced nodes cannot be hard-deleted.
	err = nodes.HardDelete(ctx, a.ID)
	assert.True(t, pkgerrors.IsConflict(err))

	require.NoError(t, edges.Delete(ctx, link.ID))
	require.NoError(t, nodes.HardDelete(ctx, a.ID))

	_, err = nodes.Get(ctx, a.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestNodeRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"first", "second", "third", "fourth"}
	for i, name := range names {
		node := mustNode(t, valueobjects.NodeTypeNote, name)
		node.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, nodes.Create(ctx, node))
	}

	page, err := nodes.GetAll(ctx, ports.Limited(2, 1))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "second", page[0].Name)
	assert.Equal(t, "third", page[1].Name)

	offset := 1
	_, err = nodes.GetAll(ctx, ports.ListOptions{Offset: &offset})
	assert.True(t, pkgerrors.IsInvalidData(err))
}

func TestNodeRepository_SearchRanksNameMatchesFirst(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	inContent := mustNode(t, valueobjects.NodeTypeNote, "meeting minutes")
	inContent.Content = "discussed the kubernetes migration"
	inContent.CreatedAt = base
	require.NoError(t, nodes.Create(ctx, inContent))

	inName := mustNode(t, valueobjects.NodeTypeNote, "kubernetes cheatsheet")
	inName.CreatedAt = base.Add(time.Hour)
	require.NoError(t, nodes.Create(ctx, inName))

	deleted := mustNode(t, valueobjects.NodeTypeNote, "kubernetes scratch")
	require.NoError(t, nodes.Create(ctx, deleted))
	require.NoError(t, nodes.Delete(ctx, deleted.ID))

	results, err := nodes.Search(ctx, "kubernetes", ports.ListOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "kubernetes cheatsheet", results[0].Name)
	assert.Equal(t, "meeting minutes", results[1].Name)
}

func TestNodeRepository_FilterFamilies(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	task := mustNode(t, valueobjects.NodeTypeTask, "pay invoice")
	task.Folder = "work"
	task.AddTag("billing")
	due := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	task.DueAt = &due
	require.NoError(t, nodes.Create(ctx, task))

	note := mustNode(t, valueobjects.NodeTypeNote, "grocery list")
	note.Folder = "home"
	note.AddTag("errand")
	require.NoError(t, nodes.Create(ctx, note))

	byType, err := nodes.GetByType(ctx, valueobjects.NodeTypeTask, ports.ListOptions{})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "pay invoice", byType[0].Name)

	byFolder, err := nodes.GetByFolder(ctx, "home", ports.ListOptions{})
	require.NoError(t, err)
	require.Len(t, byFolder, 1)
	assert.Equal(t, "grocery list", byFolder[0].Name)

	byTags, err := nodes.GetByTags(ctx, []string{"billing", "unused"}, ports.ListOptions{})
	require.NoError(t, err)
	require.Len(t, byTags, 1)
	assert.Equal(t, "pay invoice", byTags[0].Name)

	byDate, err := nodes.GetByDateRange(ctx, ports.DateFieldDue,
		due.Add(-time.Hour), due.Add(time.Hour), ports.ListOptions{})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "pay invoice", byDate[0].Name)

	_, err = nodes.GetByDateRange(ctx, ports.DateField("updated_on"),
		due, due, ports.ListOptions{})
	assert.True(t, pkgerrors.IsInvalidData(err))
}

func TestNodeRepository_PendingSync(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	node := mustNode(t, valueobjects.NodeTypeNote, "syncable")
	require.NoError(t, nodes.Create(ctx, node))

	pending, err := nodes.GetPendingSync(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	node.MarkSynced(node.Version + 1)
	require.NoError(t, nodes.Update(ctx, node))

	pending, err = nodes.GetPendingSync(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNodeRepository_GetWithLocation(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	located := mustNode(t, valueobjects.NodeTypePlace, "office")
	located.Location = &valueobjects.Location{Latitude: 40.7, Longitude: -74.0}
	require.NoError(t, nodes.Create(ctx, located))
	require.NoError(t, nodes.Create(ctx, mustNode(t, valueobjects.NodeTypeNote, "nowhere")))

	results, err := nodes.GetWithLocation(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "office", results[0].Name)
}

func TestNodeRepository_ExecuteSQL(t *testing.T) {
	ctx := context.Background()
	nodes, _ := openTestDB(t)

	require.NoError(t, nodes.Create(ctx, mustNode(t, valueobjects.NodeTypeNote, "row")))

	results, err := nodes.ExecuteSQL(ctx, `SELECT COUNT(*) AS n FROM nodes`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0]["n"])

	_, err = nodes.ExecuteSQL(ctx, `DELETE FROM nodes`)
	assert.True(t, pkgerrors.IsInvalidData(err))

	count, err := nodes.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
