// Package mocks provides testify mocks for the repository ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
)

// MockNodeRepository mocks ports.NodeRepository
type MockNodeRepository struct {
	mock.Mock
}

func (m *MockNodeRepository) Create(ctx context.Context, node *entities.Node) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockNodeRepository) CreateBatch(ctx context.Context, nodes []*entities.Node) error {
	return m.Called(ctx, nodes).Error(0)
}

func (m *MockNodeRepository) Get(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) Update(ctx context.Context, node *entities.Node) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockNodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNodeRepository) HardDelete(ctx context.Context, id valueobjects.NodeID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNodeRepository) GetAll(ctx context.Context, opts ports.ListOptions) ([]*entities.Node, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) Count(ctx context.Context, includeDeleted bool) (int, error) {
	args := m.Called(ctx, includeDeleted)
	return args.Int(0), args.Error(1)
}

func (m *MockNodeRepository) Search(ctx context.Context, query string, opts ports.ListOptions) ([]*entities.Node, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) GetByType(ctx context.Context, nodeType valueobjects.NodeType, opts ports.ListOptions) ([]*entities.Node, error) {
	args := m.Called(ctx, nodeType, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) GetByFolder(ctx context.Context, folder string, opts ports.ListOptions) ([]*entities.Node, error) {
	args := m.Called(ctx, folder, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) GetByTags(ctx context.Context, tags []string, opts ports.ListOptions) ([]*entities.Node, error) {
	args := m.Called(ctx, tags, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) GetByDateRange(ctx context.Context, field ports.DateField, start, end time.Time, opts ports.ListOptions) ([]*entities.Node, error) {
	args := m.Called(ctx, field, start, end, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) GetPendingSync(ctx context.Context) ([]*entities.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) GetWithLocation(ctx context.Context) ([]*entities.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Node), args.Error(1)
}

func (m *MockNodeRepository) ExecuteSQL(ctx context.Context, query string, queryArgs ...interface{}) ([]map[string]interface{}, error) {
	callArgs := append([]interface{}{ctx, query}, queryArgs...)
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

// MockEdgeRepository mocks ports.EdgeRepository
type MockEdgeRepository struct {
	mock.Mock
}

func (m *MockEdgeRepository) Create(ctx context.Context, edge *entities.Edge) error {
	return m.Called(ctx, edge).Error(0)
}

func (m *MockEdgeRepository) CreateBatch(ctx context.Context, edges []*entities.Edge) error {
	return m.Called(ctx, edges).Error(0)
}

func (m *MockEdgeRepository) Get(ctx context.Context, id string) (*entities.Edge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Edge), args.Error(1)
}

func (m *MockEdgeRepository) Update(ctx context.Context, edge *entities.Edge) error {
	return m.Called(ctx, edge).Error(0)
}

func (m *MockEdgeRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEdgeRepository) GetByType(ctx context.Context, edgeType valueobjects.EdgeType) ([]*entities.Edge, error) {
	args := m.Called(ctx, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Edge), args.Error(1)
}

func (m *MockEdgeRepository) GetOutgoingEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	args := m.Called(ctx, nodeID, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Edge), args.Error(1)
}

func (m *MockEdgeRepository) GetIncomingEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	args := m.Called(ctx, nodeID, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Edge), args.Error(1)
}

func (m *MockEdgeRepository) GetConnectedEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	args := m.Called(ctx, nodeID, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Edge), args.Error(1)
}

func (m *MockEdgeRepository) GetNeighbors(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, nodeID, edgeType, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetNodesAtDistance(ctx context.Context, sourceID valueobjects.NodeID, distance int, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, sourceID, distance, edgeType, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) FindShortestPath(ctx context.Context, sourceID, targetID valueobjects.NodeID, edgeType *valueobjects.EdgeType, maxDistance int) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, sourceID, targetID, edgeType, maxDistance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) ExtractSubgraph(ctx context.Context, centerID valueobjects.NodeID, depth int, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) (*ports.Subgraph, error) {
	args := m.Called(ctx, centerID, depth, edgeType, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Subgraph), args.Error(1)
}

func (m *MockEdgeRepository) FindConnectedComponents(ctx context.Context, edgeType *valueobjects.EdgeType, minSize int) ([][]valueobjects.NodeID, error) {
	args := m.Called(ctx, edgeType, minSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetChildren(ctx context.Context, nodeID valueobjects.NodeID) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetParent(ctx context.Context, nodeID valueobjects.NodeID) (valueobjects.NodeID, error) {
	args := m.Called(ctx, nodeID)
	return args.Get(0).(valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetDescendants(ctx context.Context, nodeID valueobjects.NodeID, maxDepth int) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, nodeID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetAncestors(ctx context.Context, nodeID valueobjects.NodeID) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetRootNodes(ctx context.Context) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetLeafNodes(ctx context.Context) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetSequence(ctx context.Context, startID valueobjects.NodeID, maxLength int) ([]valueobjects.NodeID, error) {
	args := m.Called(ctx, startID, maxLength)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobjects.NodeID), args.Error(1)
}

func (m *MockEdgeRepository) GetAllSequences(ctx context.Context, minLength int) ([][]valueobjects.NodeID, error) {
	args := m.Called(ctx, minLength)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]valueobjects.NodeID), args.Error(1)
}
