package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

// Driver failures must surface as typed DATABASE errors, never as raw
// driver errors or empty results.

func TestNodeRepository_GetSurfacesDriverFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM nodes WHERE id = \?`).
		WillReturnError(errors.New("disk I/O error"))

	repo := NewNodeRepository(db, zap.NewNop())
	_, err = repo.Get(context.Background(), valueobjects.NewNodeID())

	assert.True(t, pkgerrors.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNodeRepository_CountSurfacesDriverFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM nodes`).
		WillReturnError(errors.New("database is locked"))

	repo := NewNodeRepository(db, zap.NewNop())
	_, err = repo.Count(context.Background(), true)

	assert.True(t, pkgerrors.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEdgeRepository_GetByTypeSurfacesDriverFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM edges WHERE type = \?`).
		WillReturnError(errors.New("disk I/O error"))

	repo := NewEdgeRepository(db, zap.NewNop())
	_, err = repo.GetByType(context.Background(), valueobjects.EdgeTypeLink)

	assert.True(t, pkgerrors.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEdgeRepository_CreateChecksEndpointBeforeInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The endpoint existence probe fails; no INSERT may follow.
	mock.ExpectQuery(`SELECT 1 FROM nodes WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewEdgeRepository(db, zap.NewNop())
	edge, err := entities.NewLinkEdge(valueobjects.NewNodeID(), valueobjects.NewNodeID(), "", 1.0)
	require.NoError(t, err)

	err = repo.Create(context.Background(), edge)

	assert.True(t, pkgerrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
