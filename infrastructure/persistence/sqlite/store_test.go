package sqlite

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	version, err := currentVersion(db)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, version)

	var recorded int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&recorded))
	assert.Equal(t, len(migrations), recorded)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, runMigrations(db))

	var recorded int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&recorded))
	assert.Equal(t, len(migrations), recorded)
}

func TestTimeCodecRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC)

	decoded, err := decodeTime(encodeTime(stamp))
	require.NoError(t, err)
	assert.True(t, decoded.Equal(stamp))

	null, err := decodeNullTime(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, null)

	ptr, err := decodeNullTime(sql.NullString{String: encodeTime(stamp), Valid: true})
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.True(t, ptr.Equal(stamp))
}
