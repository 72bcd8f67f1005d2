package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

const nodeColumns = `id, type, name, content, latitude, longitude, altitude,
	created_at, modified_at, due_at, completed_at, event_start, event_end,
	tags, folder, priority, importance, deleted_at, version, sync_version, last_synced_at`

// NodeRepository implements ports.NodeRepository on SQLite.
type NodeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNodeRepository creates a SQLite-backed node repository.
func NewNodeRepository(db *sql.DB, logger *zap.Logger) ports.NodeRepository {
	return &NodeRepository{db: db, logger: logger}
}

// Create persists a new node.
func (r *NodeRepository) Create(ctx context.Context, node *entities.Node) error {
	if err := node.Validate(); err != nil {
		return err
	}
	return r.insert(ctx, r.db, node)
}

// CreateBatch persists several nodes in one transaction.
func (r *NodeRepository) CreateBatch(ctx context.Context, nodes []*entities.Node) error {
	for _, node := range nodes {
		if err := node.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	for _, node := range nodes {
		if err := r.insert(ctx, tx, node); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("commit", err)
	}

	r.logger.Debug("Node batch created", zap.Int("count", len(nodes)))
	return nil
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *NodeRepository) insert(ctx context.Context, ex execer, node *entities.Node) error {
	tags, err := json.Marshal(node.Tags)
	if err != nil {
		return pkgerrors.NewInvalidDataError("tags are not serializable")
	}

	var lat, lon, alt interface{}
	if node.Location != nil {
		lat, lon, alt = node.Location.Latitude, node.Location.Longitude, node.Location.Altitude
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID.String(), node.Type.String(), node.Name, node.Content,
		lat, lon, alt,
		encodeTime(node.CreatedAt), encodeTime(node.ModifiedAt),
		encodeNullTime(node.DueAt), encodeNullTime(node.CompletedAt),
		encodeNullTime(node.EventStart), encodeNullTime(node.EventEnd),
		string(tags), node.Folder, node.Priority, node.Importance,
		encodeNullTime(node.DeletedAt), node.Version, node.SyncVersion,
		encodeNullTime(node.LastSyncedAt),
	)
	if isUniqueViolation(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("node %s already exists", node.ID))
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("insert node", err)
	}
	return nil
}

// Get retrieves a node by ID, soft-deleted nodes included.
func (r *NodeRepository) Get(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id.String())
	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get node", err)
	}
	return node, nil
}

// Update persists in-place mutation, bumping the version counter.
func (r *NodeRepository) Update(ctx context.Context, node *entities.Node) error {
	if err := node.Validate(); err != nil {
		return err
	}
	node.Touch()

	tags, err := json.Marshal(node.Tags)
	if err != nil {
		return pkgerrors.NewInvalidDataError("tags are not serializable")
	}
	var lat, lon, alt interface{}
	if node.Location != nil {
		lat, lon, alt = node.Location.Latitude, node.Location.Longitude, node.Location.Altitude
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET type = ?, name = ?, content = ?,
			latitude = ?, longitude = ?, altitude = ?,
			modified_at = ?, due_at = ?, completed_at = ?, event_start = ?, event_end = ?,
			tags = ?, folder = ?, priority = ?, importance = ?,
			deleted_at = ?, version = ?, sync_version = ?, last_synced_at = ?
		WHERE id = ?`,
		node.Type.String(), node.Name, node.Content,
		lat, lon, alt,
		encodeTime(node.ModifiedAt),
		encodeNullTime(node.DueAt), encodeNullTime(node.CompletedAt),
		encodeNullTime(node.EventStart), encodeNullTime(node.EventEnd),
		string(tags), node.Folder, node.Priority, node.Importance,
		encodeNullTime(node.DeletedAt), node.Version, node.SyncVersion,
		encodeNullTime(node.LastSyncedAt),
		node.ID.String(),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("update node", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkgerrors.NewNotFoundError("node " + node.ID.String())
	}
	return nil
}

// Delete soft-deletes a node; it stays queryable with IncludeDeleted.
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	now := encodeTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET deleted_at = ?, modified_at = ?, version = version + 1
		WHERE id = ? AND deleted_at IS NULL`, now, now, id.String())
	if err != nil {
		return pkgerrors.NewDatabaseError("soft delete node", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	return nil
}

// HardDelete irreversibly removes a node. Referencing edges must be
// removed by the caller first.
func (r *NodeRepository) HardDelete(ctx context.Context, id valueobjects.NodeID) error {
	var refs int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM edges WHERE source_id = ? OR target_id = ?`,
		id.String(), id.String()).Scan(&refs)
	if err != nil {
		return pkgerrors.NewDatabaseError("count edges", err)
	}
	if refs > 0 {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("node %s is referenced by %d edges", id, refs))
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id.String())
	if err != nil {
		return pkgerrors.NewDatabaseError("hard delete node", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	r.logger.Info("Node hard-deleted", zap.String("nodeID", id.String()))
	return nil
}

// GetAll returns nodes in creation order honoring pagination.
func (r *NodeRepository) GetAll(ctx context.Context, opts ports.ListOptions) ([]*entities.Node, error) {
	return r.query(ctx, opts, "", nil)
}

// Count returns the number of nodes.
func (r *NodeRepository) Count(ctx context.Context, includeDeleted bool) (int, error) {
	q := `SELECT COUNT(*) FROM nodes`
	if !includeDeleted {
		q += ` WHERE deleted_at IS NULL`
	}
	var count int
	if err := r.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
		return 0, pkgerrors.NewDatabaseError("count nodes", err)
	}
	return count, nil
}

// Search runs a substring query over name and content, name matches
// ranking first.
func (r *NodeRepository) Search(ctx context.Context, query string, opts ports.ListOptions) ([]*entities.Node, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	pattern := "%" + query + "%"

	q := `SELECT ` + nodeColumns + ` FROM nodes
		WHERE (name LIKE ? OR content LIKE ?)`
	args := []interface{}{pattern, pattern}
	if !opts.IncludeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	q += ` ORDER BY CASE WHEN name LIKE ? THEN 0 ELSE 1 END, created_at, id`
	args = append(args, pattern)
	q, args = applyPagination(q, args, opts)

	return r.queryNodes(ctx, q, args...)
}

// GetByType returns nodes of one type tag.
func (r *NodeRepository) GetByType(ctx context.Context, nodeType valueobjects.NodeType, opts ports.ListOptions) ([]*entities.Node, error) {
	return r.query(ctx, opts, `type = ?`, []interface{}{nodeType.String()})
}

// GetByFolder returns nodes grouped under a folder path.
func (r *NodeRepository) GetByFolder(ctx context.Context, folder string, opts ports.ListOptions) ([]*entities.Node, error) {
	return r.query(ctx, opts, `folder = ?`, []interface{}{folder})
}

// GetByTags OR-matches against any of the supplied tags. Tags are
// stored as a JSON array, so each tag matches its quoted form.
func (r *NodeRepository) GetByTags(ctx context.Context, tags []string, opts ports.ListOptions) ([]*entities.Node, error) {
	if len(tags) == 0 {
		return []*entities.Node{}, nil
	}
	clauses := make([]string, len(tags))
	args := make([]interface{}, len(tags))
	for i, tag := range tags {
		clauses[i] = `tags LIKE ?`
		quoted, err := json.Marshal(tag)
		if err != nil {
			return nil, pkgerrors.NewInvalidDataError("tag is not serializable")
		}
		args[i] = "%" + string(quoted) + "%"
	}
	return r.query(ctx, opts, "("+strings.Join(clauses, " OR ")+")", args)
}

// GetByDateRange filters on one temporal field, inclusive bounds.
func (r *NodeRepository) GetByDateRange(ctx context.Context, field ports.DateField, start, end time.Time, opts ports.ListOptions) ([]*entities.Node, error) {
	if !field.IsValid() {
		return nil, pkgerrors.NewInvalidDataError(fmt.Sprintf("unknown date field %q", field))
	}
	column := string(field)
	return r.query(ctx, opts,
		column+` IS NOT NULL AND `+column+` >= ? AND `+column+` <= ?`,
		[]interface{}{encodeTime(start), encodeTime(end)})
}

// GetPendingSync returns nodes awaiting external reconciliation.
func (r *NodeRepository) GetPendingSync(ctx context.Context) ([]*entities.Node, error) {
	return r.query(ctx, ports.ListOptions{},
		`(last_synced_at IS NULL OR version > sync_version)`, nil)
}

// GetWithLocation returns nodes carrying a geolocation.
func (r *NodeRepository) GetWithLocation(ctx context.Context) ([]*entities.Node, error) {
	return r.query(ctx, ports.ListOptions{},
		`latitude IS NOT NULL AND longitude IS NOT NULL`, nil)
}

// ExecuteSQL runs an ad-hoc read query. Anything but SELECT (or a
// WITH-prefixed read) is rejected.
func (r *NodeRepository) ExecuteSQL(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(trimmed, "SELECT") && !strings.HasPrefix(trimmed, "WITH") {
		return nil, pkgerrors.NewInvalidDataError("only read queries are allowed")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("execute sql", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("execute sql", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, pkgerrors.NewDatabaseError("execute sql", err)
		}
		record := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			record[column] = values[i]
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("execute sql", err)
	}
	return results, nil
}

// query builds the canonical node listing with an optional extra
// WHERE clause; results are ordered by creation time then ID so
// identical pagination parameters return identical results.
func (r *NodeRepository) query(ctx context.Context, opts ports.ListOptions, where string, args []interface{}) ([]*entities.Node, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	q := `SELECT ` + nodeColumns + ` FROM nodes`
	var clauses []string
	if where != "" {
		clauses = append(clauses, where)
	}
	if !opts.IncludeDeleted {
		clauses = append(clauses, `deleted_at IS NULL`)
	}
	if len(clauses) > 0 {
		q += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	q += ` ORDER BY created_at, id`
	q, args = applyPagination(q, args, opts)

	return r.queryNodes(ctx, q, args...)
}

func applyPagination(q string, args []interface{}, opts ports.ListOptions) (string, []interface{}) {
	if opts.Limit != nil {
		q += ` LIMIT ?`
		args = append(args, *opts.Limit)
		if opts.Offset != nil {
			q += ` OFFSET ?`
			args = append(args, *opts.Offset)
		}
	}
	return q, args
}

func (r *NodeRepository) queryNodes(ctx context.Context, q string, args ...interface{}) ([]*entities.Node, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query nodes", err)
	}
	defer rows.Close()

	nodes := []*entities.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan node", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("query nodes", err)
	}
	return nodes, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*entities.Node, error) {
	var (
		id, nodeType, name, content, folder string
		lat, lon, alt                       sql.NullFloat64
		createdAt, modifiedAt               string
		dueAt, completedAt                  sql.NullString
		eventStart, eventEnd                sql.NullString
		tags                                string
		priority, importance                int
		deletedAt                           sql.NullString
		version, syncVersion                int
		lastSyncedAt                        sql.NullString
	)

	err := row.Scan(&id, &nodeType, &name, &content, &lat, &lon, &alt,
		&createdAt, &modifiedAt, &dueAt, &completedAt, &eventStart, &eventEnd,
		&tags, &folder, &priority, &importance, &deletedAt, &version,
		&syncVersion, &lastSyncedAt)
	if err != nil {
		return nil, err
	}

	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return nil, err
	}

	node := &entities.Node{
		ID:          nodeID,
		Type:        valueobjects.NodeType(nodeType),
		Name:        name,
		Content:     content,
		Folder:      folder,
		Priority:    priority,
		Importance:  importance,
		Version:     version,
		SyncVersion: syncVersion,
	}

	if lat.Valid && lon.Valid {
		node.Location = &valueobjects.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Altitude:  alt.Float64,
		}
	}

	if node.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if node.ModifiedAt, err = decodeTime(modifiedAt); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{dueAt, &node.DueAt},
		{completedAt, &node.CompletedAt},
		{eventStart, &node.EventStart},
		{eventEnd, &node.EventEnd},
		{deletedAt, &node.DeletedAt},
		{lastSyncedAt, &node.LastSyncedAt},
	} {
		t, err := decodeNullTime(pair.src)
		if err != nil {
			return nil, err
		}
		*pair.dst = t
	}

	if err := json.Unmarshal([]byte(tags), &node.Tags); err != nil {
		return nil, err
	}
	return node, nil
}
