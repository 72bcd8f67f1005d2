package di

import (
	"database/sql"

	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/application/services"
	"isometry-backend/infrastructure/config"
	"isometry-backend/infrastructure/persistence/sqlite"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *sql.DB
	NodeRepo     ports.NodeRepository
	EdgeRepo     ports.EdgeRepository
	GraphService *services.GraphService
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDatabase opens the SQLite store and applies the schema
func ProvideDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	return sqlite.Open(cfg.DSN(), logger)
}

// ProvideNodeRepository creates a node repository
func ProvideNodeRepository(db *sql.DB, logger *zap.Logger) ports.NodeRepository {
	return sqlite.NewNodeRepository(db, logger)
}

// ProvideEdgeRepository creates an edge repository
func ProvideEdgeRepository(db *sql.DB, logger *zap.Logger) ports.EdgeRepository {
	return sqlite.NewEdgeRepository(db, logger)
}

// ProvideGraphService creates the graph service
func ProvideGraphService(nodes ports.NodeRepository, edges ports.EdgeRepository, logger *zap.Logger) *services.GraphService {
	return services.NewGraphService(nodes, edges, logger)
}
