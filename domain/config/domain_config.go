package config

// DomainConfig holds configurable business rules and constraints
type DomainConfig struct {
	// Node constraints
	MaxNameLength    int
	MinNameLength    int
	MaxContentLength int
	MaxTagsPerNode   int
	MaxTagLength     int
	MaxFolderDepth   int

	// Edge constraints
	MaxEdgeWeight     float64
	MinEdgeWeight     float64
	DefaultEdgeWeight float64
	MaxLabelLength    int

	// Traversal limits
	MaxTraversalDepth int
	MaxPathLength     int
	MaxPathsPerQuery  int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNameLength:    500,
		MinNameLength:    1,
		MaxContentLength: 1 << 20,
		MaxTagsPerNode:   50,
		MaxTagLength:     100,
		MaxFolderDepth:   16,

		MaxEdgeWeight:     1000,
		MinEdgeWeight:     0,
		DefaultEdgeWeight: 1.0,
		MaxLabelLength:    200,

		MaxTraversalDepth: 100,
		MaxPathLength:     10,
		MaxPathsPerQuery:  100,
	}
}
