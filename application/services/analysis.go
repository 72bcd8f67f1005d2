package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

// CentralityMeasure selects the structural-importance score to rank by.
type CentralityMeasure string

const (
	CentralityDegree      CentralityMeasure = "degree"
	CentralityBetweenness CentralityMeasure = "betweenness"
	CentralityCloseness   CentralityMeasure = "closeness"
)

// IsValid checks membership in the supported measures.
func (m CentralityMeasure) IsValid() bool {
	switch m {
	case CentralityDegree, CentralityBetweenness, CentralityCloseness:
		return true
	}
	return false
}

// ClusterAlgorithm selects the clustering strategy.
type ClusterAlgorithm string

const (
	ClusterConnectedComponents ClusterAlgorithm = "connectedComponents"
	ClusterStronglyConnected   ClusterAlgorithm = "stronglyConnected"
	ClusterCommunityDetection  ClusterAlgorithm = "communityDetection"
)

// IsValid checks membership in the supported algorithms.
func (a ClusterAlgorithm) IsValid() bool {
	switch a {
	case ClusterConnectedComponents, ClusterStronglyConnected, ClusterCommunityDetection:
		return true
	}
	return false
}

// affinityCommunityThreshold is the minimum AFFINITY weight for a pair
// to be merged into a community.
const affinityCommunityThreshold = 0.5

// CentralityScore is one ranked entry of a centrality computation.
type CentralityScore struct {
	NodeID valueobjects.NodeID `json:"node_id"`
	Score  float64             `json:"score"`
}

// CentralityResult carries the ranked scores plus the number of node
// pairs skipped because a per-pair repository call failed. Skips are
// deliberate best-effort behavior for whole-graph computations, not
// silent data loss.
type CentralityResult struct {
	Measure      CentralityMeasure `json:"measure"`
	Scores       []CentralityScore `json:"scores"`
	SkippedPairs int               `json:"skipped_pairs"`
}

// ClusterResult carries the clusters found by one algorithm run.
type ClusterResult struct {
	Algorithm    ClusterAlgorithm        `json:"algorithm"`
	Clusters     [][]valueobjects.NodeID `json:"clusters"`
	SkippedPairs int                     `json:"skipped_pairs"`
}

// GraphAnalysis is the whole-graph structural summary.
type GraphAnalysis struct {
	NodeCount            int                           `json:"node_count"`
	EdgeCount            int                           `json:"edge_count"`
	MaxInDegree          int                           `json:"max_in_degree"`
	MaxOutDegree         int                           `json:"max_out_degree"`
	AvgInDegree          float64                       `json:"avg_in_degree"`
	AvgOutDegree         float64                       `json:"avg_out_degree"`
	ComponentCount       int                           `json:"component_count"`
	LargestComponentSize int                           `json:"largest_component_size"`
	EdgeTypeHistogram    map[valueobjects.EdgeType]int `json:"edge_type_histogram"`
	Density              float64                       `json:"density"`
}

// GetNodesByCentrality ranks all live nodes by the chosen measure,
// descending, truncated to limit. Betweenness is O(N^3) in repository
// traversal calls and intended for small to medium graphs; the
// bounding parameters are the only throttle.
func (s *GraphService) GetNodesByCentrality(
	ctx context.Context,
	measure CentralityMeasure,
	limit int,
) (*CentralityResult, error) {
	if !measure.IsValid() {
		return nil, pkgerrors.NewInvalidDataError(fmt.Sprintf("unknown centrality measure %q", measure))
	}
	if limit <= 0 {
		limit = DefaultCentralityLimit
	}

	nodes, err := s.nodes.GetAll(ctx, ports.ListOptions{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load nodes")
	}
	ids := make([]valueobjects.NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}

	result := &CentralityResult{Measure: measure}
	switch measure {
	case CentralityDegree:
		result.Scores, err = s.degreeCentrality(ctx, ids)
	case CentralityBetweenness:
		result.Scores, result.SkippedPairs, err = s.betweennessCentrality(ctx, ids)
	case CentralityCloseness:
		result.Scores, result.SkippedPairs, err = s.closenessCentrality(ctx, ids)
	}
	if err != nil {
		return nil, err
	}

	sortScores(result.Scores)
	if len(result.Scores) > limit {
		result.Scores = result.Scores[:limit]
	}

	s.logger.Debug("Centrality computed",
		zap.String("measure", string(measure)),
		zap.Int("nodes", len(ids)),
		zap.Int("skippedPairs", result.SkippedPairs),
	)
	return result, nil
}

// degreeCentrality sums in-degree and out-degree with one traversal
// call per node. Undirected edges count in both roles.
func (s *GraphService) degreeCentrality(ctx context.Context, ids []valueobjects.NodeID) ([]CentralityScore, error) {
	scores := make([]CentralityScore, 0, len(ids))
	for _, id := range ids {
		connected, err := s.edges.GetConnectedEdges(ctx, id, nil)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to load connected edges")
		}
		in, out := degreeOf(id, connected)
		scores = append(scores, CentralityScore{NodeID: id, Score: float64(in + out)})
	}
	return scores, nil
}

// betweennessCentrality counts, for every unordered pair of other
// nodes, whether the shortest path between them passes through the
// subject. Failed per-pair shortest-path calls are skipped and
// reported, not propagated.
func (s *GraphService) betweennessCentrality(ctx context.Context, ids []valueobjects.NodeID) ([]CentralityScore, int, error) {
	skipped := 0
	scores := make([]CentralityScore, 0, len(ids))
	for _, subject := range ids {
		count := 0
		for i := 0; i < len(ids); i++ {
			if ids[i].Equals(subject) {
				continue
			}
			for j := i + 1; j < len(ids); j++ {
				if ids[j].Equals(subject) {
					continue
				}
				path, err := s.edges.FindShortestPath(ctx, ids[i], ids[j], nil, maxShortestPathDistance)
				if err != nil {
					skipped++
					continue
				}
				for _, hop := range interior(path) {
					if hop.Equals(subject) {
						count++
						break
					}
				}
			}
		}
		scores = append(scores, CentralityScore{NodeID: subject, Score: float64(count)})
	}
	return scores, skipped, nil
}

// closenessCentrality takes the reciprocal of the average shortest
// path length from the subject to every reachable other node, scoring
// 0 when nothing is reachable.
func (s *GraphService) closenessCentrality(ctx context.Context, ids []valueobjects.NodeID) ([]CentralityScore, int, error) {
	skipped := 0
	scores := make([]CentralityScore, 0, len(ids))
	for _, subject := range ids {
		totalLength := 0
		reachable := 0
		for _, other := range ids {
			if other.Equals(subject) {
				continue
			}
			path, err := s.edges.FindShortestPath(ctx, subject, other, nil, maxShortestPathDistance)
			if err != nil {
				skipped++
				continue
			}
			if len(path) > 0 {
				totalLength += len(path) - 1
				reachable++
			}
		}
		score := 0.0
		if reachable > 0 && totalLength > 0 {
			score = float64(reachable) / float64(totalLength)
		}
		scores = append(scores, CentralityScore{NodeID: subject, Score: score})
	}
	return scores, skipped, nil
}

// FindClusters groups nodes by the chosen algorithm, dropping clusters
// below minClusterSize.
func (s *GraphService) FindClusters(
	ctx context.Context,
	algorithm ClusterAlgorithm,
	minClusterSize int,
) (*ClusterResult, error) {
	if !algorithm.IsValid() {
		return nil, pkgerrors.NewInvalidDataError(fmt.Sprintf("unknown cluster algorithm %q", algorithm))
	}
	if minClusterSize <= 0 {
		minClusterSize = DefaultMinClusterSize
	}

	result := &ClusterResult{Algorithm: algorithm}
	var err error
	switch algorithm {
	case ClusterConnectedComponents:
		result.Clusters, err = s.edges.FindConnectedComponents(ctx, nil, minClusterSize)
	case ClusterStronglyConnected:
		result.Clusters, result.SkippedPairs, err = s.stronglyConnectedClusters(ctx, minClusterSize)
	case ClusterCommunityDetection:
		result.Clusters, err = s.affinityCommunities(ctx, minClusterSize)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Clusters computed",
		zap.String("algorithm", string(algorithm)),
		zap.Int("clusters", len(result.Clusters)),
	)
	return result, nil
}

// stronglyConnectedClusters filters weakly connected components down
// to those where every member reaches every other member, verified by
// pairwise shortest-path calls. This is a deliberate simplification of
// a proper SCC algorithm; callers depend on the looser semantics.
func (s *GraphService) stronglyConnectedClusters(ctx context.Context, minSize int) ([][]valueobjects.NodeID, int, error) {
	components, err := s.edges.FindConnectedComponents(ctx, nil, minSize)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "failed to find components")
	}

	skipped := 0
	var strong [][]valueobjects.NodeID
	for _, component := range components {
		allReachable := true
		for i := 0; i < len(component) && allReachable; i++ {
			for j := 0; j < len(component); j++ {
				if i == j {
					continue
				}
				path, err := s.edges.FindShortestPath(ctx, component[i], component[j], nil, maxShortestPathDistance)
				if err != nil {
					// Best effort: an unverifiable pair disqualifies
					// the component rather than aborting the analysis.
					skipped++
					allReachable = false
					break
				}
				if len(path) == 0 {
					allReachable = false
					break
				}
			}
		}
		if allReachable {
			strong = append(strong, component)
		}
	}
	return strong, skipped, nil
}

// affinityCommunities greedily merges node pairs joined by AFFINITY
// edges above the weight threshold. A pair joins an existing community
// when either endpoint is already a member, else it seeds a new one.
func (s *GraphService) affinityCommunities(ctx context.Context, minSize int) ([][]valueobjects.NodeID, error) {
	affinities, err := s.edges.GetByType(ctx, valueobjects.EdgeTypeAffinity)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load affinity edges")
	}

	var communities []map[valueobjects.NodeID]bool
	for _, edge := range affinities {
		if edge.Weight <= affinityCommunityThreshold {
			continue
		}
		placed := false
		for _, community := range communities {
			if community[edge.SourceID] || community[edge.TargetID] {
				community[edge.SourceID] = true
				community[edge.TargetID] = true
				placed = true
				break
			}
		}
		if !placed {
			communities = append(communities, map[valueobjects.NodeID]bool{
				edge.SourceID: true,
				edge.TargetID: true,
			})
		}
	}

	var clusters [][]valueobjects.NodeID
	for _, community := range communities {
		if len(community) < minSize {
			continue
		}
		members := make([]valueobjects.NodeID, 0, len(community))
		for id := range community {
			members = append(members, id)
		}
		sort.Slice(members, func(i, j int) bool { return members[i].String() < members[j].String() })
		clusters = append(clusters, members)
	}
	return clusters, nil
}

// AnalyzeGraph computes whole-graph structural metrics: counts, degree
// extremes and averages, component statistics, a per-edge-type
// histogram and directed density.
func (s *GraphService) AnalyzeGraph(ctx context.Context) (*GraphAnalysis, error) {
	nodes, err := s.nodes.GetAll(ctx, ports.ListOptions{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load nodes")
	}
	alive := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, n := range nodes {
		alive[n.ID] = true
	}

	// Only edges between live nodes count, matching the node and
	// component statistics.
	histogram := make(map[valueobjects.EdgeType]int, 4)
	var allEdges []*entities.Edge
	for _, edgeType := range valueobjects.AllEdgeTypes() {
		edges, err := s.edges.GetByType(ctx, edgeType)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to load edges")
		}
		live := edges[:0]
		for _, edge := range edges {
			if alive[edge.SourceID] && alive[edge.TargetID] {
				live = append(live, edge)
			}
		}
		histogram[edgeType] = len(live)
		allEdges = append(allEdges, live...)
	}

	analysis := &GraphAnalysis{
		NodeCount:         len(nodes),
		EdgeCount:         len(allEdges),
		EdgeTypeHistogram: histogram,
	}

	inDegree := make(map[valueobjects.NodeID]int, len(nodes))
	outDegree := make(map[valueobjects.NodeID]int, len(nodes))
	for _, edge := range allEdges {
		outDegree[edge.SourceID]++
		inDegree[edge.TargetID]++
		if !edge.Directed {
			outDegree[edge.TargetID]++
			inDegree[edge.SourceID]++
		}
	}
	totalIn, totalOut := 0, 0
	for _, n := range nodes {
		in, out := inDegree[n.ID], outDegree[n.ID]
		totalIn += in
		totalOut += out
		if in > analysis.MaxInDegree {
			analysis.MaxInDegree = in
		}
		if out > analysis.MaxOutDegree {
			analysis.MaxOutDegree = out
		}
	}
	if len(nodes) > 0 {
		analysis.AvgInDegree = float64(totalIn) / float64(len(nodes))
		analysis.AvgOutDegree = float64(totalOut) / float64(len(nodes))
	}

	components, err := s.edges.FindConnectedComponents(ctx, nil, 1)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to find components")
	}
	analysis.ComponentCount = len(components)
	for _, component := range components {
		if len(component) > analysis.LargestComponentSize {
			analysis.LargestComponentSize = len(component)
		}
	}

	// Directed density: edges / (nodes * (nodes - 1)), zero below two
	// nodes.
	if len(nodes) >= 2 {
		analysis.Density = float64(len(allEdges)) / float64(len(nodes)*(len(nodes)-1))
	}

	return analysis, nil
}

// degreeOf counts in and out degree of a node over an edge list,
// counting undirected edges in both roles.
func degreeOf(id valueobjects.NodeID, edges []*entities.Edge) (in, out int) {
	for _, edge := range edges {
		if edge.SourceID.Equals(id) {
			out++
			if !edge.Directed {
				in++
			}
		}
		if edge.TargetID.Equals(id) {
			in++
			if !edge.Directed {
				out++
			}
		}
	}
	return in, out
}

// interior returns the path without its endpoints.
func interior(path []valueobjects.NodeID) []valueobjects.NodeID {
	if len(path) <= 2 {
		return nil
	}
	return path[1 : len(path)-1]
}

// sortScores orders descending by score with a stable ID tie-break so
// identical datasets rank identically.
func sortScores(scores []CentralityScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].NodeID.String() < scores[j].NodeID.String()
	})
}
