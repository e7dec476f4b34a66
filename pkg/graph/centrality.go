package graph

import "math"

// CentralityAnalyzer computes an importance score per node. Implementations
// must not mutate the graph; the engine writes the scores back.
type CentralityAnalyzer interface {
	ComputeCentrality(g *Graph) map[NodeID]float64
}

const (
	defaultDamping    = 0.85
	defaultIterations = 100
	defaultTolerance  = 1e-6
)

// PageRank implements CentralityAnalyzer with the classic random-surfer
// model over the directed weighted graph: transition probability is
// proportional to edge weight, teleportation uses the damping factor, and
// the rank of dangling nodes is spread uniformly. Iteration stops when the
// summed score delta drops below Tolerance or Iterations is reached.
type PageRank struct {
	Damping    float64
	Iterations int
	Tolerance  float64
}

// NewPageRank creates a PageRank analyzer with the default parameters.
func NewPageRank() *PageRank {
	return &PageRank{
		Damping:    defaultDamping,
		Iterations: defaultIterations,
		Tolerance:  defaultTolerance,
	}
}

// ComputeCentrality returns a score per node. Scores sum to ~1 across the
// graph; the empty graph yields an empty map.
func (p *PageRank) ComputeCentrality(g *Graph) map[NodeID]float64 {
	n := g.NodeCount()
	scores := make(map[NodeID]float64, n)
	if n == 0 {
		return scores
	}

	ids := make([]NodeID, 0, n)
	g.Nodes(func(id NodeID, _ *Node) bool {
		ids = append(ids, id)
		return true
	})

	for _, id := range ids {
		scores[id] = 1.0 / float64(n)
	}

	outWeight := make(map[NodeID]float64, n)
	g.Edges(func(src, _ NodeID, edge *Edge) bool {
		outWeight[src] += float64(edge.Weight)
		return true
	})

	base := (1 - p.Damping) / float64(n)
	for iter := 0; iter < p.Iterations; iter++ {
		next := make(map[NodeID]float64, n)
		danglingSum := 0.0
		for _, id := range ids {
			next[id] = base
			if outWeight[id] == 0 {
				danglingSum += scores[id]
			}
		}

		g.Edges(func(src, dst NodeID, edge *Edge) bool {
			next[dst] += p.Damping * scores[src] * float64(edge.Weight) / outWeight[src]
			return true
		})

		danglingShare := p.Damping * danglingSum / float64(n)
		for _, id := range ids {
			next[id] += danglingShare
		}

		diff := 0.0
		for _, id := range ids {
			diff += math.Abs(next[id] - scores[id])
		}
		scores = next
		if diff < p.Tolerance {
			break
		}
	}

	return scores
}
