package graph

import (
	"math"
	"math/rand"
	"sort"
)

// CommunityAnalyzer partitions nodes into densely connected groups.
// Implementations must not mutate the graph; the engine writes community
// ids back.
type CommunityAnalyzer interface {
	DetectCommunities(g *Graph) map[NodeID]int
}

const (
	defaultResolution = 1.0
	defaultMinDelta   = 0.0001
	defaultSeed       = 42

	maxSweeps = 100
	maxPasses = 10
)

// Louvain implements CommunityAnalyzer with greedy modularity optimization
// over the undirected projection of the weighted graph: local moves until
// no node improves, then aggregation of communities into super-nodes,
// repeated until modularity stops improving by at least MinDelta.
//
// Community ids are opaque grouping labels; the partition is reproducible
// for a fixed Seed but not guaranteed identical across seeds.
type Louvain struct {
	Resolution float64
	MinDelta   float64
	Seed       int64
}

// NewLouvain creates a Louvain analyzer with the default parameters.
func NewLouvain() *Louvain {
	return &Louvain{
		Resolution: defaultResolution,
		MinDelta:   defaultMinDelta,
		Seed:       defaultSeed,
	}
}

// DetectCommunities returns a dense community id per node. Nodes without
// edges end up in singleton communities; the empty graph yields an empty
// map.
func (l *Louvain) DetectCommunities(g *Graph) map[NodeID]int {
	result := make(map[NodeID]int, g.NodeCount())
	if g.NodeCount() == 0 {
		return result
	}

	ids := make([]NodeID, 0, g.NodeCount())
	g.Nodes(func(id NodeID, _ *Node) bool {
		ids = append(ids, id)
		return true
	})
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Type != ids[j].Type {
			return ids[i].Type < ids[j].Type
		}
		return ids[i].Label < ids[j].Label
	})

	index := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	adj := make([]map[int]float64, len(ids))
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	g.Edges(func(src, dst NodeID, edge *Edge) bool {
		si, di := index[src], index[dst]
		weight := float64(edge.Weight)
		adj[si][di] += weight
		adj[di][si] += weight
		return true
	})

	assignment := make([]int, len(ids))
	for i := range assignment {
		assignment[i] = i
	}

	rng := rand.New(rand.NewSource(l.Seed))
	current := adj
	singleton := make([]int, len(current))
	for i := range singleton {
		singleton[i] = i
	}
	prevQ := modularity(current, singleton, l.Resolution)

	for pass := 0; pass < maxPasses; pass++ {
		membership, improved := l.localMove(current, rng)
		if !improved {
			break
		}

		q := modularity(current, membership, l.Resolution)
		next, renumbered, count := aggregate(current, membership)
		for i := range assignment {
			assignment[i] = renumbered[assignment[i]]
		}

		if count == len(current) || q-prevQ < l.MinDelta {
			break
		}
		prevQ = q
		current = next
	}

	// Dense ids in node order so the labels are stable per partition.
	remap := make(map[int]int)
	nextID := 0
	for i, id := range ids {
		community := assignment[i]
		dense, ok := remap[community]
		if !ok {
			dense = nextID
			remap[community] = dense
			nextID++
		}
		result[id] = dense
	}
	return result
}

// localMove sweeps the nodes in random order, moving each to the
// neighboring community with the highest modularity gain, until a full
// sweep moves nothing.
func (l *Louvain) localMove(adj []map[int]float64, rng *rand.Rand) ([]int, bool) {
	n := len(adj)
	membership := make([]int, n)
	strength := make([]float64, n)
	commStrength := make([]float64, n)
	total := 0.0
	for i, neighbors := range adj {
		membership[i] = i
		for _, weight := range neighbors {
			strength[i] += weight
		}
		commStrength[i] = strength[i]
		total += strength[i]
	}
	if total == 0 {
		return membership, false
	}

	order := rng.Perm(n)
	improved := false
	for sweep := 0; sweep < maxSweeps; sweep++ {
		moved := false
		for _, i := range order {
			current := membership[i]

			neighWeights := make(map[int]float64)
			for j, weight := range adj[i] {
				if j == i {
					continue
				}
				neighWeights[membership[j]] += weight
			}

			commStrength[current] -= strength[i]
			bestComm := current
			bestGain := neighWeights[current] - l.Resolution*commStrength[current]*strength[i]/total
			for community, kiIn := range neighWeights {
				if community == current {
					continue
				}
				gain := kiIn - l.Resolution*commStrength[community]*strength[i]/total
				if gain > bestGain || (gain == bestGain && bestComm != current && community < bestComm) {
					bestGain = gain
					bestComm = community
				}
			}
			commStrength[bestComm] += strength[i]

			if bestComm != current {
				membership[i] = bestComm
				moved = true
				improved = true
			}
		}
		if !moved {
			break
		}
	}
	return membership, improved
}

// aggregate condenses each community into a super-node, keeping internal
// weight as a self-loop. Returns the new adjacency, the dense community id
// per old node, and the community count.
func aggregate(adj []map[int]float64, membership []int) ([]map[int]float64, []int, int) {
	dense := make(map[int]int)
	count := 0
	renumbered := make([]int, len(membership))
	for i, community := range membership {
		id, ok := dense[community]
		if !ok {
			id = count
			dense[community] = id
			count++
		}
		renumbered[i] = id
	}

	next := make([]map[int]float64, count)
	for i := range next {
		next[i] = make(map[int]float64)
	}
	for i, neighbors := range adj {
		ci := renumbered[i]
		for j, weight := range neighbors {
			next[ci][renumbered[j]] += weight
		}
	}
	return next, renumbered, count
}

func modularity(adj []map[int]float64, membership []int, resolution float64) float64 {
	total := 0.0
	strength := make([]float64, len(adj))
	for i, neighbors := range adj {
		for _, weight := range neighbors {
			strength[i] += weight
		}
		total += strength[i]
	}
	if total == 0 {
		return 0
	}

	commInternal := make(map[int]float64)
	commStrength := make(map[int]float64)
	for i, neighbors := range adj {
		commStrength[membership[i]] += strength[i]
		for j, weight := range neighbors {
			if membership[i] == membership[j] {
				commInternal[membership[i]] += weight
			}
		}
	}

	q := 0.0
	for community, s := range commStrength {
		q += commInternal[community]/total - resolution*math.Pow(s/total, 2)
	}
	return q
}
