package graph

// NodeType classifies graph nodes.
type NodeType string

const (
	NodeTypeBrand      NodeType = "BRAND"
	NodeTypeProduct    NodeType = "PRODUCT"
	NodeTypeCompetitor NodeType = "COMPETITOR"
	NodeTypeTopic      NodeType = "TOPIC"
	NodeTypeSentiment  NodeType = "SENTIMENT"
)

// EdgeType classifies graph edges.
type EdgeType string

const (
	EdgeTypeHasAttribute  EdgeType = "HAS_ATTRIBUTE"
	EdgeTypeCompetesWith  EdgeType = "COMPETES_WITH"
	EdgeTypeLeadsTo       EdgeType = "LEADS_TO"
	EdgeTypeMentionedWith EdgeType = "MENTIONED_WITH"
)

// Sentiment category labels. The builder seeds one SENTIMENT node per label
// before processing any record.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentMixed    = "MIXED"
)

// evidenceCap bounds the evidence list of an edge to the most recent entries.
const evidenceCap = 5

// NodeID identifies a node by kind and label. Identity is namespaced by
// type, so a product and a topic sharing a label remain distinct nodes.
type NodeID struct {
	Type  NodeType
	Label string
}

// Node is a typed graph vertex. Centrality and Community are zero until the
// matching analyzer has run; HasCommunity reports whether Community was set.
type Node struct {
	Type         NodeType
	Label        string
	Centrality   float64
	Community    int
	HasCommunity bool
}

// Edge is a directed, weighted connection between two existing nodes.
// Weight counts co-occurrences; Evidence keeps the most recent supporting
// quotes; SourceRecordID is the record that first created the edge.
type Edge struct {
	Type           EdgeType
	Weight         int
	Evidence       []string
	SourceRecordID int64
}

type edgeKey struct {
	Src NodeID
	Dst NodeID
}

// Graph is a directed simple graph: at most one edge per ordered node pair,
// no self-loops. It is not safe for concurrent use; every analytical run
// owns its own instance.
type Graph struct {
	nodes map[NodeID]*Node
	edges map[edgeKey]*Edge
	out   map[NodeID]map[NodeID]*Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	g := &Graph{}
	g.Clear()
	return g
}

// Clear resets the graph to empty, dropping all nodes and edges.
func (g *Graph) Clear() {
	g.nodes = make(map[NodeID]*Node)
	g.edges = make(map[edgeKey]*Edge)
	g.out = make(map[NodeID]map[NodeID]*Edge)
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddNode inserts the node if it does not exist yet. Re-insertion is a
// no-op; existing annotations are kept.
func (g *Graph) AddNode(id NodeID) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &Node{
		Type:  id.Type,
		Label: id.Label,
	}
}

// Node returns the node and whether it exists. The returned pointer is the
// live node; analyzers annotate it in place.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// HasEdge reports whether the directed edge exists.
func (g *Graph) HasEdge(src, dst NodeID) bool {
	_, ok := g.edges[edgeKey{Src: src, Dst: dst}]
	return ok
}

// Edge returns the directed edge and whether it exists.
func (g *Graph) Edge(src, dst NodeID) (*Edge, bool) {
	edge, ok := g.edges[edgeKey{Src: src, Dst: dst}]
	return edge, ok
}

// AddEdge upserts the directed edge. A self-loop or an endpoint that does
// not exist makes the call a silent no-op. On first observation the edge is
// created with weight 1; re-observation increments the weight and merges
// the evidence instead of creating a second edge.
func (g *Graph) AddEdge(src, dst NodeID, edgeType EdgeType, evidence []string, recordID int64) {
	if src == dst {
		return
	}
	if !g.HasNode(src) || !g.HasNode(dst) {
		return
	}

	key := edgeKey{Src: src, Dst: dst}
	if existing, ok := g.edges[key]; ok {
		existing.Weight++
		existing.Evidence = appendCapped(existing.Evidence, evidence)
		return
	}

	edge := &Edge{
		Type:           edgeType,
		Weight:         1,
		Evidence:       appendCapped(nil, evidence),
		SourceRecordID: recordID,
	}
	g.edges[key] = edge
	if g.out[src] == nil {
		g.out[src] = make(map[NodeID]*Edge)
	}
	g.out[src][dst] = edge
}

// IncrementEdgeWeight raises the edge weight by delta. Missing edges are a
// safe no-op.
func (g *Graph) IncrementEdgeWeight(src, dst NodeID, delta int) {
	if edge, ok := g.edges[edgeKey{Src: src, Dst: dst}]; ok {
		edge.Weight += delta
	}
}

// AppendEvidence appends quotes to the edge evidence, keeping only the most
// recent entries. Missing edges are a safe no-op.
func (g *Graph) AppendEvidence(src, dst NodeID, quotes []string) {
	if edge, ok := g.edges[edgeKey{Src: src, Dst: dst}]; ok {
		edge.Evidence = appendCapped(edge.Evidence, quotes)
	}
}

// Nodes iterates all nodes until fn returns false.
func (g *Graph) Nodes(fn func(id NodeID, node *Node) bool) {
	for id, node := range g.nodes {
		if !fn(id, node) {
			return
		}
	}
}

// Edges iterates all edges until fn returns false.
func (g *Graph) Edges(fn func(src, dst NodeID, edge *Edge) bool) {
	for key, edge := range g.edges {
		if !fn(key.Src, key.Dst, edge) {
			return
		}
	}
}

// OutEdges iterates the out-edges of src until fn returns false.
func (g *Graph) OutEdges(src NodeID, fn func(dst NodeID, edge *Edge) bool) {
	for dst, edge := range g.out[src] {
		if !fn(dst, edge) {
			return
		}
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

func appendCapped(evidence []string, quotes []string) []string {
	evidence = append(evidence, quotes...)
	if len(evidence) > evidenceCap {
		evidence = evidence[len(evidence)-evidenceCap:]
	}
	return evidence
}
