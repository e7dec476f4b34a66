package graph

import (
	"reflect"
	"testing"
)

func TestAddNodeIdempotent(t *testing.T) {
	g := NewGraph()
	id := NodeID{Type: NodeTypeTopic, Label: "pricing"}

	g.AddNode(id)
	node, ok := g.Node(id)
	if !ok {
		t.Fatalf("Node() not found after AddNode()")
	}
	node.Centrality = 0.5

	g.AddNode(id)
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
	node, _ = g.Node(id)
	if node.Centrality != 0.5 {
		t.Errorf("Centrality = %v, want 0.5 to survive re-insertion", node.Centrality)
	}
}

func TestAddEdge(t *testing.T) {
	brand := NodeID{Type: NodeTypeBrand, Label: "Acme"}
	topic := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	missing := NodeID{Type: NodeTypeCompetitor, Label: "Ghost"}

	tests := []struct {
		name      string
		src       NodeID
		dst       NodeID
		wantEdges int
	}{
		{
			name:      "edge between existing nodes",
			src:       brand,
			dst:       topic,
			wantEdges: 1,
		},
		{
			name:      "self-loop dropped",
			src:       brand,
			dst:       brand,
			wantEdges: 0,
		},
		{
			name:      "missing source is a no-op",
			src:       missing,
			dst:       topic,
			wantEdges: 0,
		},
		{
			name:      "missing target is a no-op",
			src:       brand,
			dst:       missing,
			wantEdges: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			g.AddNode(brand)
			g.AddNode(topic)

			g.AddEdge(tt.src, tt.dst, EdgeTypeHasAttribute, nil, 1)
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
		})
	}
}

func TestAddEdgeUpsert(t *testing.T) {
	g := NewGraph()
	brand := NodeID{Type: NodeTypeBrand, Label: "Acme"}
	topic := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	g.AddNode(brand)
	g.AddNode(topic)

	g.AddEdge(brand, topic, EdgeTypeHasAttribute, []string{"first"}, 7)
	g.AddEdge(brand, topic, EdgeTypeHasAttribute, []string{"second"}, 8)

	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1 after re-observation", g.EdgeCount())
	}
	edge, ok := g.Edge(brand, topic)
	if !ok {
		t.Fatalf("Edge() not found after AddEdge()")
	}
	if edge.Weight != 2 {
		t.Errorf("Weight = %d, want 2", edge.Weight)
	}
	if edge.SourceRecordID != 7 {
		t.Errorf("SourceRecordID = %d, want 7 from the creating record", edge.SourceRecordID)
	}
	want := []string{"first", "second"}
	if !reflect.DeepEqual(edge.Evidence, want) {
		t.Errorf("Evidence = %v, want %v", edge.Evidence, want)
	}
}

func TestAppendEvidenceCap(t *testing.T) {
	g := NewGraph()
	src := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	dst := NodeID{Type: NodeTypeSentiment, Label: SentimentNegative}
	g.AddNode(src)
	g.AddNode(dst)
	g.AddEdge(src, dst, EdgeTypeLeadsTo, []string{"q1", "q2", "q3"}, 1)

	g.AppendEvidence(src, dst, []string{"q4", "q5", "q6", "q7"})

	edge, _ := g.Edge(src, dst)
	want := []string{"q3", "q4", "q5", "q6", "q7"}
	if !reflect.DeepEqual(edge.Evidence, want) {
		t.Errorf("Evidence = %v, want the 5 most recent %v", edge.Evidence, want)
	}
}

func TestAppendEvidenceMissingEdge(t *testing.T) {
	g := NewGraph()
	src := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	dst := NodeID{Type: NodeTypeSentiment, Label: SentimentNegative}

	g.AppendEvidence(src, dst, []string{"quote"})
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0 after append to missing edge", g.EdgeCount())
	}
}

func TestIncrementEdgeWeight(t *testing.T) {
	g := NewGraph()
	src := NodeID{Type: NodeTypeBrand, Label: "Acme"}
	dst := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	g.AddNode(src)
	g.AddNode(dst)
	g.AddEdge(src, dst, EdgeTypeHasAttribute, nil, 1)

	g.IncrementEdgeWeight(src, dst, 2)
	edge, _ := g.Edge(src, dst)
	if edge.Weight != 3 {
		t.Errorf("Weight = %d, want 3", edge.Weight)
	}

	g.IncrementEdgeWeight(dst, src, 2)
	if g.HasEdge(dst, src) {
		t.Errorf("HasEdge() = true, want increment on missing edge to be a no-op")
	}
}

func TestClear(t *testing.T) {
	g := NewGraph()
	src := NodeID{Type: NodeTypeBrand, Label: "Acme"}
	dst := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	g.AddNode(src)
	g.AddNode(dst)
	g.AddEdge(src, dst, EdgeTypeHasAttribute, nil, 1)

	g.Clear()

	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0 after Clear()", g.NodeCount())
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0 after Clear()", g.EdgeCount())
	}
	if g.HasNode(src) {
		t.Errorf("HasNode() = true, want false after Clear()")
	}
}

func TestOutEdges(t *testing.T) {
	g := NewGraph()
	brand := NodeID{Type: NodeTypeBrand, Label: "Acme"}
	topicA := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	topicB := NodeID{Type: NodeTypeTopic, Label: "support"}
	g.AddNode(brand)
	g.AddNode(topicA)
	g.AddNode(topicB)
	g.AddEdge(brand, topicA, EdgeTypeHasAttribute, nil, 1)
	g.AddEdge(brand, topicB, EdgeTypeHasAttribute, nil, 1)
	g.AddEdge(topicA, topicB, EdgeTypeMentionedWith, nil, 1)

	got := map[NodeID]int{}
	g.OutEdges(brand, func(dst NodeID, edge *Edge) bool {
		got[dst] = edge.Weight
		return true
	})

	want := map[NodeID]int{topicA: 1, topicB: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OutEdges() visited %v, want %v", got, want)
	}
}
