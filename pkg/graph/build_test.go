package graph

import (
	"reflect"
	"testing"

	"github.com/meridianlabs/brandgraph/pkg/common"
)

func edgeWeights(g *Graph) map[string]int {
	weights := make(map[string]int)
	g.Edges(func(src, dst NodeID, edge *Edge) bool {
		weights[string(src.Type)+":"+src.Label+"->"+string(dst.Type)+":"+dst.Label] = edge.Weight
		return true
	})
	return weights
}

func TestBuildSeedsBaseNodes(t *testing.T) {
	g := NewGraph()
	NewBuilder(g).Build("Acme", nil)

	if g.NodeCount() != 4 {
		t.Fatalf("NodeCount() = %d, want 4 (brand plus three sentiment nodes)", g.NodeCount())
	}
	for _, id := range []NodeID{
		{Type: NodeTypeBrand, Label: "Acme"},
		{Type: NodeTypeSentiment, Label: SentimentPositive},
		{Type: NodeTypeSentiment, Label: SentimentNegative},
		{Type: NodeTypeSentiment, Label: SentimentMixed},
	} {
		if !g.HasNode(id) {
			t.Errorf("HasNode(%v) = false, want true", id)
		}
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestBuildIdempotent(t *testing.T) {
	records := []common.AnalysisRecord{
		{
			RecordID: 1,
			Analysis: &common.RecordAnalysis{
				BrandProducts:       []string{"Widget"},
				BrandSentimentLabel: SentimentNegative,
				Keywords:            []common.Keyword{{Keyword: "pricing"}, {Keyword: "support"}},
				CompetitorSentiments: map[string]common.Sentiment{
					"Foo": {Label: SentimentPositive},
				},
				Quotes: []common.Quote{{Text: "too expensive"}},
			},
			CompetitorNames: []string{"Foo"},
		},
		{
			RecordID: 2,
			Analysis: &common.RecordAnalysis{
				Keywords: []common.Keyword{{Keyword: "pricing"}},
			},
		},
	}

	g := NewGraph()
	builder := NewBuilder(g)

	builder.Build("Acme", records)
	firstNodes := g.NodeCount()
	firstEdges := edgeWeights(g)

	builder.Build("Acme", records)
	if g.NodeCount() != firstNodes {
		t.Errorf("NodeCount() = %d after rebuild, want %d", g.NodeCount(), firstNodes)
	}
	if got := edgeWeights(g); !reflect.DeepEqual(got, firstEdges) {
		t.Errorf("edge weights = %v after rebuild, want %v", got, firstEdges)
	}
}

func TestBuildWeightMonotonic(t *testing.T) {
	record := common.AnalysisRecord{
		RecordID: 1,
		Analysis: &common.RecordAnalysis{
			Keywords: []common.Keyword{{Keyword: "pricing"}},
		},
	}

	g := NewGraph()
	NewBuilder(g).Build("Acme", []common.AnalysisRecord{record, record, record})

	brand := NodeID{Type: NodeTypeBrand, Label: "Acme"}
	topic := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	edge, ok := g.Edge(brand, topic)
	if !ok {
		t.Fatalf("Edge(brand, topic) not found")
	}
	if edge.Weight != 3 {
		t.Errorf("Weight = %d, want 3 after three co-occurrences", edge.Weight)
	}
}

func TestBuildSkipsRecordWithoutAnalysis(t *testing.T) {
	records := []common.AnalysisRecord{
		{RecordID: 1, Analysis: nil, CompetitorNames: []string{"Foo"}},
		{
			RecordID: 2,
			Analysis: &common.RecordAnalysis{
				Keywords: []common.Keyword{{Keyword: "pricing"}},
			},
		},
	}

	g := NewGraph()
	NewBuilder(g).Build("Acme", records)

	if g.HasNode(NodeID{Type: NodeTypeCompetitor, Label: "Foo"}) {
		t.Errorf("HasNode(Foo) = true, want record without analysis to be skipped")
	}
	if !g.HasNode(NodeID{Type: NodeTypeTopic, Label: "pricing"}) {
		t.Errorf("HasNode(pricing) = false, want remaining records processed")
	}
}

func TestBuildTopicRouting(t *testing.T) {
	tests := []struct {
		name     string
		products []string
		want     map[string]int
	}{
		{
			name:     "topics hang off the brand when no product is mentioned",
			products: nil,
			want: map[string]int{
				"BRAND:Acme->TOPIC:pricing":      1,
				"TOPIC:pricing->SENTIMENT:MIXED": 1,
			},
		},
		{
			name:     "topics hang off the products when products are mentioned",
			products: []string{"Widget", "Gadget"},
			want: map[string]int{
				"BRAND:Acme->PRODUCT:Widget":     1,
				"BRAND:Acme->PRODUCT:Gadget":     1,
				"PRODUCT:Widget->TOPIC:pricing":  1,
				"PRODUCT:Gadget->TOPIC:pricing":  1,
				"TOPIC:pricing->SENTIMENT:MIXED": 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			NewBuilder(g).Build("Acme", []common.AnalysisRecord{
				{
					RecordID: 1,
					Analysis: &common.RecordAnalysis{
						BrandProducts: tt.products,
						Keywords:      []common.Keyword{{Keyword: "pricing"}},
					},
				},
			})

			if got := edgeWeights(g); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("edge weights = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSentimentRouting(t *testing.T) {
	tests := []struct {
		name          string
		label         string
		wantSentiment string
	}{
		{
			name:          "explicit label",
			label:         SentimentNegative,
			wantSentiment: SentimentNegative,
		},
		{
			name:          "missing label defaults to mixed",
			label:         "",
			wantSentiment: SentimentMixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			NewBuilder(g).Build("Acme", []common.AnalysisRecord{
				{
					RecordID: 1,
					Analysis: &common.RecordAnalysis{
						BrandSentimentLabel: tt.label,
						Keywords:            []common.Keyword{{Keyword: "pricing"}},
					},
				},
			})

			topic := NodeID{Type: NodeTypeTopic, Label: "pricing"}
			sentiment := NodeID{Type: NodeTypeSentiment, Label: tt.wantSentiment}
			if !g.HasEdge(topic, sentiment) {
				t.Errorf("HasEdge(pricing, %s) = false, want true", tt.wantSentiment)
			}
		})
	}
}

func TestBuildQuoteRouting(t *testing.T) {
	g := NewGraph()
	NewBuilder(g).Build("Acme", []common.AnalysisRecord{
		{
			RecordID: 1,
			Analysis: &common.RecordAnalysis{
				BrandSentimentLabel: SentimentNegative,
				Keywords:            []common.Keyword{{Keyword: "pricing"}},
				CompetitorSentiments: map[string]common.Sentiment{
					"Foo": {Label: SentimentPositive},
				},
				Quotes: []common.Quote{
					{Text: "untagged quote"},
					{Text: "brand by name", Entity: "Acme"},
					{Text: "brand by literal", Entity: "Brand"},
					{Text: "about the competitor", Entity: "Foo"},
				},
			},
			CompetitorNames: []string{"Foo"},
		},
	})

	topic := NodeID{Type: NodeTypeTopic, Label: "pricing"}

	brandEdge, ok := g.Edge(topic, NodeID{Type: NodeTypeSentiment, Label: SentimentNegative})
	if !ok {
		t.Fatalf("Edge(pricing, NEGATIVE) not found")
	}
	wantBrand := []string{"untagged quote", "brand by name", "brand by literal"}
	if !reflect.DeepEqual(brandEdge.Evidence, wantBrand) {
		t.Errorf("brand evidence = %v, want %v", brandEdge.Evidence, wantBrand)
	}

	competitorEdge, ok := g.Edge(topic, NodeID{Type: NodeTypeSentiment, Label: SentimentPositive})
	if !ok {
		t.Fatalf("Edge(pricing, POSITIVE) not found")
	}
	wantCompetitor := []string{"about the competitor"}
	if !reflect.DeepEqual(competitorEdge.Evidence, wantCompetitor) {
		t.Errorf("competitor evidence = %v, want %v", competitorEdge.Evidence, wantCompetitor)
	}
}

func TestBuildCompetitorEdges(t *testing.T) {
	g := NewGraph()
	NewBuilder(g).Build("Acme", []common.AnalysisRecord{
		{
			RecordID: 1,
			Analysis: &common.RecordAnalysis{
				Keywords: []common.Keyword{{Keyword: "pricing"}, {Keyword: "support"}},
			},
			CompetitorNames: []string{"Foo"},
		},
	})

	competitor := NodeID{Type: NodeTypeCompetitor, Label: "Foo"}
	if !g.HasNode(competitor) {
		t.Fatalf("HasNode(Foo) = false, want competitor node created")
	}
	for _, label := range []string{"pricing", "support"} {
		topic := NodeID{Type: NodeTypeTopic, Label: label}
		if !g.HasEdge(competitor, topic) {
			t.Errorf("HasEdge(Foo, %s) = false, want true", label)
		}
		// No sentiment entry for Foo, so the topics route to MIXED.
		if !g.HasEdge(topic, NodeID{Type: NodeTypeSentiment, Label: SentimentMixed}) {
			t.Errorf("HasEdge(%s, MIXED) = false, want true", label)
		}
	}
}

func TestBuildEvidenceCap(t *testing.T) {
	record := common.AnalysisRecord{
		RecordID: 1,
		Analysis: &common.RecordAnalysis{
			BrandSentimentLabel: SentimentNegative,
			Keywords:            []common.Keyword{{Keyword: "pricing"}},
			Quotes: []common.Quote{
				{Text: "q1"}, {Text: "q2"}, {Text: "q3"},
			},
		},
	}

	g := NewGraph()
	NewBuilder(g).Build("Acme", []common.AnalysisRecord{record, record, record})

	topic := NodeID{Type: NodeTypeTopic, Label: "pricing"}
	edge, ok := g.Edge(topic, NodeID{Type: NodeTypeSentiment, Label: SentimentNegative})
	if !ok {
		t.Fatalf("Edge(pricing, NEGATIVE) not found")
	}
	if len(edge.Evidence) > 5 {
		t.Errorf("len(Evidence) = %d, want at most 5", len(edge.Evidence))
	}
	want := []string{"q2", "q3", "q1", "q2", "q3"}
	if !reflect.DeepEqual(edge.Evidence, want) {
		t.Errorf("Evidence = %v, want the most recent entries %v", edge.Evidence, want)
	}
}
