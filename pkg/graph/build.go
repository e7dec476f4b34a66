package graph

import (
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/logger"
)

// Builder transforms batches of analysis records into graph state.
type Builder struct {
	graph *Graph
	brand NodeID
}

// NewBuilder creates a builder writing into g.
func NewBuilder(g *Graph) *Builder {
	return &Builder{graph: g}
}

// Build rebuilds the graph from scratch: clears it, seeds the three
// sentiment nodes and the brand node, then processes the records in order.
func (b *Builder) Build(brandName string, records []common.AnalysisRecord) {
	b.graph.Clear()
	b.brand = NodeID{Type: NodeTypeBrand, Label: brandName}

	for _, label := range []string{SentimentPositive, SentimentNegative, SentimentMixed} {
		b.graph.AddNode(NodeID{Type: NodeTypeSentiment, Label: label})
	}
	b.graph.AddNode(b.brand)

	for _, record := range records {
		b.processRecord(record)
	}

	logger.Debug("[Graph] Build finished",
		"brand", brandName,
		"records", len(records),
		"nodes", b.graph.NodeCount(),
		"edges", b.graph.EdgeCount(),
	)
}

func (b *Builder) processRecord(record common.AnalysisRecord) {
	analysis := record.Analysis
	if analysis == nil {
		logger.Warn("[Graph] Skipping record without analysis payload", "record_id", record.RecordID)
		return
	}

	for _, product := range analysis.BrandProducts {
		productID := NodeID{Type: NodeTypeProduct, Label: product}
		b.graph.AddNode(productID)
		b.graph.AddEdge(b.brand, productID, EdgeTypeMentionedWith, nil, record.RecordID)
	}

	brandSentiment := analysis.BrandSentimentLabel
	if brandSentiment == "" {
		brandSentiment = SentimentMixed
	}
	brandQuotes := quotesForBrand(analysis.Quotes, b.brand.Label)

	for _, keyword := range analysis.Keywords {
		topicID := NodeID{Type: NodeTypeTopic, Label: keyword.Keyword}
		b.graph.AddNode(topicID)

		if len(analysis.BrandProducts) > 0 {
			for _, product := range analysis.BrandProducts {
				productID := NodeID{Type: NodeTypeProduct, Label: product}
				b.graph.AddEdge(productID, topicID, EdgeTypeHasAttribute, nil, record.RecordID)
			}
		} else {
			b.graph.AddEdge(b.brand, topicID, EdgeTypeHasAttribute, nil, record.RecordID)
		}

		sentimentID := NodeID{Type: NodeTypeSentiment, Label: brandSentiment}
		b.graph.AddEdge(topicID, sentimentID, EdgeTypeLeadsTo, brandQuotes, record.RecordID)
	}

	for _, competitor := range record.CompetitorNames {
		competitorID := NodeID{Type: NodeTypeCompetitor, Label: competitor}
		b.graph.AddNode(competitorID)

		competitorSentiment := SentimentMixed
		if sentiment, ok := analysis.CompetitorSentiments[competitor]; ok && sentiment.Label != "" {
			competitorSentiment = sentiment.Label
		}
		competitorQuotes := quotesForEntity(analysis.Quotes, competitor)

		for _, keyword := range analysis.Keywords {
			topicID := NodeID{Type: NodeTypeTopic, Label: keyword.Keyword}
			b.graph.AddEdge(competitorID, topicID, EdgeTypeHasAttribute, nil, record.RecordID)

			sentimentID := NodeID{Type: NodeTypeSentiment, Label: competitorSentiment}
			b.graph.AddEdge(topicID, sentimentID, EdgeTypeLeadsTo, competitorQuotes, record.RecordID)
		}
	}
}

// quotesForBrand keeps quotes about the tracked brand: untagged entries and
// entries tagged with the brand name or the literal "Brand".
func quotesForBrand(quotes []common.Quote, brandName string) []string {
	result := make([]string, 0, len(quotes))
	for _, quote := range quotes {
		if quote.Entity == "" || quote.Entity == brandName || quote.Entity == "Brand" {
			result = append(result, quote.Text)
		}
	}
	return result
}

// quotesForEntity keeps quotes tagged with the given entity name.
func quotesForEntity(quotes []common.Quote, entity string) []string {
	result := make([]string, 0, len(quotes))
	for _, quote := range quotes {
		if quote.Entity == entity {
			result = append(result, quote.Text)
		}
	}
	return result
}
