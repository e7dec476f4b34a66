package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/meridianlabs/brandgraph/pkg/common"
)

// maxRankedInsights caps the ranked insight queries to the strongest hits.
const maxRankedInsights = 3

// OpportunityGaps returns the topics where the given competitor draws
// negative sentiment, strongest first: score = weight(topic→NEGATIVE) ×
// topic centrality, topics with zero score dropped, top 3. An unknown
// competitor yields an empty result.
func (e *Engine) OpportunityGaps(competitorName string) []common.Insight {
	return e.sentimentInsights(
		competitorName,
		SentimentNegative,
		common.InsightKindOpportunityGap,
		"%s is failing at %s",
	)
}

// CompetitorStrongholds returns the topics where the given competitor draws
// positive sentiment, scored like OpportunityGaps but on the
// topic→POSITIVE edge.
func (e *Engine) CompetitorStrongholds(competitorName string) []common.Insight {
	return e.sentimentInsights(
		competitorName,
		SentimentPositive,
		common.InsightKindStrength,
		"%s is strong at %s",
	)
}

func (e *Engine) sentimentInsights(competitorName, sentimentLabel string, kind common.InsightKind, contextFormat string) []common.Insight {
	insights := make([]common.Insight, 0)

	competitorID := NodeID{Type: NodeTypeCompetitor, Label: competitorName}
	if !e.graph.HasNode(competitorID) {
		return insights
	}
	sentimentID := NodeID{Type: NodeTypeSentiment, Label: sentimentLabel}

	e.graph.OutEdges(competitorID, func(dst NodeID, _ *Edge) bool {
		if dst.Type != NodeTypeTopic {
			return true
		}
		sentimentEdge, ok := e.graph.Edge(dst, sentimentID)
		if !ok {
			return true
		}
		topic, _ := e.graph.Node(dst)
		score := float64(sentimentEdge.Weight) * topic.Centrality
		if score <= 0 {
			return true
		}
		insights = append(insights, common.Insight{
			Kind:     kind,
			Topic:    dst.Label,
			Score:    score,
			Evidence: cloneEvidence(sentimentEdge.Evidence),
			Context:  fmt.Sprintf(contextFormat, competitorName, dst.Label),
		})
		return true
	})

	return rankInsights(insights)
}

// Battlegrounds returns the topics contested between the brand and the
// given competitor: topics linked from both, scored by the combined edge
// weight times centrality, top 3. Missing brand or competitor yields an
// empty result.
func (e *Engine) Battlegrounds(brandName, competitorName string) []common.Insight {
	insights := make([]common.Insight, 0)

	brandID := NodeID{Type: NodeTypeBrand, Label: brandName}
	competitorID := NodeID{Type: NodeTypeCompetitor, Label: competitorName}
	if !e.graph.HasNode(brandID) || !e.graph.HasNode(competitorID) {
		return insights
	}

	e.graph.OutEdges(competitorID, func(dst NodeID, competitorEdge *Edge) bool {
		if dst.Type != NodeTypeTopic {
			return true
		}
		brandEdge, ok := e.graph.Edge(brandID, dst)
		if !ok {
			return true
		}
		topic, _ := e.graph.Node(dst)
		score := float64(brandEdge.Weight+competitorEdge.Weight) * topic.Centrality

		evidence := cloneEvidence(brandEdge.Evidence)
		evidence = append(evidence, competitorEdge.Evidence...)

		insights = append(insights, common.Insight{
			Kind:     common.InsightKindBattleground,
			Topic:    dst.Label,
			Score:    score,
			Evidence: evidence,
			Context:  fmt.Sprintf("%s is contested between %s and %s", dst.Label, brandName, competitorName),
		})
		return true
	})

	return rankInsights(insights)
}

// KeywordQuadrant places every topic on the sentiment/strength quadrant.
// Sentiment is round(100×(pos−neg)/(pos+neg)) with 0 when both weights are
// zero; strength is round(100×centrality/maxTopicCentrality) with 0 when
// no topic has centrality. The full list is returned sorted by strength
// descending; it feeds a scatter plot, so there is no top-N cap.
func (e *Engine) KeywordQuadrant() []common.QuadrantEntry {
	positiveID := NodeID{Type: NodeTypeSentiment, Label: SentimentPositive}
	negativeID := NodeID{Type: NodeTypeSentiment, Label: SentimentNegative}

	type topicInfo struct {
		id   NodeID
		node *Node
	}
	topics := make([]topicInfo, 0)
	maxCentrality := 0.0
	e.graph.Nodes(func(id NodeID, node *Node) bool {
		if node.Type != NodeTypeTopic {
			return true
		}
		topics = append(topics, topicInfo{id: id, node: node})
		if node.Centrality > maxCentrality {
			maxCentrality = node.Centrality
		}
		return true
	})

	entries := make([]common.QuadrantEntry, 0, len(topics))
	for _, topic := range topics {
		positive := 0
		if edge, ok := e.graph.Edge(topic.id, positiveID); ok {
			positive = edge.Weight
		}
		negative := 0
		if edge, ok := e.graph.Edge(topic.id, negativeID); ok {
			negative = edge.Weight
		}

		sentiment := 0
		if positive+negative > 0 {
			sentiment = int(math.Round(100 * float64(positive-negative) / float64(positive+negative)))
		}

		strength := 0
		if maxCentrality > 0 {
			strength = int(math.Round(100 * topic.node.Centrality / maxCentrality))
		}

		narrative := "General"
		if topic.node.HasCommunity {
			narrative = fmt.Sprintf("Narrative %d", topic.node.Community)
		}

		entries = append(entries, common.QuadrantEntry{
			Topic:     topic.id.Label,
			Sentiment: sentiment,
			Strength:  strength,
			Narrative: narrative,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Strength != entries[j].Strength {
			return entries[i].Strength > entries[j].Strength
		}
		return entries[i].Topic < entries[j].Topic
	})
	return entries
}

// rankInsights sorts by score descending (topic ascending on ties) and
// keeps the strongest entries.
func rankInsights(insights []common.Insight) []common.Insight {
	sort.Slice(insights, func(i, j int) bool {
		if insights[i].Score != insights[j].Score {
			return insights[i].Score > insights[j].Score
		}
		return insights[i].Topic < insights[j].Topic
	})
	if len(insights) > maxRankedInsights {
		insights = insights[:maxRankedInsights]
	}
	return insights
}

func cloneEvidence(evidence []string) []string {
	cloned := make([]string, len(evidence))
	copy(cloned, evidence)
	return cloned
}
