package graph

import (
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/logger"
)

// Engine combines the graph store, the builder and the ranking algorithms
// behind one façade. Handlers construct an engine per insight run, feed it
// the analyzed records and read insights back out.
type Engine struct {
	graph      *Graph
	builder    *Builder
	brandName  string
	centrality CentralityAnalyzer
	community  CommunityAnalyzer
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*Engine)

// WithCentralityAnalyzer returns an EngineOption that replaces the default
// PageRank centrality analyzer.
func WithCentralityAnalyzer(analyzer CentralityAnalyzer) EngineOption {
	return func(e *Engine) {
		e.centrality = analyzer
	}
}

// WithCommunityAnalyzer returns an EngineOption that replaces the default
// Louvain community analyzer.
func WithCommunityAnalyzer(analyzer CommunityAnalyzer) EngineOption {
	return func(e *Engine) {
		e.community = analyzer
	}
}

// NewEngine creates an engine for the given brand with an empty graph and
// the default analyzers.
func NewEngine(brandName string, opts ...EngineOption) *Engine {
	g := NewGraph()
	engine := &Engine{
		graph:      g,
		builder:    NewBuilder(g),
		brandName:  brandName,
		centrality: NewPageRank(),
		community:  NewLouvain(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Graph exposes the underlying store for inspection.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// BrandName returns the brand the engine was created for.
func (e *Engine) BrandName() string {
	return e.brandName
}

// Build rebuilds the graph from the given records. Previous graph content
// is discarded, so calling Build twice with the same records gives the
// same graph.
func (e *Engine) Build(records []common.AnalysisRecord) {
	e.builder.Build(e.brandName, records)
}

// RunAlgorithms computes centrality and communities and writes the results
// onto the nodes. It must run after Build and before the insight queries.
func (e *Engine) RunAlgorithms() {
	scores := e.centrality.ComputeCentrality(e.graph)
	for id, score := range scores {
		if node, ok := e.graph.Node(id); ok {
			node.Centrality = score
		}
	}

	communities := e.community.DetectCommunities(e.graph)
	for id, community := range communities {
		if node, ok := e.graph.Node(id); ok {
			node.Community = community
			node.HasCommunity = true
		}
	}

	logger.Debug("[Graph] Algorithms finished",
		"brand", e.brandName,
		"nodes", e.graph.NodeCount(),
		"edges", e.graph.EdgeCount(),
	)
}

// Report runs every insight query against the current graph and collects
// the results per competitor. It assumes Build and RunAlgorithms already
// ran.
func (e *Engine) Report(competitorNames []string, recordCount int) *common.InsightReport {
	report := &common.InsightReport{
		BrandName:       e.brandName,
		OpportunityGaps: make(map[string][]common.Insight),
		Battlegrounds:   make(map[string][]common.Insight),
		Strongholds:     make(map[string][]common.Insight),
		RecordCount:     recordCount,
	}
	for _, name := range competitorNames {
		report.OpportunityGaps[name] = e.OpportunityGaps(name)
		report.Battlegrounds[name] = e.Battlegrounds(e.brandName, name)
		report.Strongholds[name] = e.CompetitorStrongholds(name)
	}
	report.Quadrant = e.KeywordQuadrant()
	return report
}
