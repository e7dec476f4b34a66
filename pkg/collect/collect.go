package collect

import (
	"context"
	"fmt"

	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/loader"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Collector turns mention sources into analysis records. It manages token
// encoding, chunking and concurrent AI requests.
//
// A Collector should be created using NewCollector.
type Collector struct {
	tokenEncoder       string
	parallelAiRequests int
	maxRetries         int
}

// NewCollectorParams defines the configuration parameters for creating a
// new Collector.
//
// TokenEncoder specifies the encoding used to measure chunk sizes.
// ParallelAiRequests controls how many analysis requests run concurrently.
// MaxRetries bounds how often a failed analysis request is retried.
type NewCollectorParams struct {
	TokenEncoder       string
	ParallelAiRequests int
	MaxRetries         int
}

// NewCollector creates and returns a new Collector configured with the
// provided parameters.
//
// Example:
//
//	collector := collect.NewCollector(collect.NewCollectorParams{
//		TokenEncoder:       "o200k_base",
//		ParallelAiRequests: 15,
//	})
func NewCollector(params NewCollectorParams) *Collector {
	encoder := params.TokenEncoder
	if encoder == "" {
		encoder = "o200k_base"
	}
	parallel := params.ParallelAiRequests
	if parallel <= 0 {
		parallel = 1
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Collector{
		tokenEncoder:       encoder,
		parallelAiRequests: parallel,
		maxRetries:         maxRetries,
	}
}

// ProcessSource loads a mention source, chunks it into units and analyzes
// each unit for brand perception data. Units are analyzed concurrently; the
// returned slice preserves unit order.
func (c *Collector) ProcessSource(
	ctx context.Context,
	source loader.SourceFile,
	brandName string,
	competitorNames []string,
	adapter ai.Adapter,
) ([]AnalyzedUnit, error) {
	units, err := getUnitsFromSource(ctx, source, c.tokenEncoder)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk source into units: %w", err)
	}
	if len(units) == 0 {
		return nil, nil
	}

	logger.Debug("[Collect] Analyzing source",
		"source", source.ID,
		"units", len(units),
		"brand", brandName,
	)

	results := make([]AnalyzedUnit, len(units))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelAiRequests)
	for i, unit := range units {
		idx := i
		u := unit
		g.Go(func() error {
			res, err := util.RetryWithContext(gCtx, c.maxRetries, func(rCtx context.Context) (AnalyzedUnit, error) {
				return analyzeUnit(rCtx, u, source, brandName, competitorNames, adapter)
			})
			if err != nil {
				return fmt.Errorf("failed to analyze unit %s: %w", u.id, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
