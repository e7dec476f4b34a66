package collect

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/graph"
	"github.com/meridianlabs/brandgraph/pkg/loader"
)

// AnalyzedUnit is one analyzed chunk of a mention source. The analysis is
// ready to be persisted as an analysis record and fed to the graph builder.
type AnalyzedUnit struct {
	ID       string
	SourceID string
	Start    int
	End      int
	Text     string
	Analysis *common.RecordAnalysis
}

func analyzeUnit(
	ctx context.Context,
	unit processUnit,
	source loader.SourceFile,
	brandName string,
	competitorNames []string,
	adapter ai.Adapter,
) (AnalyzedUnit, error) {
	baseName := filepath.Base(source.Path)
	competitors := strings.Join(competitorNames, ",")

	var systemPrompt string
	if source.SourceType == loader.SourceTypeCSV {
		csvSummary := summarizeCSV(unit.text, baseName)
		systemPrompt = fmt.Sprintf(
			ai.AnalyzePromptCSV,
			brandName,
			competitors,
			baseName,
			csvSummary,
			brandName,
			brandName,
			competitors,
		)
	} else {
		systemPrompt = fmt.Sprintf(
			ai.AnalyzePromptText,
			brandName,
			competitors,
			baseName,
			brandName,
			brandName,
			competitors,
			brandName,
		)
	}

	var analysis common.RecordAnalysis
	err := adapter.GenerateCompletionWithFormat(
		ctx,
		"analyze_brand_mention",
		"Extract structured brand perception data from a mention document.",
		unit.text,
		&analysis,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return AnalyzedUnit{}, err
	}

	normalizeAnalysis(&analysis, competitorNames)

	return AnalyzedUnit{
		ID:       unit.id,
		SourceID: unit.sourceID,
		Start:    unit.start,
		End:      unit.end,
		Text:     unit.text,
		Analysis: &analysis,
	}, nil
}

// normalizeAnalysis cleans model output in place: labels are deduplicated
// and stripped of list markers, sentiment labels are folded to the closed
// POSITIVE/NEGATIVE/MIXED set, and competitor entries that are not in the
// tracked list are dropped.
func normalizeAnalysis(analysis *common.RecordAnalysis, competitorNames []string) {
	analysis.BrandProducts = util.DedupeLabels(analysis.BrandProducts)
	analysis.BrandSentimentLabel = normalizeSentimentLabel(analysis.BrandSentimentLabel)

	keywords := make([]common.Keyword, 0, len(analysis.Keywords))
	seen := make(map[string]struct{}, len(analysis.Keywords))
	for _, kw := range analysis.Keywords {
		cleaned := strings.ToLower(util.CleanLabel(kw.Keyword))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		keywords = append(keywords, common.Keyword{Keyword: cleaned})
	}
	analysis.Keywords = keywords

	if len(analysis.CompetitorSentiments) > 0 {
		tracked := make(map[string]string, len(competitorNames))
		for _, name := range competitorNames {
			tracked[strings.ToLower(strings.TrimSpace(name))] = name
		}

		sentiments := make(map[string]common.Sentiment, len(analysis.CompetitorSentiments))
		for name, sentiment := range analysis.CompetitorSentiments {
			canonical, ok := tracked[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				continue
			}
			sentiment.Label = normalizeSentimentLabel(sentiment.Label)
			sentiments[canonical] = sentiment
		}
		analysis.CompetitorSentiments = sentiments
	}

	quotes := make([]common.Quote, 0, len(analysis.Quotes))
	for _, quote := range analysis.Quotes {
		quote.Text = strings.TrimSpace(quote.Text)
		quote.Entity = strings.TrimSpace(quote.Entity)
		if quote.Text == "" {
			continue
		}
		quotes = append(quotes, quote)
	}
	analysis.Quotes = quotes
}

// normalizeSentimentLabel folds a model-produced label onto the closed
// sentiment set. Unknown or empty labels come back empty so the graph
// builder applies its MIXED default.
func normalizeSentimentLabel(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case graph.SentimentPositive:
		return graph.SentimentPositive
	case graph.SentimentNegative:
		return graph.SentimentNegative
	case graph.SentimentMixed:
		return graph.SentimentMixed
	default:
		return ""
	}
}

func summarizeCSV(text string, baseName string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	rows := strings.Split(trimmed, "\n")

	var header string
	dataRows := rows
	if isCSVHeader(rows) {
		header = rows[0]
		dataRows = rows[1:]
	}

	sampleRows := dataRows[:min(3, len(dataRows))]

	var summary strings.Builder
	if baseName != "" {
		summary.WriteString("Filename: ")
		summary.WriteString(baseName)
		summary.WriteString("\n")
	}
	if header != "" {
		summary.WriteString("Headers: ")
		summary.WriteString(header)
		summary.WriteString("\n")
	}
	fmt.Fprintf(&summary, "Row count: %d\n", len(dataRows))
	if len(sampleRows) > 0 {
		summary.WriteString("Sample rows:\n")
		summary.WriteString(strings.Join(sampleRows, "\n"))
	}

	return summary.String()
}
