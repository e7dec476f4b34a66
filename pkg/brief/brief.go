package brief

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const maxTopicsPerSection = 12

// Generator turns a persisted insight report into an executive brief. Each
// narrative is summarized on its own, then the summaries are merged into the
// final brief. Topic citations survive both steps in square brackets.
//
// A Generator should be created using NewGenerator.
type Generator struct {
	parallelAiRequests int
	maxRetries         int
}

// NewGeneratorParams defines the configuration parameters for creating a
// new Generator.
type NewGeneratorParams struct {
	ParallelAiRequests int
	MaxRetries         int
}

// NewGenerator creates and returns a new Generator configured with the
// provided parameters.
func NewGenerator(params NewGeneratorParams) *Generator {
	parallel := params.ParallelAiRequests
	if parallel <= 0 {
		parallel = 1
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Generator{
		parallelAiRequests: parallel,
		maxRetries:         maxRetries,
	}
}

// section is one narrative staged for summarization: its quadrant topics
// plus every insight whose topic belongs to the narrative.
type section struct {
	narrative string
	entries   []common.QuadrantEntry
	insights  []common.Insight
}

// Generate produces the executive brief for a report. Narrative sections are
// summarized concurrently; the reduce step runs once over all summaries.
// An empty report yields an empty brief without error.
func (g *Generator) Generate(
	ctx context.Context,
	report *common.InsightReport,
	adapter ai.Adapter,
) (string, error) {
	sections := groupByNarrative(report)
	if len(sections) == 0 {
		return "", nil
	}

	logger.Debug("[Brief] Summarizing narratives",
		"brand", report.BrandName,
		"narratives", len(sections),
	)

	summaries := make([]string, len(sections))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelAiRequests)
	for i, sec := range sections {
		idx := i
		s := sec
		eg.Go(func() error {
			prompt := fmt.Sprintf(ai.BriefSectionPrompt, formatSection(s))
			res, err := util.RetryWithContext(gCtx, g.maxRetries, func(rCtx context.Context) (string, error) {
				return adapter.GenerateCompletion(rCtx, prompt)
			})
			if err != nil {
				return fmt.Errorf("failed to summarize narrative %s: %w", s.narrative, err)
			}
			summaries[idx] = normalizeSummaryText(res)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(ai.BriefPrompt, report.BrandName, strings.Join(summaries, "\n\n"))
	res, err := util.RetryWithContext(ctx, g.maxRetries, func(rCtx context.Context) (string, error) {
		return adapter.GenerateCompletion(rCtx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("failed to merge narrative summaries: %w", err)
	}

	return strings.TrimSpace(res), nil
}

// groupByNarrative splits the report's quadrant by narrative, preserving
// quadrant order so stronger narratives are summarized first. Topics per
// section are capped; insights are routed to the narrative of their topic.
func groupByNarrative(report *common.InsightReport) []section {
	if report == nil {
		return nil
	}

	narrativeByTopic := make(map[string]string, len(report.Quadrant))
	sectionIdx := make(map[string]int)
	var sections []section

	for _, entry := range report.Quadrant {
		narrativeByTopic[entry.Topic] = entry.Narrative

		idx, ok := sectionIdx[entry.Narrative]
		if !ok {
			idx = len(sections)
			sectionIdx[entry.Narrative] = idx
			sections = append(sections, section{narrative: entry.Narrative})
		}
		if len(sections[idx].entries) < maxTopicsPerSection {
			sections[idx].entries = append(sections[idx].entries, entry)
		}
	}

	for _, insights := range [...]map[string][]common.Insight{
		report.OpportunityGaps,
		report.Battlegrounds,
		report.Strongholds,
	} {
		competitors := make([]string, 0, len(insights))
		for name := range insights {
			competitors = append(competitors, name)
		}
		sort.Strings(competitors)

		for _, name := range competitors {
			for _, insight := range insights[name] {
				narrative, ok := narrativeByTopic[insight.Topic]
				if !ok {
					continue
				}
				idx := sectionIdx[narrative]
				sections[idx].insights = append(sections[idx].insights, insight)
			}
		}
	}

	return sections
}

func formatSection(s section) string {
	var b strings.Builder
	b.WriteString("Narrative: ")
	b.WriteString(s.narrative)
	b.WriteString("\nTopics:\n")
	for _, entry := range s.entries {
		fmt.Fprintf(&b, "%s: sentiment %d, strength %d\n", entry.Topic, entry.Sentiment, entry.Strength)
	}

	if len(s.insights) > 0 {
		b.WriteString("Insights:\n")
		for _, insight := range s.insights {
			fmt.Fprintf(&b, "%s | %s | %s\n", insight.Kind, insight.Topic, insight.Context)
			for _, evidence := range insight.Evidence {
				fmt.Fprintf(&b, "- %q\n", evidence)
			}
		}
	}

	return strings.TrimSpace(b.String())
}

func normalizeSummaryText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), " ")
}
