package brief

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/common"
)

func TestGroupByNarrative(t *testing.T) {
	report := &common.InsightReport{
		BrandName: "Acme",
		Quadrant: []common.QuadrantEntry{
			{Topic: "pricing", Sentiment: -40, Strength: 100, Narrative: "Narrative 1"},
			{Topic: "support", Sentiment: 60, Strength: 80, Narrative: "General"},
			{Topic: "fees", Sentiment: -20, Strength: 50, Narrative: "Narrative 1"},
		},
		OpportunityGaps: map[string][]common.Insight{
			"Initech": {
				{Kind: common.InsightKindOpportunityGap, Topic: "pricing", Context: "Initech leads on pricing"},
			},
		},
		Battlegrounds: map[string][]common.Insight{
			"Initech": {
				{Kind: common.InsightKindBattleground, Topic: "support", Context: "support is contested between Acme and Initech"},
				{Kind: common.InsightKindBattleground, Topic: "unknown", Context: "stale topic"},
			},
		},
	}

	sections := groupByNarrative(report)

	if len(sections) != 2 {
		t.Fatalf("groupByNarrative() returned %d sections, want 2", len(sections))
	}

	if sections[0].narrative != "Narrative 1" || sections[1].narrative != "General" {
		t.Errorf("section order = %s, %s, want Narrative 1, General", sections[0].narrative, sections[1].narrative)
	}

	if len(sections[0].entries) != 2 {
		t.Errorf("Narrative 1 has %d topics, want 2", len(sections[0].entries))
	}
	if len(sections[0].insights) != 1 || sections[0].insights[0].Topic != "pricing" {
		t.Errorf("Narrative 1 insights = %v, want the pricing gap", sections[0].insights)
	}

	if len(sections[1].insights) != 1 || sections[1].insights[0].Topic != "support" {
		t.Errorf("General insights = %v, want the support battleground", sections[1].insights)
	}
}

func TestFormatSection(t *testing.T) {
	s := section{
		narrative: "Narrative 1",
		entries: []common.QuadrantEntry{
			{Topic: "pricing", Sentiment: -40, Strength: 100, Narrative: "Narrative 1"},
		},
		insights: []common.Insight{
			{
				Kind:     common.InsightKindOpportunityGap,
				Topic:    "pricing",
				Context:  "Initech leads on pricing",
				Evidence: []string{"Their plans cost half as much."},
			},
		},
	}

	want := "Narrative: Narrative 1\n" +
		"Topics:\n" +
		"pricing: sentiment -40, strength 100\n" +
		"Insights:\n" +
		"opportunity_gap | pricing | Initech leads on pricing\n" +
		"- \"Their plans cost half as much.\""

	if got := formatSection(s); got != want {
		t.Errorf("formatSection() = %q, want %q", got, want)
	}
}

func TestNormalizeSummaryText(t *testing.T) {
	got := normalizeSummaryText("  First line.\nSecond   line.\r\n ")
	want := "First line. Second line."
	if got != want {
		t.Errorf("normalizeSummaryText() = %q, want %q", got, want)
	}
}

func TestGenerate(t *testing.T) {
	report := &common.InsightReport{
		BrandName: "Acme",
		Quadrant: []common.QuadrantEntry{
			{Topic: "pricing", Sentiment: -40, Strength: 100, Narrative: "Narrative 1"},
			{Topic: "support", Sentiment: 60, Strength: 80, Narrative: "General"},
		},
	}

	adapter := &stubAdapter{
		respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "Narrative summaries") {
				return "  Acme is under price pressure [pricing].\n\nSupport is a bright spot [support]. ", nil
			}
			return "Section summary [pricing].\n", nil
		},
	}
	generator := NewGenerator(NewGeneratorParams{ParallelAiRequests: 2})

	got, err := generator.Generate(context.Background(), report, adapter)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "Acme is under price pressure [pricing].\n\nSupport is a bright spot [support]."
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}

	if len(adapter.prompts) != 3 {
		t.Fatalf("adapter received %d prompts, want 2 sections + 1 reduce", len(adapter.prompts))
	}

	var sawNarrative, sawGeneral, sawReduce bool
	for _, prompt := range adapter.prompts {
		switch {
		case strings.Contains(prompt, "Narrative: Narrative 1"):
			sawNarrative = true
		case strings.Contains(prompt, "Narrative: General"):
			sawGeneral = true
		case strings.Contains(prompt, "Narrative summaries"):
			sawReduce = true
			if !strings.Contains(prompt, "Section summary [pricing].") {
				t.Error("reduce prompt missing the section summaries")
			}
			if !strings.Contains(prompt, `"Acme"`) {
				t.Error("reduce prompt missing the brand name")
			}
		}
	}
	if !sawNarrative || !sawGeneral || !sawReduce {
		t.Errorf("prompt coverage narrative=%v general=%v reduce=%v, want all", sawNarrative, sawGeneral, sawReduce)
	}
}

func TestGenerate_EmptyReport(t *testing.T) {
	adapter := &stubAdapter{}
	generator := NewGenerator(NewGeneratorParams{})

	got, err := generator.Generate(context.Background(), &common.InsightReport{BrandName: "Acme"}, adapter)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "" {
		t.Errorf("Generate() = %q, want empty brief", got)
	}
	if len(adapter.prompts) != 0 {
		t.Errorf("adapter received %d prompts, want 0", len(adapter.prompts))
	}
}

func TestGenerate_SectionFailure(t *testing.T) {
	report := &common.InsightReport{
		BrandName: "Acme",
		Quadrant: []common.QuadrantEntry{
			{Topic: "pricing", Sentiment: -40, Strength: 100, Narrative: "Narrative 1"},
		},
	}
	adapter := &stubAdapter{
		respond: func(prompt string) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	generator := NewGenerator(NewGeneratorParams{MaxRetries: 2})

	_, err := generator.Generate(context.Background(), report, adapter)
	if err == nil {
		t.Fatal("Generate() error = nil, want section failure")
	}
	if !strings.Contains(err.Error(), "failed to summarize narrative") {
		t.Errorf("Generate() error = %v, want narrative failure", err)
	}
}

type stubAdapter struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (s *stubAdapter) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.respond == nil {
		return "", nil
	}
	return s.respond(prompt)
}

func (s *stubAdapter) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	return nil
}

func (s *stubAdapter) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, nil
}

func (s *stubAdapter) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	return nil, nil
}

func (s *stubAdapter) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }

func (s *stubAdapter) ResetMetrics() {}

func (s *stubAdapter) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
