package collect

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/loader"
)

func TestAnalyzeUnit(t *testing.T) {
	unit := processUnit{
		id:       "u1",
		sourceID: "s1",
		start:    0,
		end:      2,
		text:     "Acme shipped a great update. Initech lagged behind.",
	}
	source := loader.SourceFile{
		ID:         "s1",
		Path:       "/data/mentions/review.txt",
		SourceType: loader.SourceTypeDocument,
	}
	adapter := &mockAdapter{
		analysis: common.RecordAnalysis{
			BrandProducts:       []string{"Widget Pro", "widget pro"},
			BrandSentimentLabel: "positive",
			Keywords:            []common.Keyword{{Keyword: "Updates"}},
			CompetitorSentiments: map[string]common.Sentiment{
				"initech": {Label: "negative"},
			},
			Quotes: []common.Quote{
				{Text: "Acme shipped a great update.", Entity: ""},
			},
		},
	}

	got, err := analyzeUnit(context.Background(), unit, source, "Acme", []string{"Initech", "Globex"}, adapter)
	if err != nil {
		t.Fatalf("analyzeUnit() error = %v", err)
	}

	if got.ID != "u1" || got.SourceID != "s1" {
		t.Errorf("analyzeUnit() ids = %s/%s, want u1/s1", got.ID, got.SourceID)
	}
	if got.Start != 0 || got.End != 2 {
		t.Errorf("analyzeUnit() range = [%d,%d), want [0,2)", got.Start, got.End)
	}
	if got.Text != unit.text {
		t.Errorf("analyzeUnit() text = %q, want %q", got.Text, unit.text)
	}

	if adapter.lastPrompt != unit.text {
		t.Errorf("user prompt = %q, want unit text", adapter.lastPrompt)
	}
	if len(adapter.lastSystem) != 1 {
		t.Fatalf("got %d system prompts, want 1", len(adapter.lastSystem))
	}
	system := adapter.lastSystem[0]
	for _, want := range []string{"Acme", "Initech,Globex", "review.txt"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	if got.Analysis == nil {
		t.Fatal("analyzeUnit() returned nil analysis")
	}
	if !reflect.DeepEqual(got.Analysis.BrandProducts, []string{"Widget Pro"}) {
		t.Errorf("BrandProducts = %v, want deduplicated [Widget Pro]", got.Analysis.BrandProducts)
	}
	if got.Analysis.BrandSentimentLabel != "POSITIVE" {
		t.Errorf("BrandSentimentLabel = %s, want POSITIVE", got.Analysis.BrandSentimentLabel)
	}
	if _, ok := got.Analysis.CompetitorSentiments["Initech"]; !ok {
		t.Errorf("CompetitorSentiments = %v, want canonical Initech key", got.Analysis.CompetitorSentiments)
	}
}

func TestAnalyzeUnit_CSVPrompt(t *testing.T) {
	unit := processUnit{
		id:       "u1",
		sourceID: "s1",
		text:     "id,author,text\n1,alice,Great product",
	}
	source := loader.SourceFile{
		ID:         "s1",
		Path:       "mentions.csv",
		SourceType: loader.SourceTypeCSV,
	}
	adapter := &mockAdapter{}

	_, err := analyzeUnit(context.Background(), unit, source, "Acme", []string{"Initech"}, adapter)
	if err != nil {
		t.Fatalf("analyzeUnit() error = %v", err)
	}

	if len(adapter.lastSystem) != 1 {
		t.Fatalf("got %d system prompts, want 1", len(adapter.lastSystem))
	}
	system := adapter.lastSystem[0]
	for _, want := range []string{"Filename: mentions.csv", "Row count: 1"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	analysis := &common.RecordAnalysis{
		BrandProducts:       []string{"Widget Pro", "widget pro", "- Gadget"},
		BrandSentimentLabel: "positive",
		Keywords: []common.Keyword{
			{Keyword: "Pricing"},
			{Keyword: "**pricing**"},
			{Keyword: " Support "},
			{Keyword: ""},
		},
		CompetitorSentiments: map[string]common.Sentiment{
			"initech":  {Label: "negative"},
			"Hooli":    {Label: "POSITIVE"},
			" Globex ": {Label: "great"},
		},
		Quotes: []common.Quote{
			{Text: "  Acme nailed it.  ", Entity: ""},
			{Text: "", Entity: "Initech"},
			{Text: "Initech keeps crashing.", Entity: " Initech "},
		},
	}

	normalizeAnalysis(analysis, []string{"Initech", "Globex"})

	if !reflect.DeepEqual(analysis.BrandProducts, []string{"Widget Pro", "Gadget"}) {
		t.Errorf("BrandProducts = %v, want [Widget Pro Gadget]", analysis.BrandProducts)
	}
	if analysis.BrandSentimentLabel != "POSITIVE" {
		t.Errorf("BrandSentimentLabel = %s, want POSITIVE", analysis.BrandSentimentLabel)
	}

	wantKeywords := []common.Keyword{{Keyword: "pricing"}, {Keyword: "support"}}
	if !reflect.DeepEqual(analysis.Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want %v", analysis.Keywords, wantKeywords)
	}

	wantSentiments := map[string]common.Sentiment{
		"Initech": {Label: "NEGATIVE"},
		"Globex":  {Label: ""},
	}
	if !reflect.DeepEqual(analysis.CompetitorSentiments, wantSentiments) {
		t.Errorf("CompetitorSentiments = %v, want %v", analysis.CompetitorSentiments, wantSentiments)
	}

	wantQuotes := []common.Quote{
		{Text: "Acme nailed it.", Entity: ""},
		{Text: "Initech keeps crashing.", Entity: "Initech"},
	}
	if !reflect.DeepEqual(analysis.Quotes, wantQuotes) {
		t.Errorf("Quotes = %v, want %v", analysis.Quotes, wantQuotes)
	}
}

func TestNormalizeSentimentLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"POSITIVE", "POSITIVE"},
		{"positive", "POSITIVE"},
		{" Negative ", "NEGATIVE"},
		{"mixed", "MIXED"},
		{"neutral", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := normalizeSentimentLabel(tt.label); got != tt.want {
				t.Errorf("normalizeSentimentLabel(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestSummarizeCSV(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		baseName string
		want     string
	}{
		{
			name:     "header with sample cap",
			text:     "id,author,text\n1,alice,Great\n2,bob,Bad\n3,carol,Fine\n4,dan,Meh",
			baseName: "mentions.csv",
			want: "Filename: mentions.csv\n" +
				"Headers: id,author,text\n" +
				"Row count: 4\n" +
				"Sample rows:\n" +
				"1,alice,Great\n2,bob,Bad\n3,carol,Fine",
		},
		{
			name:     "no header detected",
			text:     "1,2\n3,4",
			baseName: "numbers.csv",
			want: "Filename: numbers.csv\n" +
				"Row count: 2\n" +
				"Sample rows:\n" +
				"1,2\n3,4",
		},
		{
			name:     "empty input",
			text:     "   ",
			baseName: "empty.csv",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarizeCSV(tt.text, tt.baseName); got != tt.want {
				t.Errorf("summarizeCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

type mockAdapter struct {
	mu         sync.Mutex
	calls      int
	failFirst  int
	lastPrompt string
	lastSystem []string
	analysis   common.RecordAnalysis
}

func (m *mockAdapter) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	options := &ai.GenerateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt
	m.lastSystem = options.SystemPrompts
	if m.calls <= m.failFirst {
		return errors.New("model overloaded")
	}

	analysis, ok := out.(*common.RecordAnalysis)
	if !ok {
		return fmt.Errorf("unexpected output type %T", out)
	}
	*analysis = m.analysis
	return nil
}

func (m *mockAdapter) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (m *mockAdapter) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, nil
}

func (m *mockAdapter) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	return nil, nil
}

func (m *mockAdapter) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }

func (m *mockAdapter) ResetMetrics() {}

func (m *mockAdapter) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
