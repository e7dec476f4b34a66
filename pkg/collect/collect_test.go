package collect

import (
	"context"
	"strings"
	"testing"

	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/loader"
)

func TestProcessSource(t *testing.T) {
	source := loader.SourceFile{
		ID:         "s1",
		Path:       "review.txt",
		SourceType: loader.SourceTypeDocument,
		MaxTokens:  1,
		Loader:     &mockLoader{text: "First sentence. Second sentence. Third sentence."},
	}
	adapter := &mockAdapter{
		failFirst: 1,
		analysis: common.RecordAnalysis{
			BrandSentimentLabel: "positive",
		},
	}
	collector := NewCollector(NewCollectorParams{
		ParallelAiRequests: 2,
		MaxRetries:         3,
	})

	got, err := collector.ProcessSource(context.Background(), source, "Acme", []string{"Initech"}, adapter)
	if err != nil {
		t.Fatalf("ProcessSource() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("ProcessSource() returned %d units, want 3", len(got))
	}

	wantTexts := []string{"First sentence.", "Second sentence.", "Third sentence."}
	for i, unit := range got {
		if unit.Text != wantTexts[i] {
			t.Errorf("unit[%d].Text = %q, want %q", i, unit.Text, wantTexts[i])
		}
		if unit.SourceID != "s1" {
			t.Errorf("unit[%d].SourceID = %s, want s1", i, unit.SourceID)
		}
		if unit.Analysis == nil {
			t.Errorf("unit[%d].Analysis is nil", i)
			continue
		}
		if unit.Analysis.BrandSentimentLabel != "POSITIVE" {
			t.Errorf("unit[%d] sentiment = %s, want POSITIVE", i, unit.Analysis.BrandSentimentLabel)
		}
	}

	// 3 units, one extra call for the retried failure.
	if adapter.calls != 4 {
		t.Errorf("adapter calls = %d, want 4", adapter.calls)
	}
}

func TestProcessSource_EmptySource(t *testing.T) {
	source := loader.SourceFile{
		ID:         "s1",
		Path:       "empty.txt",
		SourceType: loader.SourceTypeDocument,
		MaxTokens:  10,
		Loader:     &mockLoader{text: "   "},
	}
	adapter := &mockAdapter{}
	collector := NewCollector(NewCollectorParams{})

	got, err := collector.ProcessSource(context.Background(), source, "Acme", nil, adapter)
	if err != nil {
		t.Fatalf("ProcessSource() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ProcessSource() returned %d units, want 0", len(got))
	}
	if adapter.calls != 0 {
		t.Errorf("adapter calls = %d, want 0", adapter.calls)
	}
}

func TestProcessSource_AnalysisFailure(t *testing.T) {
	source := loader.SourceFile{
		ID:         "s1",
		Path:       "review.txt",
		SourceType: loader.SourceTypeDocument,
		MaxTokens:  10,
		Loader:     &mockLoader{text: "Hello world."},
	}
	adapter := &mockAdapter{failFirst: 100}
	collector := NewCollector(NewCollectorParams{MaxRetries: 2})

	_, err := collector.ProcessSource(context.Background(), source, "Acme", nil, adapter)
	if err == nil {
		t.Fatal("ProcessSource() error = nil, want analysis failure")
	}
	if !strings.Contains(err.Error(), "failed to analyze unit") {
		t.Errorf("ProcessSource() error = %v, want unit failure", err)
	}
	if adapter.calls != 2 {
		t.Errorf("adapter calls = %d, want 2 tries", adapter.calls)
	}
}
