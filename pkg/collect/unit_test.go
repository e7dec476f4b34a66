package collect

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/meridianlabs/brandgraph/pkg/loader"
)

func TestSplitIntoSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: []string(nil),
		},
		{
			name: "single sentence",
			text: "Hello world.",
			want: []string{"Hello world."},
		},
		{
			name: "multiple sentences",
			text: "Hello world. This is a test! How are you?",
			want: []string{
				"Hello world.",
				"This is a test!",
				"How are you?",
			},
		},
		{
			name: "sentences with empty lines",
			text: "First sentence.\n\nSecond sentence.\n\nThird sentence.",
			want: []string{
				"First sentence.",
				"Second sentence.",
				"Third sentence.",
			},
		},
		{
			name: "multi-line sentence",
			text: "This is a long\nsentence that spans\nmultiple lines.",
			want: []string{"This is a long sentence that spans multiple lines."},
		},
		{
			name: "markdown table as single sentence",
			text: "Header1 | Header2\n------- | -------\nValue1  | Value2\nValue3  | Value4",
			want: []string{
				"Header1 | Header2\n------- | -------\nValue1  | Value2\nValue3  | Value4",
			},
		},
		{
			name: "text with table",
			text: "Introduction text.\nHeader1 | Header2\n------- | -------\nValue1  | Value2\nConclusion text.",
			want: []string{
				"Introduction text.",
				"Header1 | Header2\n------- | -------\nValue1  | Value2",
				"Conclusion text.",
			},
		},
		{
			name: "table without delimiter",
			text: "Header1 | Header2\nValue1  | Value2",
			want: []string{
				"Header1 | Header2",
				"Value1  | Value2",
			},
		},
		{
			name: "text with no punctuation",
			text: "Just some text without punctuation\nMore text here",
			want: []string{"Just some text without punctuation More text here"},
		},
		{
			name: "mixed content",
			text: "Start here.\n\n| Col1 | Col2 |\n|------|------|\n| Val1 | Val2 |\n\nEnd here!",
			want: []string{
				"Start here.",
				"| Col1 | Col2 |\n|------|------|\n| Val1 | Val2 |",
				"End here!",
			},
		},
		{
			name: "numeric listing should stay in same sentence",
			text: "Today we discuss three points. 1. First item 2. Second item 3. Third item. Done!",
			want: []string{
				"Today we discuss three points.",
				"1. First item 2. Second item 3. Third item.",
				"Done!",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitIntoSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitIntoSentences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestIsCSVHeader(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want bool
	}{
		{
			name: "header with known column names",
			rows: []string{"name,channel", "alice,web", "bob,mobile"},
			want: true,
		},
		{
			name: "text header over numeric data",
			rows: []string{"product,price", "widget,9.99", "gadget,19.99"},
			want: true,
		},
		{
			name: "numeric first row is data",
			rows: []string{"1,2,3", "4,5,6"},
			want: false,
		},
		{
			name: "all text without known names",
			rows: []string{"alpha,beta", "gamma,delta"},
			want: false,
		},
		{
			name: "single row",
			rows: []string{"id,author,text"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCSVHeader(tt.rows); got != tt.want {
				t.Errorf("isCSVHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetUnitsFromSource(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens int
		want      []processUnit
	}{
		{
			name:      "single sentence under limit",
			text:      "Hello world.",
			maxTokens: 10,
			want: []processUnit{
				{
					sourceID: "test.txt",
					start:    0,
					end:      1,
					text:     "Hello world.",
				},
			},
		},
		{
			name:      "multiple sentences under limit",
			text:      "First sentence. Second sentence.",
			maxTokens: 20,
			want: []processUnit{
				{
					sourceID: "test.txt",
					start:    0,
					end:      2,
					text:     "First sentence. Second sentence.",
				},
			},
		},
		{
			name:      "sentences split by token limit",
			text:      "First sentence. Second sentence. Third sentence.",
			maxTokens: 1,
			want: []processUnit{
				{
					sourceID: "test.txt",
					start:    0,
					end:      1,
					text:     "First sentence.",
				},
				{
					sourceID: "test.txt",
					start:    1,
					end:      2,
					text:     "Second sentence.",
				},
				{
					sourceID: "test.txt",
					start:    2,
					end:      3,
					text:     "Third sentence.",
				},
			},
		},
		{
			name:      "table as single unit",
			text:      "| Header1 | Header2 |\n|---------|---------|\n| Value1  | Value2  |",
			maxTokens: 10,
			want: []processUnit{
				{
					sourceID: "test.txt",
					start:    0,
					end:      1,
					text:     "| Header1 | Header2 |\n|---------|---------|\n| Value1  | Value2  |",
				},
			},
		},
		{
			name:      "empty text",
			text:      "",
			maxTokens: 10,
			want:      []processUnit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := loader.SourceFile{
				ID:         "test.txt",
				Path:       "test.txt",
				SourceType: loader.SourceTypeDocument,
				MaxTokens:  tt.maxTokens,
				Loader:     &mockLoader{text: tt.text},
			}

			got, err := getUnitsFromSource(context.Background(), source, "o200k_base")
			if err != nil {
				t.Fatalf("getUnitsFromSource() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Errorf("getUnitsFromSource() returned %d units, want %d", len(got), len(tt.want))
				return
			}

			for i, unit := range got {
				expected := tt.want[i]

				if unit.id == "" {
					t.Errorf("unit[%d].id is empty", i)
				}
				if unit.sourceID != expected.sourceID {
					t.Errorf("unit[%d].sourceID = %s, want %s", i, unit.sourceID, expected.sourceID)
				}

				if unit.start != expected.start {
					t.Errorf("unit[%d].start = %d, want %d", i, unit.start, expected.start)
				}
				if unit.end != expected.end {
					t.Errorf("unit[%d].end = %d, want %d", i, unit.end, expected.end)
				}

				gotText := strings.TrimSpace(unit.text)
				wantText := strings.TrimSpace(expected.text)
				if gotText != wantText {
					t.Errorf("unit[%d].text = %q, want %q", i, gotText, wantText)
				}
			}
		})
	}
}

func TestGetUnitsFromSource_CSV(t *testing.T) {
	text := "id,author,text\n1,alice,Great product\n2,bob,Terrible support"

	tests := []struct {
		name      string
		maxTokens int
		wantTexts []string
	}{
		{
			name:      "all rows in one chunk",
			maxTokens: 100,
			wantTexts: []string{
				"id,author,text\n1,alice,Great product\n2,bob,Terrible support",
			},
		},
		{
			name:      "header repeated per chunk",
			maxTokens: 1,
			wantTexts: []string{
				"id,author,text\n1,alice,Great product",
				"id,author,text\n2,bob,Terrible support",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := loader.SourceFile{
				ID:         "mentions.csv",
				Path:       "mentions.csv",
				SourceType: loader.SourceTypeCSV,
				MaxTokens:  tt.maxTokens,
				Loader:     &mockLoader{text: text},
			}

			got, err := getUnitsFromSource(context.Background(), source, "o200k_base")
			if err != nil {
				t.Fatalf("getUnitsFromSource() error = %v", err)
			}

			if len(got) != len(tt.wantTexts) {
				t.Fatalf("getUnitsFromSource() returned %d units, want %d", len(got), len(tt.wantTexts))
			}

			for i, unit := range got {
				if unit.text != tt.wantTexts[i] {
					t.Errorf("unit[%d].text = %q, want %q", i, unit.text, tt.wantTexts[i])
				}
				if unit.sourceID != "mentions.csv" {
					t.Errorf("unit[%d].sourceID = %s, want mentions.csv", i, unit.sourceID)
				}
				if unit.start != i || unit.end != i+1 {
					t.Errorf("unit[%d] range = [%d,%d), want [%d,%d)", i, unit.start, unit.end, i, i+1)
				}
			}
		})
	}
}

type mockLoader struct {
	text string
}

func (m *mockLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	return []byte(m.text), nil
}
