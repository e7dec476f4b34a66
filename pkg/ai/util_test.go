package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type sentiment struct {
		Label string `json:"label"`
		Score int    `json:"score,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  sentiment
	}{
		{
			name:  "valid json object",
			input: `{"label":"NEGATIVE"}`,
			want:  sentiment{Label: "NEGATIVE"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{label: 'NEGATIVE'}`,
			want:  sentiment{Label: "NEGATIVE"},
		},
		{
			name:  "trailing comma",
			input: `{"label":"NEGATIVE",}`,
			want:  sentiment{Label: "NEGATIVE"},
		},
		{
			name:  "missing endbracket",
			input: `{"label":"NEGATIVE`,
			want:  sentiment{Label: "NEGATIVE"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{label: 'NEGATIVE'}"`,
			want:  sentiment{Label: "NEGATIVE"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"label\": \"NEGATIVE\"\n}\n",
			want:  sentiment{Label: "NEGATIVE"},
		},
		{
			name:  "duplicate leading brace no newlines",
			input: `{ { "label": "NEGATIVE" }`,
			want:  sentiment{Label: "NEGATIVE"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got sentiment
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Label != tc.want.Label || got.Score != tc.want.Score {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type keyword struct {
		Keyword string `json:"keyword"`
	}

	input := `[{keyword:'pricing'},{keyword:'support',}]`
	var got []keyword
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Keyword != "pricing" || got[1].Keyword != "support" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two keywords pricing,support", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type sentiment struct {
		Label string `json:"label"`
	}

	var got sentiment
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestUnmarshalFlexible_NestedAnalysis(t *testing.T) {
	type analysis struct {
		BrandProducts []string `json:"brand_products"`
		Sentiment     string   `json:"sentiment"`
		Keywords      []string `json:"keywords"`
	}

	tests := []struct {
		name  string
		input string
		want  analysis
	}{
		{
			name:  "stringified payload",
			input: `"{ \"brand_products\": [\"Widget\"], \"sentiment\": \"MIXED\", \"keywords\": [ \"pricing\", \"support\" ] }"`,
			want:  analysis{BrandProducts: []string{"Widget"}, Sentiment: "MIXED", Keywords: []string{"pricing", "support"}},
		},
		{
			name:  "stringified payload with newlines",
			input: `"{\n  \"brand_products\": [\"Widget\"],\n  \"sentiment\": \"MIXED\",\n  \"keywords\": [\"pricing\", \"support\", \"onboarding (trial, setup)\"]\n  }\n"`,
			want:  analysis{BrandProducts: []string{"Widget"}, Sentiment: "MIXED", Keywords: []string{"pricing", "support", "onboarding (trial, setup)"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got analysis
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Sentiment != tc.want.Sentiment {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
			if len(got.Keywords) != len(tc.want.Keywords) {
				t.Fatalf("UnmarshalFlexible() keywords length got = %d, want %d", len(got.Keywords), len(tc.want.Keywords))
			}
			for i := range got.Keywords {
				if got.Keywords[i] != tc.want.Keywords[i] {
					t.Fatalf("UnmarshalFlexible() keywords[%d] = %q, want %q", i, got.Keywords[i], tc.want.Keywords[i])
				}
			}
		})
	}
}
