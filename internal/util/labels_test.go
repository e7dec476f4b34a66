package util

import (
	"reflect"
	"testing"
)

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "pricing", "pricing"},
		{"SurroundingSpace", "  customer support  ", "customer support"},
		{"BulletDash", "- battery life", "battery life"},
		{"BulletStar", "* battery life", "battery life"},
		{"NumberedItem", "2. onboarding", "onboarding"},
		{"DoubleQuoted", `"ease of use"`, "ease of use"},
		{"SingleQuoted", "'ease of use'", "ease of use"},
		{"BoldMarkdown", "**pricing**", "pricing"},
		{"ItalicMarkdown", "*pricing*", "pricing"},
		{"Backticks", "`api limits`", "api limits"},
		{"NestedWrapping", `"**pricing**"`, "pricing"},
		{"InnerWhitespaceRun", "customer   support\tteam", "customer support team"},
		{"Empty", "", ""},
		{"OnlyMarker", "- ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanLabel(tc.in)
			if got != tc.want {
				t.Fatalf("CleanLabel(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDedupeLabels(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "NoDuplicates",
			in:   []string{"pricing", "support"},
			want: []string{"pricing", "support"},
		},
		{
			name: "CaseInsensitiveDuplicate",
			in:   []string{"Pricing", "pricing", "PRICING"},
			want: []string{"Pricing"},
		},
		{
			name: "DuplicateAfterCleaning",
			in:   []string{"- pricing", "**pricing**"},
			want: []string{"pricing"},
		},
		{
			name: "DropsEmpties",
			in:   []string{"", "  ", "support"},
			want: []string{"support"},
		},
		{
			name: "PreservesOrder",
			in:   []string{"b", "a", "B", "c"},
			want: []string{"b", "a", "c"},
		},
		{
			name: "EmptyInput",
			in:   nil,
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DedupeLabels(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("DedupeLabels(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
