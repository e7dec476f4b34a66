package csv

import "testing"

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain rows",
			input: "author,text\nalice,great support\n",
			want:  "author,text\nalice,great support\n",
		},
		{
			name:  "drops empty rows",
			input: "author,text\n\n , \nbob,slow onboarding\n",
			want:  "author,text\nbob,slow onboarding\n",
		},
		{
			name:  "quotes fields with commas",
			input: "author,text\ncarol,\"pricing, again\"\n",
			want:  "author,text\ncarol,\"pricing, again\"\n",
		},
		{
			name:  "escapes embedded quotes",
			input: "author,text\ndan,\"they said \"\"never again\"\"\"\n",
			want:  "author,text\ndan,\"they said \"\"never again\"\"\"\n",
		},
		{
			name:  "appends trailing newline",
			input: "author,text\neve,fine",
			want:  "author,text\neve,fine\n",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only blank rows",
			input:   "\n\n , ,\n",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCSV([]byte(tc.input))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseCSV() expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("ParseCSV() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestQuoteField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "comma", input: "a,b", want: "\"a,b\""},
		{name: "quote", input: "say \"hi\"", want: "\"say \"\"hi\"\"\""},
		{name: "newline", input: "a\nb", want: "\"a\nb\""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := quoteField(tc.input); got != tc.want {
				t.Errorf("quoteField(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
