package slug

import "testing"

// TestGenerate exercises the slug generator with category names typical
// for the printing trade plus edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple two words",
			input: "Job Offers",
			want:  "job-offers",
		},
		{
			name:  "ampersand dropped",
			input: "Offset Printing & Prepress",
			want:  "offset-printing-prepress",
		},
		{
			name:  "already a slug",
			input: "used-machinery",
			want:  "used-machinery",
		},
		{
			name:  "punctuation",
			input: "Paper, Ink & Consumables!",
			want:  "paper-ink-consumables",
		},
		{
			name:  "surrounding whitespace",
			input: "  Finishing Services  ",
			want:  "finishing-services",
		},
		{
			name:  "multiple spaces collapse",
			input: "Large   Format",
			want:  "large-format",
		},
		{
			name:  "digits kept",
			input: "B2 Presses",
			want:  "b2-presses",
		},
		{
			name:  "leading and trailing symbols",
			input: "--- Services ---",
			want:  "services",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "symbols only",
			input: "&&&",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
