package upload

import "testing"

// TestNormalize exercises the reference normalizer across the formats
// found in historical records.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Already bare ---
		{
			name:  "bare filename",
			input: "a.jpg",
			want:  "a.jpg",
		},
		{
			name:  "bare uuid filename",
			input: "3f8a2c1e-9d4b-4f6a-8c7e-1b2d3e4f5a6b.png",
			want:  "3f8a2c1e-9d4b-4f6a-8c7e-1b2d3e4f5a6b.png",
		},

		// --- Prefixed forms of the same file ---
		{
			name:  "absolute public path",
			input: "/uploads/a.jpg",
			want:  "a.jpg",
		},
		{
			name:  "disk-relative path",
			input: "public/uploads/a.jpg",
			want:  "a.jpg",
		},
		{
			name:  "uploads-relative path",
			input: "uploads/a.jpg",
			want:  "a.jpg",
		},
		{
			name:  "leading slash only",
			input: "/a.jpg",
			want:  "a.jpg",
		},
		{
			name:  "public prefix only",
			input: "public/a.jpg",
			want:  "a.jpg",
		},

		// --- Each prefix stripped at most once ---
		{
			name:  "repeated uploads prefix keeps inner copy",
			input: "uploads/uploads/a.jpg",
			want:  "uploads/a.jpg",
		},
		{
			name:  "filename that merely starts like a prefix",
			input: "uploadsfile.jpg",
			want:  "uploadsfile.jpg",
		},

		// --- Whitespace and empty ---
		{
			name:  "surrounding whitespace",
			input: "  /uploads/a.jpg  ",
			want:  "a.jpg",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent verifies that normalizing twice equals
// normalizing once, for every canonical form.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"a.jpg",
		"/uploads/a.jpg",
		"public/uploads/a.jpg",
		"uploads/a.jpg",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

// TestNormalizeEquivalence verifies that every stored format of the same
// file normalizes to the same identity key.
func TestNormalizeEquivalence(t *testing.T) {
	forms := []string{"b.jpg", "/uploads/b.jpg", "public/uploads/b.jpg", "uploads/b.jpg"}
	want := "b.jpg"
	for _, f := range forms {
		if got := Normalize(f); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", f, got, want)
		}
	}
}
