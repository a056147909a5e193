package image

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

var filenamePattern = regexp.MustCompile(`^[0-9]+\.(jpeg|png)$`)

func TestSynthesize_Shape(t *testing.T) {
	tests := []struct {
		name string
		mime string
		ext  string
	}{
		{name: "jpeg", mime: "image/jpeg", ext: "jpeg"},
		{name: "png", mime: "image/png", ext: "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Synthesize(5000, tt.mime)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !filenamePattern.MatchString(got) {
				t.Errorf("Filename %q does not match <hash>.<ext>", got)
			}
			if !strings.HasSuffix(got, "."+tt.ext) {
				t.Errorf("Expected extension %q, got %q", tt.ext, got)
			}
		})
	}
}

func TestSynthesize_UnsupportedMime(t *testing.T) {
	tests := []string{"image/gif", "image/webp", "application/pdf", "", "IMAGE/PNG"}

	for _, mime := range tests {
		t.Run("mime "+mime, func(t *testing.T) {
			_, err := Synthesize(100, mime)
			var unsupported *UnsupportedFormatError
			if !errors.As(err, &unsupported) {
				t.Fatalf("Expected UnsupportedFormatError for %q, got %v", mime, err)
			}
			if unsupported.Mime != mime {
				t.Errorf("Error should carry the offending mime, got %q", unsupported.Mime)
			}
		})
	}
}

func TestSynthesize_DistinctForIdenticalInput(t *testing.T) {
	// Naming is not content-addressed: identical size+mime must yield
	// pairwise distinct names across sequential calls.
	const n = 50
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		name, err := Synthesize(5000, "image/png")
		if err != nil {
			t.Fatalf("Unexpected error on iteration %d: %v", i, err)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("Duplicate filename %q after %d uploads", name, i)
		}
		seen[name] = struct{}{}
	}
}
