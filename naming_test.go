package minerva

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-05", "2024-01-05"},
		{"Travel: Montreal / QC", "Travel_Montreal_QC"},
		{"  spaced   out  ", "spaced_out"},
		{"", "unnamed"},
		{"   ", "unnamed"},
		{"already_safe-label", "already_safe-label"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	inputs := []string{
		"Travel: Montreal / QC",
		"2024-01-05_ER012345",
		"",
		"x | y | z",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("SanitizeFilename not idempotent on %q: %q != %q", in, once, twice)
		}
	}
}

func TestSanitizeFilename_OutputShape(t *testing.T) {
	safe := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	inputs := []string{
		"Travel: Montreal / QC (2024)",
		"a&b*c",
		"Réimbursement für travel",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}
	for _, in := range inputs {
		got := SanitizeFilename(in)
		if !safe.MatchString(got) {
			t.Errorf("SanitizeFilename(%q) = %q, contains unsafe characters", in, got)
		}
		if len(got) > 80 {
			t.Errorf("SanitizeFilename(%q) produced %d characters, want <= 80", in, len(got))
		}
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Travel 2024-01-05", "2024"},
		{"05/01/2023", "2023"},
		{"no year here", ""},
		{"", ""},
		{"1999 and 2001", "1999"},
	}
	for _, tt := range tests {
		if got := ExtractYear(tt.in); got != tt.want {
			t.Errorf("ExtractYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestYearRange(t *testing.T) {
	tests := []struct {
		y1, y2 string
		want   string
	}{
		{"2023", "2023", "2023"},
		{"2023", "2024", "2023-2024"},
		{"2023", "", "2023"},
		{"", "2024", "2024"},
		{"", "", "unknown-years"},
	}
	for _, tt := range tests {
		if got := YearRange(tt.y1, tt.y2); got != tt.want {
			t.Errorf("YearRange(%q, %q) = %q, want %q", tt.y1, tt.y2, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	got := ArtifactPath("pdf_output", "2024", 0, "2024-01-05_ER012345")
	want := filepath.Join("pdf_output", "2024_001_2024-01-05_ER012345.pdf")
	if got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}

	got = ArtifactPath("out", "2023-2024", 11, "label")
	want = filepath.Join("out", "2023-2024_012_label.pdf")
	if got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
}

func TestIndexPath_Uniquified(t *testing.T) {
	dir := t.TempDir()

	first := IndexPath(dir, "2024")
	if want := filepath.Join(dir, "2024_index.pdf"); first != want {
		t.Fatalf("IndexPath = %q, want %q", first, want)
	}

	if err := os.WriteFile(first, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	second := IndexPath(dir, "2024")
	if want := filepath.Join(dir, "2024_index-1.pdf"); second != want {
		t.Errorf("IndexPath with existing file = %q, want %q", second, want)
	}
}
