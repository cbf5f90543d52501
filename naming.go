package minerva

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxLabelLen keeps filenames to a reasonable length.
const maxLabelLen = 80

var (
	nonWordRun = regexp.MustCompile(`[^\w\-]+`)
	yearRun    = regexp.MustCompile(`\d{4}`)
)

// SanitizeFilename reduces text to a filesystem-safe label: runs of
// anything other than letters, digits, underscore, or dash collapse to a
// single underscore, and the result is truncated to 80 characters. Empty
// or whitespace-only input yields "unnamed". The function is idempotent.
func SanitizeFilename(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "unnamed"
	}
	text = nonWordRun.ReplaceAllString(text, "_")
	if len(text) > maxLabelLen {
		text = text[:maxLabelLen]
	}
	return text
}

// ExtractYear returns the first 4-digit run in the date text, or "" if
// there is none.
func ExtractYear(dateText string) string {
	return yearRun.FindString(dateText)
}

// YearRange forms the output-naming prefix from the years of the first
// and last rows: "Y" when both agree (or only one is present), "Y1-Y2"
// when they differ, and "unknown-years" when neither is known.
func YearRange(y1, y2 string) string {
	switch {
	case y1 != "" && y2 != "":
		if y1 == y2 {
			return y1
		}
		return y1 + "-" + y2
	case y1 != "":
		return y1
	case y2 != "":
		return y2
	default:
		return "unknown-years"
	}
}

// ArtifactPath builds the output path for row idx (0-based): the 1-based
// index is zero padded to three digits so filenames stay unique even when
// labels collide.
func ArtifactPath(dir, years string, idx int, label string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%03d_%s.pdf", years, idx+1, label))
}

// IndexPath returns a path for the list-page index artifact, appending a
// counter if a file from a previous run is already there.
func IndexPath(dir, years string) string {
	base := years + "_index"
	path := filepath.Join(dir, base+".pdf")
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); err != nil {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.pdf", base, counter))
	}
}
