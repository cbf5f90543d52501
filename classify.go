package minerva

import "strings"

// PageState is the classification of the currently rendered page. It is
// inferred from content on every inspection; no state is trusted across
// navigations because the external page can change underneath us.
type PageState int

const (
	// PageUnknown is content that looks like neither the list nor a
	// recognizable document.
	PageUnknown PageState = iota
	// PageList is the "View All Requests" list page.
	PageList
	// PageDetail is any other rendered document, normally a request's
	// detail view.
	PageDetail
)

// String implements fmt.Stringer.
func (s PageState) String() string {
	switch s {
	case PageList:
		return "list"
	case PageDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// Marker phrases identifying the list page. Both must be present.
const (
	markerListTitle  = "View All Requests"
	markerListPrompt = "Select Document or Request"
)

// Classify inspects rendered page content and reports whether it is the
// list page, a detail view, or something unrecognizable. Recovery treats
// PageDetail and PageUnknown the same way; the distinction only aids
// diagnostics.
func Classify(content string) PageState {
	if strings.Contains(content, markerListTitle) && strings.Contains(content, markerListPrompt) {
		return PageList
	}
	if strings.Contains(content, "<html") || strings.Contains(content, "<body") {
		return PageDetail
	}
	return PageUnknown
}
