package minerva

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/porticus-lab/minerva-archive/internal/htmltext"
)

// RowRecord holds the fields read from one list row. Fields the page does
// not provide are empty strings.
type RowRecord struct {
	RequestDate  string
	StartDate    string
	ReferenceNum string
	QueueTitle   string
}

// labelParts returns the non-empty fields in label order.
func (r RowRecord) labelParts() []string {
	var parts []string
	for _, p := range []string{r.RequestDate, r.StartDate, r.ReferenceNum, r.QueueTitle} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ActionControls returns the list page's View buttons in document order.
// The match is deliberately loose (value "View", "View ", ...) since the
// markup is not under our control.
func ActionControls(doc *goquery.Document) []*html.Node {
	var controls []*html.Node
	doc.Find(`input[type="button"]`).Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		if strings.Contains(strings.Join(strings.Fields(value), " "), "View") {
			controls = append(controls, s.Nodes[0])
		}
	})
	return controls
}

// ExtractRowFields reads the data cells that follow the row-th action
// control. The site renders the button in one <tr> and the data in the
// next, as td.dddefault cells in a fixed column order:
//
//	0 name, 1 request date, 2 location, 3 start date, 4 code,
//	5 reference number (title attribute holds the approval queue), 6 amount
//
// Rows with fewer cells degrade field by field to empty strings; no
// structural validation is performed and no error is ever returned.
func ExtractRowFields(doc *goquery.Document, row int) RowRecord {
	controls := ActionControls(doc)
	if row < 0 || row >= len(controls) {
		return RowRecord{}
	}
	cells := followingDataCells(controls[row], 7)

	var rec RowRecord
	if len(cells) > 1 {
		rec.RequestDate = htmltext.Collapsed(cells[1])
	}
	if len(cells) > 3 {
		rec.StartDate = htmltext.Collapsed(cells[3])
	}
	if len(cells) > 5 {
		rec.ReferenceNum = htmltext.Collapsed(cells[5])
		rec.QueueTitle = strings.TrimSpace(htmltext.Attr(cells[5], "title"))
	}
	return rec
}

// followingDataCells collects up to max td.dddefault cells after from, in
// document order.
func followingDataCells(from *html.Node, max int) []*html.Node {
	var cells []*html.Node
	for n := htmltext.Next(from); n != nil && len(cells) < max; n = htmltext.Next(n) {
		if htmltext.IsElement(n, "td") && htmltext.HasClass(n, "dddefault") {
			cells = append(cells, n)
		}
	}
	return cells
}

// RowText returns the visible text of the row-th control's enclosing table
// row, cells joined with " | ". Used as a labeling fallback when the fixed
// columns yield nothing.
func RowText(doc *goquery.Document, row int) string {
	controls := ActionControls(doc)
	if row < 0 || row >= len(controls) {
		return ""
	}
	tr := htmltext.Ancestor(controls[row], "tr")
	if tr == nil {
		return ""
	}
	var parts []string
	for n := tr.FirstChild; n != nil; n = n.NextSibling {
		if !htmltext.IsElement(n, "td") && !htmltext.IsElement(n, "th") {
			continue
		}
		if text := htmltext.Collapsed(n); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " | ")
}
