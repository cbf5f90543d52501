// Package detail parses a request's detail page into readable text
// sections and structured expense line items.
//
// The page is a nest of layout tables; the ones worth keeping are found by
// matching their inferred labels against a fixed section list. Expense
// line items are read by matching normalized header names, falling back to
// positional columns only when the headers are missing.
package detail

import (
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/porticus-lab/minerva-archive/internal/htmltext"
)

// requestHeading anchors the search for content tables; everything before
// it is site chrome.
const requestHeading = "Request for Expense Reimbursement"

// wantedSections are the table labels (normalized) worth extracting.
var wantedSections = []string{
	"paid to and requested by responsible mcgill person",
	"payment information",
	"summary of expenses",
	"summary of expenses item",
	"foapal distribution",
	"approval information",
}

// Section is one labeled table rendered as padded text.
type Section struct {
	Name    string `json:"section_name" yaml:"section_name"`
	Content string `json:"content" yaml:"content"`
}

// Item is one row of a "Summary of Expenses" table. Amounts stay as the
// page prints them; no numeric parsing is attempted.
type Item struct {
	RowOrder         int    `json:"row_order" yaml:"row_order"`
	RowType          string `json:"row_type" yaml:"row_type"` // "item" or "total"
	ItemNo           string `json:"item_no" yaml:"item_no"`
	TransDate        string `json:"trans_date" yaml:"trans_date"`
	Description      string `json:"description" yaml:"description"`
	TransAmount      string `json:"trans_amount" yaml:"trans_amount"`
	NonMcGillExpense string `json:"non_mc_expense" yaml:"non_mc_expense"`
	AllowableExpense string `json:"allowable_expense" yaml:"allowable_expense"`
	Currency         string `json:"currency" yaml:"currency"`
	ExchRate         string `json:"exch_rate" yaml:"exch_rate"`
	CADAmount        string `json:"cad_amount" yaml:"cad_amount"`
	Label            string `json:"label" yaml:"label"`
}

// Extract is the parsed form of one detail page.
type Extract struct {
	Sections []Section
	Items    []Item
	// Text is the full readable rendering, one section after another.
	Text string
}

// Parse extracts sections and expense items from detail page HTML.
func Parse(content string) (*Extract, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	tables := tablesAfterHeading(doc, requestHeading)

	var ex Extract
	var lines []string
	appendTable := func(tbl *goquery.Selection, label string) {
		if label == "" {
			label = "Table"
		}
		pretty := prettyLines(tbl)
		if len(pretty) == 0 {
			pretty = []string{"(table empty)"}
		}
		lines = append(lines, "=== "+label+" ===")
		lines = append(lines, pretty...)
		lines = append(lines, "")
		ex.Sections = append(ex.Sections, Section{Name: label, Content: strings.Join(pretty, "\n")})
	}

	tables.Each(func(_ int, tbl *goquery.Selection) {
		label := strings.TrimSpace(tableLabel(tbl))
		if !wanted(tbl, label) {
			return
		}
		appendTable(tbl, label)
		if strings.Contains(strings.ToLower(label), "summary of expenses") {
			ex.Items = append(ex.Items, summaryItems(tbl, label)...)
		}
	})

	if len(lines) == 0 {
		// Nothing matched; dump the first few tables so the operator can
		// see what the page actually contained.
		n := tables.Length()
		if n > 5 {
			n = 5
		}
		tables.Slice(0, n).Each(func(_ int, tbl *goquery.Selection) {
			appendTable(tbl, strings.TrimSpace(tableLabel(tbl)))
		})
	}
	if len(lines) == 0 {
		lines = []string{"(no tables found)"}
		ex.Sections = append(ex.Sections, Section{Name: "(no tables found)"})
	}

	ex.Text = strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	return &ex, nil
}

// Save parses content and writes the readable text rendering to path.
func Save(content, path string) (*Extract, error) {
	ex, err := Parse(content)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(ex.Text), 0o644); err != nil {
		return nil, err
	}
	return ex, nil
}

// wanted reports whether a table's label or body matches any section we
// care about.
func wanted(tbl *goquery.Selection, label string) bool {
	labelLower := strings.ToLower(label)
	textLower := strings.ToLower(collapse(tbl.Text()))
	for _, key := range wantedSections {
		if strings.Contains(labelLower, key) || strings.Contains(textLower, key) {
			return true
		}
	}
	return false
}

// tablesAfterHeading returns the tables under the element whose text
// contains heading, or every table in the document when the heading is
// absent.
func tablesAfterHeading(doc *goquery.Document, heading string) *goquery.Selection {
	lower := strings.ToLower(heading)
	var scope *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for n := s.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
			if n.Type == html.TextNode && strings.Contains(strings.ToLower(n.Data), lower) {
				scope = s
				return false
			}
		}
		return true
	})
	if scope != nil {
		if tables := scope.Find("table"); tables.Length() > 0 {
			return tables
		}
	}
	return doc.Find("table")
}

// tableLabel infers a human-friendly label for a table from nearby text:
// caption, then preceding sibling text, then the nearest previous heading,
// then the table's own first row.
func tableLabel(tbl *goquery.Selection) string {
	if caption := tbl.Find("caption").First(); caption.Length() > 0 {
		if text := collapse(caption.Text()); text != "" {
			return text
		}
	}

	node := tbl.Nodes[0]
	steps := 0
	for prev := node.PrevSibling; prev != nil && steps < 5; prev = prev.PrevSibling {
		if text := collapse(htmltext.Text(prev)); text != "" {
			return text
		}
		steps++
	}

	headingTags := map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "strong": true, "b": true}
	for n := htmltext.Prev(node); n != nil; n = htmltext.Prev(n) {
		if n.Type == html.ElementNode && headingTags[n.Data] {
			if text := collapse(htmltext.Text(n)); text != "" {
				return text
			}
		}
	}

	if tr := tbl.Find("tr").First(); tr.Length() > 0 {
		if text := collapse(tr.Text()); text != "" {
			return text
		}
	}
	return "table"
}

// tableRows returns the cell texts of every row. Rows without cells
// become single empty-string rows so spacer rows survive into the pretty
// rendering.
func tableRows(tbl *goquery.Selection) [][]string {
	var rows [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, c *goquery.Selection) {
			cells = append(cells, collapse(c.Text()))
		})
		if len(cells) == 0 {
			cells = []string{""}
		}
		rows = append(rows, cells)
	})
	return rows
}

// prettyLines renders a table as padded columns joined by " | ", with an
// underline after the header row when the table has one.
func prettyLines(tbl *goquery.Selection) []string {
	rows := tableRows(tbl)
	if len(rows) == 0 {
		return nil
	}

	maxCols := 0
	for _, r := range rows {
		if len(r) > maxCols {
			maxCols = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < maxCols {
			r = append(r, "")
		}
		rows[i] = r
	}

	widths := make([]int, maxCols)
	for _, r := range rows {
		for c, cell := range r {
			if len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}

	hasHeader := tbl.Find("tr").First().Find("th").Length() > 0

	var lines []string
	for i, r := range rows {
		padded := make([]string, maxCols)
		for c, cell := range r {
			padded[c] = cell + strings.Repeat(" ", widths[c]-len(cell))
		}
		lines = append(lines, strings.TrimRight(strings.Join(padded, " | "), " "))
		if hasHeader && i == 0 {
			underline := make([]string, maxCols)
			for c := range underline {
				underline[c] = strings.Repeat("-", widths[c])
			}
			lines = append(lines, strings.Join(underline, " | "))
		}
	}
	return lines
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeHeader lowers and whitespace-collapses header text for
// matching.
func normalizeHeader(text string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " "))
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// summaryKeys maps item fields to the header spellings seen on the site.
// Order doubles as the positional fallback when headers are absent.
var summaryKeys = []struct {
	field   string
	aliases []string
}{
	{"item_no", []string{"item #", "item"}},
	{"trans_date", []string{"trans. date", "trans date", "transaction date"}},
	{"description", []string{"description"}},
	{"trans_amount", []string{"trans. amount $", "trans amount $", "trans. amount"}},
	{"non_mc_expense", []string{"non-mcgill expense", "non mcgill expense"}},
	{"allowable_expense", []string{"allowable expenses", "allowable expense"}},
	{"currency", []string{"curr.", "currency"}},
	{"exch_rate", []string{"exch. rate", "exchange rate"}},
	{"cad_amount", []string{"expenses cad $", "cad $", "cad"}},
}

// summaryItems parses a "Summary of Expenses" table into line items,
// classifying total/grand-total/due-to-claimant rows separately.
func summaryItems(tbl *goquery.Selection, label string) []Item {
	var headers []string
	tbl.Find("th").Each(func(_ int, h *goquery.Selection) {
		headers = append(headers, normalizeHeader(h.Text()))
	})
	headerSet := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, ok := headerSet[h]; !ok {
			headerSet[h] = i
		}
	}

	colIndex := make(map[string]int)
	positional := make(map[string]int)
	for pos, key := range summaryKeys {
		positional[key.field] = pos
		for _, alias := range key.aliases {
			if i, ok := headerSet[alias]; ok {
				colIndex[key.field] = i
				break
			}
		}
	}

	get := func(row []string, field string) string {
		if i, ok := colIndex[field]; ok && i < len(row) {
			return row[i]
		}
		if i, ok := positional[field]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	var items []Item
	for i, row := range tableRows(tbl) {
		if len(headers) > 0 && allInHeaders(row, headerSet) {
			continue // the header row itself
		}
		if allBlank(row) {
			continue
		}
		first := normalizeHeader(row[0])
		rowType := "item"
		if strings.HasPrefix(first, "total") ||
			strings.Contains(first, "grand total") ||
			strings.Contains(first, "due to claimant") {
			rowType = "total"
		}
		items = append(items, Item{
			RowOrder:         i,
			RowType:          rowType,
			ItemNo:           get(row, "item_no"),
			TransDate:        get(row, "trans_date"),
			Description:      get(row, "description"),
			TransAmount:      get(row, "trans_amount"),
			NonMcGillExpense: get(row, "non_mc_expense"),
			AllowableExpense: get(row, "allowable_expense"),
			Currency:         get(row, "currency"),
			ExchRate:         get(row, "exch_rate"),
			CADAmount:        get(row, "cad_amount"),
			Label:            label,
		})
	}
	return items
}

func allInHeaders(row []string, headerSet map[string]int) bool {
	for _, cell := range row {
		if _, ok := headerSet[normalizeHeader(cell)]; !ok {
			return false
		}
	}
	return true
}

func allBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
