package minerva

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// listFixture mirrors the site's markup: one <tr> holds the View button,
// the next holds the data cells.
const listFixture = `<html><body>
<h1>View All Requests</h1>
<p>Select Document or Request</p>
<table>
<tr><td><input type="button" value="View " onclick="view(1)"></td></tr>
<tr>
  <td class="dddefault">G Dudek</td>
  <td class="dddefault">2024-01-05</td>
  <td class="dddefault">Montreal</td>
  <td class="dddefault">2024-01-10</td>
  <td class="dddefault">TR</td>
  <td class="dddefault" title="Area FOAPAL Queue">ER012345</td>
  <td class="dddefault">123.45</td>
</tr>
<tr><td><input type="button" value="View" onclick="view(2)"></td></tr>
<tr>
  <td class="dddefault">G Dudek</td>
  <td class="dddefault">2024-03-17</td>
  <td class="dddefault">Toronto</td>
  <td class="dddefault">2024-03-20</td>
  <td class="dddefault">TR</td>
  <td class="dddefault" title="Dept Queue">ER067890</td>
  <td class="dddefault">67.89</td>
</tr>
<tr><td><input type="button" value="View" onclick="view(3)"></td></tr>
<tr>
  <td class="dddefault">G Dudek</td>
  <td class="dddefault">2024-06-02</td>
</tr>
</table>
</body></html>`

func parseFixture(t *testing.T, content string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestActionControls(t *testing.T) {
	doc := parseFixture(t, listFixture)
	if got := len(ActionControls(doc)); got != 3 {
		t.Fatalf("ActionControls found %d controls, want 3", got)
	}
}

func TestActionControls_IgnoresOtherButtons(t *testing.T) {
	doc := parseFixture(t, `<html><body>
<input type="button" value="Submit">
<input type="button" value="View">
<input type="submit" value="View">
</body></html>`)
	if got := len(ActionControls(doc)); got != 1 {
		t.Errorf("ActionControls found %d controls, want 1", got)
	}
}

func TestExtractRowFields(t *testing.T) {
	doc := parseFixture(t, listFixture)

	rec := ExtractRowFields(doc, 0)
	want := RowRecord{
		RequestDate:  "2024-01-05",
		StartDate:    "2024-01-10",
		ReferenceNum: "ER012345",
		QueueTitle:   "Area FOAPAL Queue",
	}
	if rec != want {
		t.Errorf("row 0 = %+v, want %+v", rec, want)
	}

	rec = ExtractRowFields(doc, 1)
	want = RowRecord{
		RequestDate:  "2024-03-17",
		StartDate:    "2024-03-20",
		ReferenceNum: "ER067890",
		QueueTitle:   "Dept Queue",
	}
	if rec != want {
		t.Errorf("row 1 = %+v, want %+v", rec, want)
	}
}

func TestExtractRowFields_DegradesOnShortRow(t *testing.T) {
	doc := parseFixture(t, listFixture)

	// The last row only has two data cells; the remaining fields must
	// come back empty rather than failing the row.
	rec := ExtractRowFields(doc, 2)
	want := RowRecord{RequestDate: "2024-06-02"}
	if rec != want {
		t.Errorf("short row = %+v, want %+v", rec, want)
	}
}

func TestExtractRowFields_OutOfRange(t *testing.T) {
	doc := parseFixture(t, listFixture)
	if rec := ExtractRowFields(doc, 99); rec != (RowRecord{}) {
		t.Errorf("out-of-range row = %+v, want zero record", rec)
	}
	if rec := ExtractRowFields(doc, -1); rec != (RowRecord{}) {
		t.Errorf("negative row = %+v, want zero record", rec)
	}
}

func TestExtractRowFields_NoCells(t *testing.T) {
	doc := parseFixture(t, `<html><body>
<table><tr><td><input type="button" value="View"></td></tr></table>
</body></html>`)
	if rec := ExtractRowFields(doc, 0); rec != (RowRecord{}) {
		t.Errorf("cell-less row = %+v, want zero record", rec)
	}
}

func TestRowText(t *testing.T) {
	// Button and data in the same row: the visible text joins with pipes.
	doc := parseFixture(t, `<html><body><table>
<tr>
  <td><input type="button" value="View"></td>
  <td>2024-01-05</td>
  <td>ER012345</td>
</tr>
</table></body></html>`)
	if got, want := RowText(doc, 0), "2024-01-05 | ER012345"; got != want {
		t.Errorf("RowText = %q, want %q", got, want)
	}
}

func TestRowText_EmptyForButtonOnlyRow(t *testing.T) {
	doc := parseFixture(t, listFixture)
	if got := RowText(doc, 0); got != "" {
		t.Errorf("RowText for button-only row = %q, want empty", got)
	}
}
