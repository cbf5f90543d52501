package detail

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailFixture = `<html><body>
<h2>Request for Expense Reimbursement</h2>
<h3>Other</h3>
<table><tr><td>Unrelated layout table</td></tr></table>
<p>Payment Information</p>
<table>
<tr><th>Payment Method</th><th>Address</th></tr>
<tr><td>Direct Deposit</td><td>123 Main St</td></tr>
</table>
<table>
<caption>Summary of Expenses</caption>
<tr><th>Item #</th><th>Trans. Date</th><th>Description</th><th>Trans. Amount $</th><th>Non-McGill Expense</th><th>Allowable Expenses</th><th>Curr.</th><th>Exch. Rate</th><th>Expenses CAD $</th></tr>
<tr><td>1</td><td>2024-01-05</td><td>Taxi airport</td><td>42.00</td><td></td><td>42.00</td><td>CAD</td><td>1.0</td><td>42.00</td></tr>
<tr><td>2</td><td>2024-01-06</td><td>Hotel</td><td>210.50</td><td></td><td>210.50</td><td>CAD</td><td>1.0</td><td>210.50</td></tr>
<tr><td>Total</td><td></td><td></td><td>252.50</td><td></td><td>252.50</td><td></td><td></td><td>252.50</td></tr>
</table>
</body></html>`

func TestParse_SelectsWantedSections(t *testing.T) {
	ex, err := Parse(detailFixture)
	require.NoError(t, err)

	require.Len(t, ex.Sections, 2)
	assert.Equal(t, "Payment Information", ex.Sections[0].Name)
	assert.Equal(t, "Summary of Expenses", ex.Sections[1].Name)

	assert.Contains(t, ex.Text, "=== Payment Information ===")
	assert.Contains(t, ex.Text, "=== Summary of Expenses ===")
	assert.NotContains(t, ex.Text, "Unrelated layout table")
}

func TestParse_SummaryItems(t *testing.T) {
	ex, err := Parse(detailFixture)
	require.NoError(t, err)

	require.Len(t, ex.Items, 3)

	first := ex.Items[0]
	assert.Equal(t, "item", first.RowType)
	assert.Equal(t, "1", first.ItemNo)
	assert.Equal(t, "2024-01-05", first.TransDate)
	assert.Equal(t, "Taxi airport", first.Description)
	assert.Equal(t, "42.00", first.TransAmount)
	assert.Equal(t, "CAD", first.Currency)
	assert.Equal(t, "1.0", first.ExchRate)
	assert.Equal(t, "42.00", first.CADAmount)
	assert.Equal(t, "Summary of Expenses", first.Label)

	total := ex.Items[2]
	assert.Equal(t, "total", total.RowType)
	assert.Equal(t, "252.50", total.TransAmount)

	// Row order increases and the header row was skipped.
	assert.Less(t, ex.Items[0].RowOrder, ex.Items[1].RowOrder)
	assert.Less(t, ex.Items[1].RowOrder, ex.Items[2].RowOrder)
}

func TestParse_SummaryItemsPositionalFallback(t *testing.T) {
	// No header cells at all: columns are mapped by position.
	const headerless = `<html><body>
<h2>Request for Expense Reimbursement</h2>
<table>
<caption>Summary of Expenses</caption>
<tr><td>1</td><td>2024-01-05</td><td>Taxi</td><td>42.00</td></tr>
</table>
</body></html>`
	ex, err := Parse(headerless)
	require.NoError(t, err)

	require.Len(t, ex.Items, 1)
	it := ex.Items[0]
	assert.Equal(t, "1", it.ItemNo)
	assert.Equal(t, "2024-01-05", it.TransDate)
	assert.Equal(t, "Taxi", it.Description)
	assert.Equal(t, "42.00", it.TransAmount)
	assert.Empty(t, it.Currency)
}

func TestParse_PrettyRendering(t *testing.T) {
	ex, err := Parse(detailFixture)
	require.NoError(t, err)

	// The payment table has a header row, so an underline follows it.
	lines := strings.Split(ex.Text, "\n")
	var headerIdx int
	for i, l := range lines {
		if strings.HasPrefix(l, "Payment Method") {
			headerIdx = i
			break
		}
	}
	require.NotZero(t, headerIdx, "header row not found in rendering")
	assert.Regexp(t, `^-+ \| -+$`, lines[headerIdx+1])

	// Columns are padded to a shared width.
	assert.Contains(t, ex.Text, "Direct Deposit | 123 Main St")
}

func TestParse_FallbackDumpsTables(t *testing.T) {
	const unmatched = `<html><body>
<table><tr><td>Nothing recognizable</td></tr></table>
</body></html>`
	ex, err := Parse(unmatched)
	require.NoError(t, err)

	require.Len(t, ex.Sections, 1)
	assert.Contains(t, ex.Text, "Nothing recognizable")
}

func TestParse_NoTables(t *testing.T) {
	ex, err := Parse(`<html><body><p>empty</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "(no tables found)\n", ex.Text)
	require.Len(t, ex.Sections, 1)
	assert.Equal(t, "(no tables found)", ex.Sections[0].Name)
}

func TestSave_WritesTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "row.txt")
	ex, err := Save(detailFixture, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ex.Text, string(data))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "trans. amount $", normalizeHeader("  Trans.   Amount $  "))
	assert.Equal(t, "item #", normalizeHeader("Item #"))
}
