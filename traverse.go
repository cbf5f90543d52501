package minerva

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// RowArtifact describes one captured row, handed to a [RowSink] right
// after the detail page's PDF has been written.
type RowArtifact struct {
	// Years is the run's output-naming prefix.
	Years string
	// Index is the row's 1-based position in the list.
	Index int
	// Record holds the fields read from the list row.
	Record RowRecord
	// PDFPath is the artifact the detail page was captured to.
	PDFPath string
	// DetailHTML is the detail page's source at capture time.
	DetailHTML string
}

// RowSink receives each captured row for further processing, such as text
// extraction and database persistence. A sink error ends the run.
type RowSink interface {
	SaveRow(ctx context.Context, a RowArtifact) error
}

// Traverser walks the list page row by row: click into the detail view,
// capture it, navigate back, verify the list page was recovered, continue.
// One Traverser drives one browser session; nothing runs concurrently.
type Traverser struct {
	drv Driver

	// Log receives progress and diagnostics. Never nil after NewTraverser.
	Log *Logger
	// OutputDir is where PDF artifacts are written. Created if absent.
	OutputDir string
	// WaitTimeout bounds each wait for address change or page readiness.
	// These timeouts are soft: the loop proceeds optimistically.
	WaitTimeout time.Duration
	// PollInterval is the delay between readiness probes.
	PollInterval time.Duration
	// RecoveryAttempts bounds back-navigations when re-establishing the
	// list page. Exceeding it is fatal: the tool has lost its place and
	// cannot continue without risking duplicate or missing captures.
	RecoveryAttempts int
	// Sink, when non-nil, receives every captured row.
	Sink RowSink
	// Input is where the operator's go-ahead keypress is read from. When
	// nil the start gate is skipped.
	Input io.Reader
	// Prompt is where the start gate prompt is written. Defaults to stdout.
	Prompt io.Writer
}

// NewTraverser returns a Traverser with defaults matching the Minerva
// site's behavior.
func NewTraverser(d Driver) *Traverser {
	return &Traverser{
		drv:              d,
		Log:              NewLogger(os.Stdout),
		OutputDir:        "pdf_output",
		WaitTimeout:      15 * time.Second,
		PollInterval:     250 * time.Millisecond,
		RecoveryAttempts: 3,
	}
}

// Run executes the whole traversal: operator gate, list-page check, index
// capture, then one click/capture/back cycle per row. Artifacts written
// before an abort remain valid. The caller owns session cleanup.
func (t *Traverser) Run(ctx context.Context) error {
	if err := os.MkdirAll(t.OutputDir, 0o755); err != nil {
		return fmt.Errorf("minerva: creating output directory: %w", err)
	}

	if t.Input != nil {
		t.awaitOperator()
	}

	if url, err := t.drv.Location(ctx); err == nil {
		t.Log.Debugf("Current URL: %s", url)
	}

	if err := t.ensureListPage(ctx); err != nil {
		t.snapshotError(ctx, "Could not get to %q list page after %d back() attempts.",
			markerListTitle, t.RecoveryAttempts)
		return err
	}

	num, err := t.drv.CountRows(ctx)
	if err != nil {
		return err
	}
	t.Log.Infof("Found %d View buttons.", num)
	if num == 0 {
		return nil
	}

	doc, err := t.currentDocument(ctx)
	if err != nil {
		return err
	}

	// Year range from the first and last rows' start dates.
	first := ExtractRowFields(doc, 0)
	last := ExtractRowFields(doc, num-1)
	years := YearRange(ExtractYear(first.StartDate), ExtractYear(last.StartDate))
	t.Log.Infof("Year range determined as: %s", years)

	indexPath := IndexPath(t.OutputDir, years)
	t.Log.Infof("Saving index page -> %s", indexPath)
	if err := t.capture(ctx, indexPath); err != nil {
		return err
	}

	for idx := 0; idx < num; idx++ {
		// Re-enumerate every iteration: navigation mutates the live page
		// and positions from the previous pass are stale.
		count, err := t.drv.CountRows(ctx)
		if err != nil {
			return err
		}
		if idx >= count {
			t.Log.Warnf("After navigation, only %d View buttons remain; skipping index %d.",
				count, idx+1)
			break
		}

		doc, err := t.currentDocument(ctx)
		if err != nil {
			return err
		}
		rec := ExtractRowFields(doc, idx)
		t.Log.Infof("Row %d: Request date='%s' | Start date='%s' | Reference #='%s' | Queue='%s'",
			idx+1, orNA(rec.RequestDate), orNA(rec.StartDate),
			orNA(rec.ReferenceNum), orNA(rec.QueueTitle))

		outPath := ArtifactPath(t.OutputDir, years, idx, t.rowLabel(doc, rec, idx))

		oldURL, _ := t.drv.Location(ctx)
		t.Log.Debugf("Clicking View for row %d...", idx+1)
		if err := t.drv.ClickRow(ctx, idx); err != nil {
			return err
		}
		t.waitForURLChange(ctx, oldURL)
		t.waitForReady(ctx)

		t.Log.Infof("Saving PDF for row %d -> %s", idx+1, outPath)
		if err := t.capture(ctx, outPath); err != nil {
			return err
		}

		if t.Sink != nil {
			detailHTML, err := t.drv.PageSource(ctx)
			if err != nil {
				return err
			}
			a := RowArtifact{
				Years:      years,
				Index:      idx + 1,
				Record:     rec,
				PDFPath:    outPath,
				DetailHTML: detailHTML,
			}
			if err := t.Sink.SaveRow(ctx, a); err != nil {
				return fmt.Errorf("minerva: saving row %d: %w", idx+1, err)
			}
		}

		t.Log.Debugf("Going back to list after row %d", idx+1)
		if err := t.drv.Back(ctx); err != nil {
			return err
		}
		if err := t.ensureListPage(ctx); err != nil {
			t.snapshotError(ctx, "After back(), could not return to list page; stopping.")
			break
		}
	}

	t.Log.Infof("Finished processing all View buttons.")
	return nil
}

// awaitOperator blocks until the operator confirms the browser is
// positioned on the list page. The blinking cursor is purely cosmetic.
func (t *Traverser) awaitOperator() {
	w := t.promptWriter()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Make sure the current tab is on the '%s' page with the View buttons.\n", markerListTitle)
	fmt.Fprintln(w, "Log in / navigate if needed, then press Enter here to start processing...")

	stop := StartBlinkingPrompt(w, "> ", 500*time.Millisecond)
	// EOF releases the gate too; there is no other input to wait for.
	_, _ = bufio.NewReader(t.Input).ReadString('\n')
	stop()
	fmt.Fprintln(w)
}

func (t *Traverser) promptWriter() io.Writer {
	if t.Prompt != nil {
		return t.Prompt
	}
	return os.Stdout
}

// ensureListPage verifies the browser is showing the list page, issuing up
// to RecoveryAttempts back-navigations to climb out of a detail view.
// Classification always re-reads the rendered content.
func (t *Traverser) ensureListPage(ctx context.Context) error {
	for attempt := 0; attempt < t.RecoveryAttempts; attempt++ {
		src, err := t.drv.PageSource(ctx)
		if err != nil {
			return err
		}
		state := Classify(src)
		if state == PageList {
			return nil
		}
		t.Log.Debugf("Page classified as %s; navigating back (attempt %d/%d)",
			state, attempt+1, t.RecoveryAttempts)
		if err := t.drv.Back(ctx); err != nil {
			return err
		}
		t.waitForReady(ctx)
	}
	return ErrListPageNotFound
}

// capture prints the current page to PDF and writes it to path. Both
// failures are fatal to the run.
func (t *Traverser) capture(ctx context.Context, path string) error {
	res, err := t.drv.PrintToPDF(ctx)
	if err != nil {
		return err
	}
	if err := res.WriteToFile(path, 0o644); err != nil {
		return fmt.Errorf("minerva: writing %s: %w", path, err)
	}
	return nil
}

// rowLabel builds the sanitized filename label for a row: its fields
// joined with underscores, falling back to the enclosing row's visible
// text, then to a synthetic token.
func (t *Traverser) rowLabel(doc *goquery.Document, rec RowRecord, idx int) string {
	if parts := rec.labelParts(); len(parts) > 0 {
		return SanitizeFilename(strings.Join(parts, "_"))
	}
	if text := RowText(doc, idx); text != "" {
		return SanitizeFilename(text)
	}
	return fmt.Sprintf("row_%d", idx+1)
}

func (t *Traverser) currentDocument(ctx context.Context) (*goquery.Document, error) {
	src, err := t.drv.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("minerva: parsing page: %w", err)
	}
	return doc, nil
}

// waitForURLChange polls the address until it differs from oldURL. The
// wait is bounded and soft: some detail views load without changing the
// address, so a timeout only means we proceed on faith.
func (t *Traverser) waitForURLChange(ctx context.Context, oldURL string) {
	deadline := time.Now().Add(t.WaitTimeout)
	for {
		url, err := t.drv.Location(ctx)
		if err == nil && url != oldURL {
			return
		}
		if time.Now().After(deadline) || sleepCancelled(ctx, t.PollInterval) {
			t.Log.Debugf("Timed out waiting for address change; continuing.")
			return
		}
	}
}

// waitForReady polls document.readyState until "complete". Bounded and
// soft, like waitForURLChange.
func (t *Traverser) waitForReady(ctx context.Context) {
	deadline := time.Now().Add(t.WaitTimeout)
	for {
		state, err := t.drv.ReadyState(ctx)
		if err == nil && state == "complete" {
			return
		}
		if time.Now().After(deadline) || sleepCancelled(ctx, t.PollInterval) {
			t.Log.Debugf("Timed out waiting for page ready; continuing.")
			return
		}
	}
}

// snapshotError reports a fatal navigation failure along with a truncated
// snapshot of whatever the page is currently showing.
func (t *Traverser) snapshotError(ctx context.Context, format string, args ...any) {
	t.Log.Errorf(format, args...)
	if src, err := t.drv.PageSource(ctx); err == nil {
		t.Log.Errorf("Page snapshot: %s", snippet(src, 1000))
	}
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func sleepCancelled(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
