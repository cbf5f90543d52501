package minerva

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// actionControlXPath matches the per-row View buttons on the list page.
const actionControlXPath = `//input[@type='button' and contains(normalize-space(@value), 'View')]`

// Driver is the browser surface the traversal loop drives. It is
// implemented by [Session]; tests substitute a fake.
type Driver interface {
	// Location returns the current page address.
	Location(ctx context.Context) (string, error)
	// PageSource returns the rendered document's outer HTML.
	PageSource(ctx context.Context) (string, error)
	// CountRows returns the number of action controls currently on the page.
	CountRows(ctx context.Context) (int, error)
	// ClickRow activates the n-th (0-based) action control.
	ClickRow(ctx context.Context, n int) error
	// Back navigates one entry back in the browser history.
	Back(ctx context.Context) error
	// ReadyState returns document.readyState ("loading", "interactive",
	// "complete").
	ReadyState(ctx context.Context) (string, error)
	// PrintToPDF renders the current page to a PDF document.
	PrintToPDF(ctx context.Context) (*Result, error)
}

// Session drives a single browser tab over the Chrome DevTools Protocol.
//
// The normal mode attaches to an already-running browser's first open page
// tab: the operator launches Chrome with --remote-debugging-port, logs in,
// and navigates to the list page before the traversal starts. All
// operations run serially on that one tab; a Session is not meant for
// concurrent use.
//
// Call [Session.Close] when done to release the connection (and, in
// launch mode, the browser process).
type Session struct {
	cfg     sessionConfig
	tab     context.Context
	cancels []context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ Driver = (*Session)(nil)

// Attach connects to the browser and returns a ready Session. In the
// default mode it attaches to the remote debugging endpoint and adopts the
// first open page tab; with [WithLaunch] it starts a browser of its own.
func Attach(opts ...Option) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.launch {
		return launchSession(cfg)
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), "http://"+cfg.debugAddr)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancels := []context.CancelFunc{browserCancel, allocCancel}

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		cancelAll(cancels)
		return nil, fmt.Errorf("minerva: attaching to browser at %s: %w", cfg.debugAddr, err)
	}
	var tabID target.ID
	for _, t := range targets {
		if t.Type == "page" && !strings.HasPrefix(t.URL, "devtools://") {
			tabID = t.TargetID
			break
		}
	}
	if tabID == "" {
		cancelAll(cancels)
		return nil, ErrNoTab
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(tabID))
	cancels = append([]context.CancelFunc{tabCancel}, cancels...)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelAll(cancels)
		return nil, fmt.Errorf("minerva: adopting tab: %w", err)
	}

	return &Session{cfg: cfg, tab: tabCtx, cancels: cancels}, nil
}

// launchSession starts a visible browser via an exec allocator. Used for
// environments without a pre-launched debuggable Chrome.
func launchSession(cfg sessionConfig) (*Session, error) {
	path := cfg.chromePath
	if path == "" {
		var err error
		if path, err = resolveBrowser(); err != nil {
			return nil, err
		}
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(path),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancels := []context.CancelFunc{browserCancel, allocCancel}

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelAll(cancels)
		return nil, fmt.Errorf("minerva: starting browser: %w", err)
	}

	return &Session{cfg: cfg, tab: browserCtx, cancels: cancels}, nil
}

func cancelAll(cancels []context.CancelFunc) {
	for _, c := range cancels {
		c()
	}
}

// Close releases the DevTools connection. In launch mode this also ends
// the browser process. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	cancelAll(s.cancels)
	return nil
}

// run executes actions on the session tab with the configured round-trip
// timeout, honoring cancellation of the caller's ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.tab, s.cfg.opTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}

// Location implements [Driver].
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("minerva: reading location: %w", err)
	}
	return url, nil
}

// PageSource implements [Driver].
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var src string
	if err := s.run(ctx, chromedp.OuterHTML("html", &src, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("minerva: reading page source: %w", err)
	}
	return src, nil
}

// CountRows implements [Driver].
func (s *Session) CountRows(ctx context.Context) (int, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(actionControlXPath, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return 0, fmt.Errorf("minerva: enumerating action controls: %w", err)
	}
	return len(nodes), nil
}

// ClickRow implements [Driver]. Controls are addressed by position, never
// by cached node reference: navigation invalidates the DOM between calls.
func (s *Session) ClickRow(ctx context.Context, n int) error {
	sel := fmt.Sprintf("(%s)[%d]", actionControlXPath, n+1)
	if err := s.run(ctx, chromedp.Click(sel, chromedp.BySearch)); err != nil {
		return fmt.Errorf("minerva: clicking row %d: %w", n+1, err)
	}
	return nil
}

// Back implements [Driver].
func (s *Session) Back(ctx context.Context) error {
	if err := s.run(ctx, chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("minerva: navigating back: %w", err)
	}
	return nil
}

// ReadyState implements [Driver].
func (s *Session) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := s.run(ctx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
		return "", fmt.Errorf("minerva: reading ready state: %w", err)
	}
	return state, nil
}

// PrintToPDF implements [Driver]. Background graphics are kept, the page
// stays portrait, and any CSS @page size the document declares wins over
// the default paper size. The protocol returns the document base64
// encoded; chromedp hands back the decoded bytes.
func (s *Session) PrintToPDF(ctx context.Context) (*Result, error) {
	var buf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithLandscape(false).
			WithPreferCSSPageSize(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("minerva: printing page to PDF: %w", err)
	}
	return &Result{data: buf}, nil
}
