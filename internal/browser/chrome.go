package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is sent by the Chrome driver unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Chrome drives a Chrome/Chromium process through the DevTools protocol.
// It is the single browser handle shared by every export of a run; the
// portal keeps its date-range controls in page state, so one tab is used
// for the whole lifetime.
type Chrome struct {
	// downloadDir is where Chrome saves exported files.
	downloadDir string

	// headless runs Chrome without a visible window.
	headless bool

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// execPath overrides the Chrome binary lookup.
	execPath string

	// pageLoadTimeout bounds a single navigation.
	pageLoadTimeout time.Duration

	// tabCtx is the chromedp tab context; nil until Start succeeds.
	tabCtx context.Context

	// cancelTab and cancelAlloc tear down the tab and the process.
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	// exec runs actions in a chromedp context. chromedp.Run outside tests.
	exec func(ctx context.Context, actions ...chromedp.Action) error
}

// ChromeOption configures a Chrome instance.
type ChromeOption func(*Chrome)

// WithDownloadDir sets the directory Chrome saves downloads into.
func WithDownloadDir(dir string) ChromeOption {
	return func(c *Chrome) {
		c.downloadDir = dir
	}
}

// WithHeadless toggles headless mode. Default is true.
func WithHeadless(headless bool) ChromeOption {
	return func(c *Chrome) {
		c.headless = headless
	}
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) ChromeOption {
	return func(c *Chrome) {
		c.userAgent = ua
	}
}

// WithExecPath sets the Chrome executable to launch.
func WithExecPath(path string) ChromeOption {
	return func(c *Chrome) {
		c.execPath = path
	}
}

// WithPageLoadTimeout bounds each Navigate call.
func WithPageLoadTimeout(d time.Duration) ChromeOption {
	return func(c *Chrome) {
		if d > 0 {
			c.pageLoadTimeout = d
		}
	}
}

// NewChrome creates a Chrome driver. Call Start to launch the process.
func NewChrome(opts ...ChromeOption) *Chrome {
	c := &Chrome{
		downloadDir:     ".",
		headless:        true,
		userAgent:       DefaultUserAgent,
		pageLoadTimeout: 30 * time.Second,
		exec:            chromedp.Run,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start launches Chrome, opens a tab and routes downloads to the
// configured directory. A failure here is a setup failure: the caller
// should abort the run.
func (c *Chrome) Start(ctx context.Context) error {
	if c.tabCtx != nil {
		return nil
	}

	dir, err := filepath.Abs(c.downloadDir)
	if err != nil {
		return fmt.Errorf("%w: resolve download dir: %v", ErrLaunch, err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.userAgent),
	)
	if c.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.execPath))
	}

	// The process outlives ctx; it is torn down by Stop.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	c.tabCtx = tabCtx
	c.cancelTab = cancelTab
	c.cancelAlloc = cancelAlloc

	// The first Run allocates the process and binds it to the context it
	// is given, so it must run on tabCtx itself. ctx only aborts the launch.
	abort := context.AfterFunc(ctx, cancelTab)
	err = c.exec(tabCtx, cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
		WithDownloadPath(dir))
	if !abort() && err == nil {
		err = context.Cause(ctx)
	}
	if err != nil {
		_ = c.Stop() //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	return nil
}

// Stop closes the tab and kills the Chrome process.
// It is safe to call Stop multiple times or on an unstarted instance.
func (c *Chrome) Stop() error {
	if c.tabCtx == nil {
		return nil
	}

	err := chromedp.Cancel(c.tabCtx)
	c.cancelTab()
	c.cancelAlloc()
	c.tabCtx = nil

	return err
}

// Close implements Driver.
func (c *Chrome) Close() error {
	return c.Stop()
}

// IsRunning reports whether Start has succeeded and Stop was not called.
func (c *Chrome) IsRunning() bool {
	return c.tabCtx != nil
}

// Navigate implements Driver.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, c.pageLoadTimeout)
	defer cancel()
	return c.run(ctx, chromedp.Navigate(url))
}

// WaitReady implements Driver.
func (c *Chrome) WaitReady(ctx context.Context, sel Selector) error {
	opts, err := queryOptions(sel)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.WaitReady(sel.Value, opts...))
}

// Clear implements Driver.
func (c *Chrome) Clear(ctx context.Context, sel Selector) error {
	opts, err := queryOptions(sel)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.Clear(sel.Value, opts...))
}

// Type implements Driver.
func (c *Chrome) Type(ctx context.Context, sel Selector, text string) error {
	opts, err := queryOptions(sel)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.SendKeys(sel.Value, text, opts...))
}

// Click implements Driver.
func (c *Chrome) Click(ctx context.Context, sel Selector) error {
	opts, err := queryOptions(sel)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.Click(sel.Value, opts...))
}

// Activate implements Driver.
func (c *Chrome) Activate(ctx context.Context, sel Selector) error {
	script, err := activationScript(sel)
	if err != nil {
		return err
	}

	var clicked bool
	if err := c.run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("%w: %s", ErrElementNotFound, sel)
	}
	return nil
}

// run executes actions in the tab, honouring both the tab lifetime and
// the caller's cancellation and deadline.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if c.tabCtx == nil {
		return ErrNotStarted
	}

	runCtx, cancel := context.WithCancel(c.tabCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return c.exec(runCtx, actions...)
}

// queryOptions maps a Selector strategy to chromedp query options.
func queryOptions(sel Selector) ([]chromedp.QueryOption, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	switch sel.By {
	case ByID:
		return []chromedp.QueryOption{chromedp.ByID}, nil
	case ByXPath:
		return []chromedp.QueryOption{chromedp.BySearch}, nil
	default:
		return []chromedp.QueryOption{chromedp.ByQuery}, nil
	}
}

// activationScript builds a script that clicks the selected element and
// evaluates to false when no element matches.
func activationScript(sel Selector) (string, error) {
	if err := sel.Validate(); err != nil {
		return "", err
	}

	literal, err := json.Marshal(sel.Value)
	if err != nil {
		return "", err
	}

	var find string
	switch sel.By {
	case ByID:
		find = fmt.Sprintf("document.getElementById(%s)", literal)
	case ByXPath:
		find = fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", literal)
	default:
		find = fmt.Sprintf("document.querySelector(%s)", literal)
	}

	return fmt.Sprintf("(function(){var el=%s;if(!el){return false;}el.click();return true;})()", find), nil
}
