package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

// TestSelectorValidate tests selector validation rules.
func TestSelectorValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sel     Selector
		wantErr bool
	}{
		{name: "id selector is valid", sel: ID("FromDate")},
		{name: "xpath selector is valid", sel: XPath("//input[@value='Find']")},
		{name: "css selector is valid", sel: CSS("#btnExport")},
		{name: "unknown strategy is invalid", sel: Selector{By: "name", Value: "x"}, wantErr: true},
		{name: "empty value is invalid", sel: ID(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.sel.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unknown strategy wraps ErrUnknownSelector", func(t *testing.T) {
		t.Parallel()
		err := Selector{By: "name", Value: "x"}.Validate()
		if !errors.Is(err, ErrUnknownSelector) {
			t.Errorf("expected ErrUnknownSelector, got %v", err)
		}
	})
}

// TestSelectorString tests the log representation of selectors.
func TestSelectorString(t *testing.T) {
	t.Parallel()

	if got := ID("ToDate").String(); got != "id=ToDate" {
		t.Errorf("expected 'id=ToDate', got %q", got)
	}
}

// TestActivationScript tests the script used for overlay-proof clicks.
func TestActivationScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sel  Selector
		want string
	}{
		{
			name: "id uses getElementById",
			sel:  ID("btnExport"),
			want: `document.getElementById("btnExport")`,
		},
		{
			name: "xpath uses document.evaluate",
			sel:  XPath("//input[@value='Find']"),
			want: `document.evaluate("//input[@value='Find']"`,
		},
		{
			name: "css uses querySelector",
			sel:  CSS("a.export"),
			want: `document.querySelector("a.export")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			script, err := activationScript(tt.sel)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(script, tt.want) {
				t.Errorf("expected script to contain %q, got %q", tt.want, script)
			}
			if !strings.Contains(script, "el.click()") {
				t.Errorf("expected script to click the element, got %q", script)
			}
		})
	}

	t.Run("quotes are escaped", func(t *testing.T) {
		t.Parallel()

		script, err := activationScript(ID(`a"b`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(script, `"a\"b"`) {
			t.Errorf("expected escaped literal, got %q", script)
		}
	})

	t.Run("invalid selector returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := activationScript(Selector{}); err == nil {
			t.Error("expected error for empty selector")
		}
	})
}

// TestChromeNotStarted tests that driver calls fail before Start.
func TestChromeNotStarted(t *testing.T) {
	t.Parallel()

	c := NewChrome(WithDownloadDir(t.TempDir()), WithPageLoadTimeout(time.Second))
	ctx := context.Background()

	if c.IsRunning() {
		t.Fatal("expected new Chrome to not be running")
	}
	if err := c.Navigate(ctx, "about:blank"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Navigate: expected ErrNotStarted, got %v", err)
	}
	if err := c.WaitReady(ctx, ID("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("WaitReady: expected ErrNotStarted, got %v", err)
	}
	if err := c.Activate(ctx, ID("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Activate: expected ErrNotStarted, got %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Errorf("Stop on unstarted instance: unexpected error %v", err)
	}
}

// TestNewChromeDefaults tests option defaults.
func TestNewChromeDefaults(t *testing.T) {
	t.Parallel()

	c := NewChrome()
	if !c.headless {
		t.Error("expected headless by default")
	}
	if c.userAgent != DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", c.userAgent)
	}
	if c.pageLoadTimeout != 30*time.Second {
		t.Errorf("expected 30s page load timeout, got %v", c.pageLoadTimeout)
	}

	c = NewChrome(WithHeadless(false), WithUserAgent("ua"), WithExecPath("/usr/bin/chromium"))
	if c.headless || c.userAgent != "ua" || c.execPath != "/usr/bin/chromium" {
		t.Errorf("options not applied: %+v", c)
	}
}

// TestChromeStartLifecycle tests that the browser context created by Start
// lives until Stop, independent of the context passed to Start.
func TestChromeStartLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("launch context survives Start", func(t *testing.T) {
		t.Parallel()

		var launchCtx, actionCtx context.Context
		c := NewChrome(WithDownloadDir(t.TempDir()))
		c.exec = func(ctx context.Context, _ ...chromedp.Action) error {
			if launchCtx == nil {
				launchCtx = ctx
			} else {
				actionCtx = ctx
			}
			return nil
		}

		startCtx, cancel := context.WithCancel(context.Background())
		if err := c.Start(startCtx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cancel()

		if !c.IsRunning() {
			t.Fatal("expected Chrome to be running")
		}
		if launchCtx == nil {
			t.Fatal("expected Start to launch the browser")
		}
		if err := launchCtx.Err(); err != nil {
			t.Fatalf("browser context ended with Start's caller: %v", err)
		}

		if err := c.WaitReady(context.Background(), ID("FromDate")); err != nil {
			t.Fatalf("WaitReady after Start: %v", err)
		}
		if actionCtx == nil || actionCtx.Err() == nil {
			t.Error("expected the action context to end when the action returns")
		}
		if err := launchCtx.Err(); err != nil {
			t.Errorf("browser context ended after an action: %v", err)
		}

		if err := c.Close(); err != nil {
			t.Fatalf("Close: unexpected error %v", err)
		}
		if launchCtx.Err() == nil {
			t.Error("expected Close to end the browser context")
		}
		if c.IsRunning() {
			t.Error("expected Chrome to be stopped")
		}
	})

	t.Run("cancelled caller aborts launch", func(t *testing.T) {
		t.Parallel()

		c := NewChrome(WithDownloadDir(t.TempDir()))
		c.exec = func(ctx context.Context, _ ...chromedp.Action) error {
			<-ctx.Done()
			return ctx.Err()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := c.Start(ctx)
		if !errors.Is(err, ErrLaunch) {
			t.Fatalf("expected ErrLaunch, got %v", err)
		}
		if c.IsRunning() {
			t.Error("expected Chrome to not be running after a failed launch")
		}
	})

	t.Run("launch failure", func(t *testing.T) {
		t.Parallel()

		c := NewChrome(WithDownloadDir(t.TempDir()))
		c.exec = func(context.Context, ...chromedp.Action) error {
			return errors.New("exec: \"chrome\": executable file not found")
		}

		if err := c.Start(context.Background()); !errors.Is(err, ErrLaunch) {
			t.Fatalf("expected ErrLaunch, got %v", err)
		}
		if c.IsRunning() {
			t.Error("expected Chrome to not be running")
		}
	})
}
