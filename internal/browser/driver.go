package browser

import (
	"context"
	"fmt"
)

// By is an element location strategy.
type By string

// Supported location strategies.
const (
	// ByID locates an element by its id attribute.
	ByID By = "id"
	// ByXPath locates the first element matching an XPath expression.
	ByXPath By = "xpath"
	// ByCSS locates the first element matching a CSS selector.
	ByCSS By = "css"
)

// Selector identifies one element in the rendered page.
type Selector struct {
	By    By     `yaml:"by"`
	Value string `yaml:"value"`
}

// ID returns a Selector matching the element with the given id.
func ID(id string) Selector {
	return Selector{By: ByID, Value: id}
}

// XPath returns a Selector matching the given XPath expression.
func XPath(expr string) Selector {
	return Selector{By: ByXPath, Value: expr}
}

// CSS returns a Selector matching the given CSS selector.
func CSS(query string) Selector {
	return Selector{By: ByCSS, Value: query}
}

// Validate reports whether the selector can be used by a Driver.
func (s Selector) Validate() error {
	switch s.By {
	case ByID, ByXPath, ByCSS:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSelector, s.By)
	}
	if s.Value == "" {
		return fmt.Errorf("empty %s selector", s.By)
	}
	return nil
}

// String returns the selector in "by=value" form for logging.
func (s Selector) String() string {
	return string(s.By) + "=" + s.Value
}

// Driver is the capability set the export workflow needs from a browser.
//
// All methods block until the action completes or ctx is done. Callers
// bound element lookups by passing a context with a deadline.
type Driver interface {
	// Navigate loads url in the current tab.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until the element matching sel is present in the DOM.
	WaitReady(ctx context.Context, sel Selector) error

	// Clear empties the value of an input element.
	Clear(ctx context.Context, sel Selector) error

	// Type sends text as key events to the element.
	Type(ctx context.Context, sel Selector, text string) error

	// Click performs a native mouse click on the element.
	Click(ctx context.Context, sel Selector) error

	// Activate clicks the element from page script rather than through
	// input events, so overlays covering the element do not intercept it.
	Activate(ctx context.Context, sel Selector) error

	// Close releases the browser.
	Close() error
}
