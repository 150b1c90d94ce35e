package browser

import "errors"

// Browser errors.
var (
	// ErrNotStarted is returned when a Driver method is called on a Chrome
	// instance that has not been started or has already been stopped.
	ErrNotStarted = errors.New("browser is not running")

	// ErrLaunch is returned when the Chrome process could not be started.
	// This is a setup failure and is never retried.
	ErrLaunch = errors.New("failed to launch browser")

	// ErrUnknownSelector is returned for a Selector whose strategy is not
	// one of ByID, ByXPath or ByCSS.
	ErrUnknownSelector = errors.New("unknown selector strategy")

	// ErrElementNotFound is returned when a script activation could not
	// locate its target element in the rendered page.
	ErrElementNotFound = errors.New("element not found")
)
