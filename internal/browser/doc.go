// Package browser provides the browser-automation layer used to drive the
// MSE portal's date-range export workflow.
//
// The rest of the program only depends on the Driver interface, which
// exposes the capability set the export workflow needs: navigate, wait for
// an element, clear, type, click, and a script-level activation that
// bypasses overlay/occlusion checks.
//
// Chrome implements Driver on top of chromedp. It owns one browser tab for
// its whole lifetime; callers must not share it between goroutines.
//
// # Usage
//
//	chrome := browser.NewChrome(browser.WithDownloadDir(dir))
//	if err := chrome.Start(ctx); err != nil {
//		return err
//	}
//	defer chrome.Stop()
//
//	err := chrome.WaitReady(ctx, browser.ID("FromDate"))
package browser
