// Package session drives one export of the portal's date-range workflow
// per month window.
//
// A Session holds the single browser handle of the run. Each call to Export
// fills in the date range, applies it, triggers the export and hands the
// resulting download to a download.Watcher, which claims it under the
// window's deterministic file name. Any failed step fails the whole
// attempt; the retry.Policy then re-drives the window from the first date
// field so that a half-applied page state is never reused.
//
// The portal page keeps its date controls between exports, so the page is
// loaded only once per Session. If that first navigation fails, the next
// attempt navigates again.
package session
