// Package ledger keeps a SQLite record of every crawl window outcome and
// every assembly run, so that operators can see which months are missing
// without reading the run log.
//
// The ledger is auxiliary: callers log and ignore its errors rather than
// failing a run because a record could not be written.
package ledger
