// Package log builds the run logger, a log/slog logger that writes every
// record to two places at once: the terminal and an append-only run log
// file.
//
// The terminal shows Info and above, or Debug and above in verbose mode.
// The run log always records Info and above, so a failed night run can
// be diagnosed afterwards regardless of the flags it was started with.
//
// # Usage
//
//	runLog, err := log.OpenRunLog("crawler.log")
//	if err != nil {
//		return err
//	}
//	defer runLog.Close()
//
//	logger := log.NewRunLogger(os.Stderr, runLog, verbose)
//	slog.SetDefault(logger)
package log
