package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/msefunds/internal/browser"
	"github.com/nao1215/msefunds/internal/config"
	"github.com/nao1215/msefunds/internal/download"
	"github.com/nao1215/msefunds/internal/retry"
	"github.com/nao1215/msefunds/internal/window"
)

// Session exports month windows through one browser handle.
// It is not safe for concurrent use.
type Session struct {
	driver  browser.Driver
	watcher *download.Watcher
	policy  *retry.Policy
	portal  config.Portal

	// elementTimeout bounds each wait-and-act step.
	elementTimeout time.Duration

	// sleep waits for the page to settle; replaceable in tests.
	sleep retry.SleepFunc

	// now returns the export trigger time.
	now func() time.Time

	logger *slog.Logger

	// loaded is set once the portal page was navigated to successfully.
	loaded bool
}

// Option configures a Session.
type Option func(*Session)

// WithElementTimeout sets the bound on every element step.
func WithElementTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.elementTimeout = d
		}
	}
}

// WithSleep replaces the settle delay wait.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(s *Session) {
		s.sleep = sleep
	}
}

// WithClock replaces the clock used to timestamp export triggers.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a Session. The portal description supplies the URL, the
// selectors, the date layout and the settle delays.
func New(driver browser.Driver, watcher *download.Watcher, policy *retry.Policy, portal config.Portal, opts ...Option) *Session {
	s := &Session{
		driver:         driver,
		watcher:        watcher,
		policy:         policy,
		portal:         portal,
		elementTimeout: config.DefaultElementTimeout,
		sleep:          retry.Sleep,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.policy == nil {
		s.policy = retry.New(retry.WithLogger(s.logger))
	}

	return s
}

// Export drives the export of w and claims the downloaded file.
//
// The returned task is never nil. Its state is Renamed on success and
// Failed once the retry policy is exhausted, in which case the error is a
// *retry.OperationFailedError. A failed window is not fatal to the run.
func (s *Session) Export(ctx context.Context, w window.Month) (*window.Task, error) {
	task := window.NewTask(w)

	s.logger.Info("exporting window",
		"month", w.Label(),
		"from", w.Start.Format(time.DateOnly),
		"to", w.End.Format(time.DateOnly),
		"iteration", w.Iteration,
		"target", task.TargetFilename,
	)

	err := s.policy.Do(ctx, "export "+w.Label(), func(ctx context.Context) error {
		task.Attempts++
		if err := task.Transition(window.Downloading); err != nil {
			return err
		}

		if err := s.attempt(ctx, task); err != nil {
			// Back to pending so the next attempt starts the window over.
			_ = task.Transition(window.Pending)
			return err
		}

		return task.Transition(window.Renamed)
	})
	if err != nil {
		_ = task.Transition(window.Failed)
		s.logger.Warn("window failed",
			"month", w.Label(),
			"target", task.TargetFilename,
			"attempts", task.Attempts,
			"error", err,
		)
		return task, err
	}

	s.logger.Info("window exported", "month", w.Label(), "target", task.TargetFilename)
	return task, nil
}

// attempt runs every step of the workflow once.
func (s *Session) attempt(ctx context.Context, task *window.Task) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	w := task.Window
	layout := s.portal.DateLayout

	if err := s.fill(ctx, "from date", s.portal.FromDate, w.Start.Format(layout)); err != nil {
		return err
	}
	if err := s.fill(ctx, "to date", s.portal.ToDate, w.End.Format(layout)); err != nil {
		return err
	}

	if err := s.step(ctx, "find", s.portal.Find, func(ctx context.Context) error {
		return s.driver.Click(ctx, s.portal.Find)
	}); err != nil {
		return err
	}
	s.logger.Debug("applied date range", "target", task.TargetFilename)

	if err := s.sleep(ctx, s.portal.SettleDelay); err != nil {
		return err
	}

	triggered := s.now()
	if err := s.step(ctx, "export", s.portal.Export, func(ctx context.Context) error {
		return s.driver.Activate(ctx, s.portal.Export)
	}); err != nil {
		return err
	}
	s.logger.Debug("triggered export", "target", task.TargetFilename)

	if err := s.sleep(ctx, s.portal.SettleDelay); err != nil {
		return err
	}

	match := download.All(
		download.NameContains(s.portal.MatchPatterns...),
		download.ModifiedSince(triggered),
	)
	if !s.watcher.AwaitAndClaim(ctx, task.TargetFilename, match) {
		return fmt.Errorf("%w: %s", ErrNotClaimed, task.TargetFilename)
	}

	return nil
}

// load navigates to the portal once per Session.
func (s *Session) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	s.logger.Info("loading portal", "url", s.portal.URL)
	if err := s.driver.Navigate(ctx, s.portal.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrNavigate, err)
	}
	s.loaded = true

	return s.sleep(ctx, s.portal.LoadDelay)
}

// fill replaces the value of a date input.
func (s *Session) fill(ctx context.Context, name string, sel browser.Selector, value string) error {
	err := s.step(ctx, name, sel, func(ctx context.Context) error {
		if err := s.driver.Clear(ctx, sel); err != nil {
			return err
		}
		return s.driver.Type(ctx, sel, value)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("entered date", "field", name, "value", value)
	return nil
}

// step waits for sel and runs act, both bounded by the element timeout.
func (s *Session) step(ctx context.Context, name string, sel browser.Selector, act func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.elementTimeout)
	defer cancel()

	if err := s.driver.WaitReady(ctx, sel); err != nil {
		return &StepError{Step: name, Selector: sel, Err: err}
	}
	if err := act(ctx); err != nil {
		return &StepError{Step: name, Selector: sel, Err: err}
	}

	return nil
}
