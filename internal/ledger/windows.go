package ledger

import (
	"context"
	"fmt"
	"time"
)

// dateLayout stores window bounds as plain dates.
const dateLayout = time.DateOnly

// WindowRecord is the stored outcome of one month window.
type WindowRecord struct {
	ID        int64
	Iteration int
	Start     time.Time
	End       time.Time
	Target    string
	State     string
	Attempts  int
	Error     string
	Timestamp time.Time
}

// RecordWindow appends a window outcome.
func (l *Ledger) RecordWindow(ctx context.Context, rec WindowRecord) error {
	query := `
	INSERT INTO windows (iteration, start_date, end_date, target, state, attempts, error)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.ExecContext(ctx, query,
		rec.Iteration,
		rec.Start.Format(dateLayout),
		rec.End.Format(dateLayout),
		rec.Target,
		rec.State,
		rec.Attempts,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record window %s: %w", rec.Target, err)
	}

	return nil
}

// Windows returns the latest outcome of every target file, ordered by
// window start.
func (l *Ledger) Windows(ctx context.Context) ([]WindowRecord, error) {
	query := `
	SELECT w.id, w.iteration, w.start_date, w.end_date, w.target, w.state, w.attempts,
		COALESCE(w.error, ''), w.timestamp
	FROM windows w
	WHERE w.id = (SELECT MAX(id) FROM windows WHERE target = w.target)
	ORDER BY w.start_date, w.iteration
	`

	return l.queryWindows(ctx, query)
}

// FailedWindows returns the windows whose latest outcome is "failed".
func (l *Ledger) FailedWindows(ctx context.Context) ([]WindowRecord, error) {
	all, err := l.Windows(ctx)
	if err != nil {
		return nil, err
	}

	failed := make([]WindowRecord, 0, len(all))
	for _, w := range all {
		if w.State == "failed" {
			failed = append(failed, w)
		}
	}
	return failed, nil
}

func (l *Ledger) queryWindows(ctx context.Context, query string, args ...any) ([]WindowRecord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer rows.Close()

	var results []WindowRecord
	for rows.Next() {
		var rec WindowRecord
		var start, end, timestamp string

		if err := rows.Scan(
			&rec.ID,
			&rec.Iteration,
			&start,
			&end,
			&rec.Target,
			&rec.State,
			&rec.Attempts,
			&rec.Error,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}

		rec.Start, _ = time.Parse(dateLayout, start) //nolint:errcheck // written by RecordWindow
		rec.End, _ = time.Parse(dateLayout, end)     //nolint:errcheck // written by RecordWindow
		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}
