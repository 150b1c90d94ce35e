package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AssemblyRecord is the stored summary of one assembly run.
type AssemblyRecord struct {
	ID          int64
	Output      string
	FilesParsed int
	FilesFailed int
	Rows        int
	Duplicates  int

	// Digest is the hex SHA3-256 of the written artifact.
	Digest string

	// FailedFiles lists the names of files that could not be parsed.
	FailedFiles []string

	Timestamp time.Time
}

// RecordAssembly appends an assembly run.
func (l *Ledger) RecordAssembly(ctx context.Context, rec AssemblyRecord) error {
	failedJSON, err := json.Marshal(rec.FailedFiles)
	if err != nil {
		return fmt.Errorf("failed to serialize failed files: %w", err)
	}

	query := `
	INSERT INTO assemblies (output, files_parsed, files_failed, row_count, duplicates, digest, failed_files)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = l.db.ExecContext(ctx, query,
		rec.Output,
		rec.FilesParsed,
		rec.FilesFailed,
		rec.Rows,
		rec.Duplicates,
		rec.Digest,
		string(failedJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to record assembly: %w", err)
	}

	return nil
}

// Assemblies returns the most recent assembly runs, newest first.
// A limit of zero or less returns every run.
func (l *Ledger) Assemblies(ctx context.Context, limit int) ([]AssemblyRecord, error) {
	query := `
	SELECT id, output, files_parsed, files_failed, row_count, duplicates,
		COALESCE(digest, ''), COALESCE(failed_files, ''), timestamp
	FROM assemblies
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assemblies: %w", err)
	}
	defer rows.Close()

	var results []AssemblyRecord
	for rows.Next() {
		var rec AssemblyRecord
		var failedJSON, timestamp string

		if err := rows.Scan(
			&rec.ID,
			&rec.Output,
			&rec.FilesParsed,
			&rec.FilesFailed,
			&rec.Rows,
			&rec.Duplicates,
			&rec.Digest,
			&failedJSON,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assembly: %w", err)
		}

		if failedJSON != "" {
			if err := json.Unmarshal([]byte(failedJSON), &rec.FailedFiles); err != nil {
				rec.FailedFiles = nil
			}
		}
		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}
