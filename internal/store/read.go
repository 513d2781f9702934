package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/phpnarrow/internal/issue"
)

// ReadRun retrieves a run by ID. Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, php_version, seq FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.PHPVersion, &r.Seq)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// ReadRuns returns every run ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, php_version, seq
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Name, &r.PHPVersion, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the run with the highest seq. ok is false when the
// store holds no runs.
func (s *Store) LatestRun(ctx context.Context) (Run, bool, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, php_version, seq
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&r.ID, &r.Name, &r.PHPVersion, &r.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run: %w", err)
	}
	return r, true, nil
}

// ReadIssues returns the issues of a run ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadIssues(ctx context.Context, runID string) ([]issue.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, severity, message, file, start_offset, end_offset, annotations
		FROM issues
		WHERE run_id = ?
		ORDER BY seq ASC, id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	issues := []issue.Issue{}
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}
	return issues, nil
}

// CountIssues returns the number of issues per kind for a run.
func (s *Store) CountIssues(ctx context.Context, runID string) (map[issue.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM issues
		WHERE run_id = ?
		GROUP BY kind
		ORDER BY kind COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("count issues: %w", err)
	}
	defer rows.Close()

	counts := make(map[issue.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan issue count: %w", err)
		}
		counts[issue.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue counts: %w", err)
	}
	return counts, nil
}

func scanIssue(rows *sql.Rows) (issue.Issue, error) {
	var (
		is             issue.Issue
		kind, severity string
		anns           string
	)
	if err := rows.Scan(&kind, &severity, &is.Message, &is.Span.File, &is.Span.Start, &is.Span.End, &anns); err != nil {
		return issue.Issue{}, fmt.Errorf("scan issue: %w", err)
	}
	is.Kind = issue.Kind(kind)
	is.Severity = issue.Severity(severity)

	a, err := unmarshalAnnotations(anns)
	if err != nil {
		return issue.Issue{}, err
	}
	is.Annotations = a
	return is, nil
}

// MaxSeq returns the highest seq used by any run or issue, or 0 for an
// empty store. A clock resumed after it keeps seq unique across runs.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM runs), 0),
			COALESCE((SELECT MAX(seq) FROM issues), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}
