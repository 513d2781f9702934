package store

import (
	"context"
	"fmt"

	"github.com/roach88/phpnarrow/internal/issue"
)

// Run is one analysis.
type Run struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PHPVersion int    `json:"php_version"`
	Seq        int64  `json:"seq"`
}

// WriteRun inserts a run record. Duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("write run: id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, php_version, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Name, run.PHPVersion, run.Seq)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteIssue stores is under runID and reports whether a new row was
// inserted. An issue whose fingerprint the run already holds is dropped,
// so inserted is false.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteIssue(ctx context.Context, runID string, seq int64, is issue.Issue) (bool, error) {
	anns, err := marshalAnnotations(is.Annotations)
	if err != nil {
		return false, fmt.Errorf("write issue: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO issues
		(run_id, fingerprint, kind, severity, message, file, start_offset, end_offset, annotations, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, fingerprint) DO NOTHING
	`,
		runID,
		is.Fingerprint(),
		string(is.Kind),
		string(is.Severity),
		is.Message,
		is.Span.File,
		is.Span.Start,
		is.Span.End,
		anns,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("write issue: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write issue: rows affected: %w", err)
	}
	return n > 0, nil
}

// WriteIssues stores issues in one transaction, numbering them from
// firstSeq. It returns how many were new.
func (s *Store) WriteIssues(ctx context.Context, runID string, firstSeq int64, issues []issue.Issue) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write issues: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues
		(run_id, fingerprint, kind, severity, message, file, start_offset, end_offset, annotations, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, fingerprint) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("write issues: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, is := range issues {
		anns, err := marshalAnnotations(is.Annotations)
		if err != nil {
			return 0, fmt.Errorf("write issues: %w", err)
		}
		res, err := stmt.ExecContext(ctx,
			runID, is.Fingerprint(), string(is.Kind), string(is.Severity), is.Message,
			is.Span.File, is.Span.Start, is.Span.End, anns, firstSeq+int64(i))
		if err != nil {
			return 0, fmt.Errorf("write issues: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write issues: commit: %w", err)
	}
	return inserted, nil
}
