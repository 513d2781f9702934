package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/phpnarrow/internal/issue"
)

func TestReadIssues_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, "run-1", 1)

	first := issue.New(issue.RedundantTypeComparison, issue.Span{File: "a.php", Start: 1, End: 2}, "first")
	second := issue.New(issue.ImpossibleKeyCheck, issue.Span{File: "a.php", Start: 5, End: 8}, "second <&>",
		issue.Annotation{Span: issue.Span{File: "a.php", Start: 0, End: 1}, Message: "declared here"})

	// Written out of order: seq decides.
	if _, err := s.WriteIssue(ctx, "run-1", 2, second); err != nil {
		t.Fatalf("WriteIssue() failed: %v", err)
	}
	if _, err := s.WriteIssue(ctx, "run-1", 1, first); err != nil {
		t.Fatalf("WriteIssue() failed: %v", err)
	}

	got, err := s.ReadIssues(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadIssues() failed: %v", err)
	}
	if diff := cmp.Diff([]issue.Issue{first, second}, got); diff != "" {
		t.Errorf("ReadIssues() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadIssues_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadIssues(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("ReadIssues() failed: %v", err)
	}
	if got == nil {
		t.Error("ReadIssues() = nil, want empty slice")
	}
}

func TestReadRuns_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, "b", 2)
	writeTestRun(t, s, "c", 1)
	writeTestRun(t, s, "a", 2)

	runs, err := s.ReadRuns(ctx)
	if err != nil {
		t.Fatalf("ReadRuns() failed: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, ids); diff != "" {
		t.Errorf("run order mismatch (-want +got):\n%s", diff)
	}

	latest, ok, err := s.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if !ok || latest.ID != "b" {
		t.Errorf("LatestRun() = %+v, %v; want run b", latest, ok)
	}
}

func TestLatestRun_Empty(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if ok {
		t.Error("LatestRun() on empty store: ok = true")
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestCountIssues(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, "run-1", 1)

	_, err := s.WriteIssues(ctx, "run-1", 1, []issue.Issue{
		issue.New(issue.RedundantIssetCheck, issue.Span{Start: 1}, "x"),
		issue.New(issue.RedundantIssetCheck, issue.Span{Start: 2}, "x"),
		issue.New(issue.NullArrayAccess, issue.Span{Start: 3}, "y"),
	})
	if err != nil {
		t.Fatalf("WriteIssues() failed: %v", err)
	}

	counts, err := s.CountIssues(ctx, "run-1")
	if err != nil {
		t.Fatalf("CountIssues() failed: %v", err)
	}
	want := map[issue.Kind]int{issue.RedundantIssetCheck: 2, issue.NullArrayAccess: 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("CountIssues() mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() on empty store = %d, want 0", seq)
	}

	writeTestRun(t, s, "run-1", 3)
	is := issue.New(issue.RedundantTypeComparison, issue.Span{File: "a.php"}, "x")
	if _, err := s.WriteIssue(ctx, "run-1", 7, is); err != nil {
		t.Fatalf("WriteIssue() failed: %v", err)
	}

	seq, err = s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 7 {
		t.Errorf("MaxSeq() = %d, want 7", seq)
	}
}
