package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSource struct {
	unmatched  []UnmatchedEvent
	duplicates []DuplicateGroup
	orphans    []OrphanTransaction
	err        error
}

func (f *fakeSource) UnmatchedEvents() ([]UnmatchedEvent, error) {
	return f.unmatched, f.err
}

func (f *fakeSource) DuplicateReferences() ([]DuplicateGroup, error) {
	return f.duplicates, f.err
}

func (f *fakeSource) OrphanTransactions() ([]OrphanTransaction, error) {
	return f.orphans, f.err
}

func TestReporterRun_CleanState(t *testing.T) {
	r := NewReporter(&fakeSource{})

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Critical {
		t.Fatalf("clean state must not be critical")
	}
	if len(report.Unmatched) != 0 || len(report.Duplicates) != 0 || len(report.Orphans) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.GeneratedAt.IsZero() {
		t.Fatalf("expected generation timestamp")
	}
}

func TestReporterRun_ProposesActions(t *testing.T) {
	src := &fakeSource{
		unmatched: []UnmatchedEvent{
			{EventID: 1, ProviderReference: "REF_1", ReceivedAt: time.Now()},
			{EventID: 2, ProviderReference: "REF_2", ErrorMessage: "wallet not found for \"student 9\""},
		},
		orphans: []OrphanTransaction{
			{TransactionID: 5, Reference: "SPY-abc", ProviderReference: "SIM_xyz", Amount: 10000},
		},
	}
	r := NewReporter(src)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Critical {
		t.Fatalf("unmatched and orphans alone are not critical")
	}

	if got := report.Unmatched[0].ProposedAction; got != "create transaction from event payload" {
		t.Fatalf("unexpected proposal for clean unmatched event: %q", got)
	}
	if got := report.Unmatched[1].ProposedAction; !strings.Contains(got, "reprocess event") {
		t.Fatalf("unexpected proposal for errored event: %q", got)
	}
	if got := report.Orphans[0].ProposedAction; !strings.Contains(got, "verify origin") {
		t.Fatalf("unexpected proposal for orphan: %q", got)
	}
}

func TestReporterRun_DuplicatesAreCritical(t *testing.T) {
	src := &fakeSource{
		duplicates: []DuplicateGroup{{ProviderReference: "REF_DUP", Count: 3}},
	}
	r := NewReporter(src)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Critical {
		t.Fatalf("duplicate ledger rows must flag the report critical")
	}
	if got := report.Duplicates[0].ProposedAction; !strings.Contains(got, "reverse the other 2") {
		t.Fatalf("unexpected proposal: %q", got)
	}
}

func TestReporterRun_SourceError(t *testing.T) {
	wantErr := errors.New("connection refused")
	r := NewReporter(&fakeSource{err: wantErr})

	if _, err := r.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected source error to propagate, got %v", err)
	}
}
