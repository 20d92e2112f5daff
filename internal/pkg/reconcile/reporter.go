package reconcile

import (
	"context"
	"fmt"
	"time"
)

// Source provides the read-only queries the reporter runs over persisted
// state. It never exposes a mutating operation.
type Source interface {
	UnmatchedEvents() ([]UnmatchedEvent, error)
	DuplicateReferences() ([]DuplicateGroup, error)
	OrphanTransactions() ([]OrphanTransaction, error)
}

// UnmatchedEvent is a logged webhook with no ledger row sharing its
// provider reference.
type UnmatchedEvent struct {
	EventID           uint      `json:"event_id"`
	EventType         string    `json:"event_type"`
	ProviderReference string    `json:"provider_reference"`
	Processed         bool      `json:"processed"`
	ErrorMessage      string    `json:"error_message"`
	ReceivedAt        time.Time `json:"received_at"`
	ProposedAction    string    `json:"proposed_action"`
}

// DuplicateGroup is a provider reference carried by more than one ledger
// row. The storage constraint makes this impossible in normal operation;
// any hit means the invariant was bypassed and is a critical alert.
type DuplicateGroup struct {
	ProviderReference string `json:"provider_reference"`
	Count             int64  `json:"count"`
	ProposedAction    string `json:"proposed_action"`
}

// OrphanTransaction is a ledger row with a provider reference but no
// corresponding webhook event, e.g. manually created or simulated.
type OrphanTransaction struct {
	TransactionID     uint      `json:"transaction_id"`
	Reference         string    `json:"reference"`
	ProviderReference string    `json:"provider_reference"`
	StudentID         uint      `json:"student_id"`
	Amount            int64     `json:"amount"`
	CreatedAt         time.Time `json:"created_at"`
	ProposedAction    string    `json:"proposed_action"`
}

// Report is the operator-facing output. The reporter proposes actions but
// never executes them.
type Report struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Critical    bool                `json:"critical"`
	Unmatched   []UnmatchedEvent    `json:"unmatched_webhooks"`
	Duplicates  []DuplicateGroup    `json:"duplicate_transactions"`
	Orphans     []OrphanTransaction `json:"orphaned_transactions"`
}

// Reporter assembles reconciliation reports from a Source.
type Reporter struct {
	source Source
}

func NewReporter(source Source) *Reporter {
	return &Reporter{source: source}
}

// Run executes all three checks and annotates each finding with a
// proposed fix for human review.
func (r *Reporter) Run(ctx context.Context) (*Report, error) {
	_ = ctx
	unmatched, err := r.source.UnmatchedEvents()
	if err != nil {
		return nil, fmt.Errorf("unmatched events query: %w", err)
	}
	for i := range unmatched {
		if unmatched[i].ErrorMessage != "" {
			unmatched[i].ProposedAction = "reprocess event after fixing: " + unmatched[i].ErrorMessage
		} else {
			unmatched[i].ProposedAction = "create transaction from event payload"
		}
	}

	duplicates, err := r.source.DuplicateReferences()
	if err != nil {
		return nil, fmt.Errorf("duplicate references query: %w", err)
	}
	for i := range duplicates {
		duplicates[i].ProposedAction = fmt.Sprintf("resolve duplicate: keep earliest row, reverse the other %d", duplicates[i].Count-1)
	}

	orphans, err := r.source.OrphanTransactions()
	if err != nil {
		return nil, fmt.Errorf("orphan transactions query: %w", err)
	}
	for i := range orphans {
		orphans[i].ProposedAction = "verify origin (manual or simulated) and backfill webhook event if external"
	}

	return &Report{
		GeneratedAt: time.Now(),
		Critical:    len(duplicates) > 0,
		Unmatched:   unmatched,
		Duplicates:  duplicates,
		Orphans:     orphans,
	}, nil
}
