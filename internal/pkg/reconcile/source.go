package reconcile

import (
	"gorm.io/gorm"
)

type gormSource struct {
	db *gorm.DB
}

// NewSource creates a reconciliation source backed by GORM. All queries
// are plain reads; the report side never holds locks or mutates state.
func NewSource(db *gorm.DB) Source {
	return &gormSource{db: db}
}

func (s *gormSource) UnmatchedEvents() ([]UnmatchedEvent, error) {
	var rows []UnmatchedEvent
	err := s.db.Raw(`
		SELECT we.id AS event_id, we.event_type, we.provider_reference,
		       we.processed, we.error_message, we.received_at
		FROM webhook_events we
		LEFT JOIN transactions t ON t.provider_reference = we.provider_reference
		WHERE t.id IS NULL
		  AND we.provider_reference NOT LIKE 'hash:%'
		ORDER BY we.received_at ASC`).Scan(&rows).Error
	return rows, err
}

func (s *gormSource) DuplicateReferences() ([]DuplicateGroup, error) {
	var rows []DuplicateGroup
	err := s.db.Raw(`
		SELECT provider_reference, COUNT(*) AS count
		FROM transactions
		WHERE provider_reference IS NOT NULL
		GROUP BY provider_reference
		HAVING COUNT(*) > 1`).Scan(&rows).Error
	return rows, err
}

func (s *gormSource) OrphanTransactions() ([]OrphanTransaction, error) {
	var rows []OrphanTransaction
	err := s.db.Raw(`
		SELECT t.id AS transaction_id, t.reference, t.provider_reference,
		       t.student_id, t.amount, t.created_at
		FROM transactions t
		LEFT JOIN webhook_events we ON we.provider_reference = t.provider_reference
		WHERE t.provider_reference IS NOT NULL
		  AND we.id IS NULL
		ORDER BY t.created_at ASC`).Scan(&rows).Error
	return rows, err
}
