package models

import "time"

// WebhookEvent stores every inbound provider notification before any
// processing is attempted, with deduplication metadata for idempotent
// handling. Rows are never deleted; they are the audit source of truth
// for reconciliation.
type WebhookEvent struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EventType         string     `gorm:"type:varchar(100);not null;index:ux_webhook_events_ref_type,unique,priority:2" json:"event_type"`
	ProviderReference string     `gorm:"type:varchar(191);not null;default:'';index:ux_webhook_events_ref_type,unique,priority:1" json:"provider_reference"`
	RawPayload        string     `gorm:"type:longtext;not null" json:"raw_payload"`
	SignatureValid    bool       `gorm:"default:false;index" json:"signature_valid"`
	Processed         bool       `gorm:"default:false;index" json:"processed"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message"`
	ProcessedAt       *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ReceivedAt        time.Time  `gorm:"autoCreateTime;index" json:"received_at"`
}
