package models

import "time"

const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusReversed  = "reversed"
)

const (
	TransactionCategoryFeePayment = "fee_payment"
	TransactionCategoryTopup      = "wallet_topup"
	TransactionCategorySimulated  = "simulated_payment"
)

// Transaction is the ledger row behind every wallet balance change. The
// unique index on ProviderReference is the idempotency guard for webhook
// deliveries: concurrent inserts for the same reference are resolved by
// the database, not by application locks.
type Transaction struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	StudentID         uint       `gorm:"not null;index" json:"student_id"`
	WalletID          uint       `gorm:"not null;index" json:"wallet_id"`
	Type              string     `gorm:"type:varchar(10);not null" json:"type"`
	Amount            int64      `gorm:"not null" json:"amount"`
	Category          string     `gorm:"type:varchar(50);not null" json:"category"`
	Description       string     `gorm:"type:varchar(255)" json:"description"`
	Reference         string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`
	ProviderReference *string    `gorm:"type:varchar(191);default:null;uniqueIndex" json:"provider_reference,omitempty"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Channel           string     `gorm:"type:varchar(50)" json:"channel"`
	PayloadSnapshot   string     `gorm:"type:longtext" json:"-"`
	Metadata          string     `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ReversedAt        *time.Time `gorm:"type:timestamp;default:null" json:"reversed_at,omitempty"`
}
