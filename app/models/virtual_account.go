package models

import "time"

// VirtualAccount is a provider-issued dedicated bank account routing
// inbound transfers to one student. At most one active account per
// student; stale accounts are deactivated before a replacement is
// created and are never valid payment destinations.
type VirtualAccount struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	StudentID            uint       `gorm:"not null;index:idx_virtual_accounts_student_active,priority:1" json:"student_id"`
	ProviderCustomerCode string     `gorm:"type:varchar(100);not null" json:"provider_customer_code"`
	AccountNumber        string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"account_number"`
	AccountName          string     `gorm:"type:varchar(150)" json:"account_name"`
	BankName             string     `gorm:"type:varchar(100)" json:"bank_name"`
	BankCode             string     `gorm:"type:varchar(10)" json:"bank_code"`
	IsActive             bool       `gorm:"default:true;index:idx_virtual_accounts_student_active,priority:2" json:"is_active"`
	TotalReceived        int64      `gorm:"not null;default:0" json:"total_received"`
	LastPaymentAt        *time.Time `gorm:"type:timestamp;default:null" json:"last_payment_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
