package payments

import (
	"fmt"
	"time"

	"github.com/schoolpaydev/schoolpay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payments service.
type Repository interface {
	CreateEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkEventProcessed(id uint, processingError string) error
	ReplaceEventPayload(id uint, rawPayload string) error
	GetEventByID(id uint) (*models.WebhookEvent, error)
	FindActiveAccountByNumber(accountNumber string) (*models.VirtualAccount, error)
	FindActiveAccountByStudentID(studentID uint) (*models.VirtualAccount, error)
	GetWalletByStudentID(studentID uint) (*models.Wallet, error)
	FindTransactionByProviderReference(ref string) (*models.Transaction, error)
	ApplyCredit(txn *models.Transaction, virtualAccountID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_reference"},
			{Name: "event_type"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider_reference = ? AND event_type = ?", event.ProviderReference, event.EventType).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkEventProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed":     true,
		"processed_at":  &now,
		"error_message": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceEventPayload swaps a stored event's payload for an authenticated
// body and resets its processed state so the apply pipeline runs again.
func (r *gormRepository) ReplaceEventPayload(id uint, rawPayload string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"raw_payload":     rawPayload,
		"signature_valid": true,
		"processed":       false,
		"error_message":   "",
		"processed_at":    nil,
	}).Error
}

func (r *gormRepository) GetEventByID(id uint) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) FindActiveAccountByNumber(accountNumber string) (*models.VirtualAccount, error) {
	var account models.VirtualAccount
	err := r.db.Where("account_number = ? AND is_active = ?", accountNumber, true).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) FindActiveAccountByStudentID(studentID uint) (*models.VirtualAccount, error) {
	var account models.VirtualAccount
	err := r.db.Where("student_id = ? AND is_active = ?", studentID, true).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) GetWalletByStudentID(studentID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("student_id = ?", studentID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *gormRepository) FindTransactionByProviderReference(ref string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Where("provider_reference = ?", ref).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ApplyCredit inserts the ledger row and adjusts the wallet balance as one
// database transaction. The OnConflict clause on provider_reference makes
// concurrent duplicate deliveries lose the insert race cleanly instead of
// erroring; the loser gets ErrDuplicateReference and no balance change.
func (r *gormRepository) ApplyCredit(txn *models.Transaction, virtualAccountID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_reference"}},
			DoNothing: true,
		}).Create(txn)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateReference
		}

		walletRes := tx.Model(&models.Wallet{}).
			Where("id = ?", txn.WalletID).
			Updates(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", txn.Amount),
				"updated_at": time.Now(),
			})
		if walletRes.Error != nil {
			return walletRes.Error
		}
		if walletRes.RowsAffected == 0 {
			// Roll the ledger insert back; a credit must never commit
			// without its balance change.
			return fmt.Errorf("wallet %d not found", txn.WalletID)
		}

		// Receiving-account bookkeeping rides in the same unit so the audit
		// totals can never drift from the ledger. Credits without a
		// receiving account pass zero.
		if virtualAccountID == 0 {
			return nil
		}
		now := time.Now()
		return tx.Model(&models.VirtualAccount{}).
			Where("id = ?", virtualAccountID).
			Updates(map[string]interface{}{
				"total_received":  gorm.Expr("total_received + ?", txn.Amount),
				"last_payment_at": &now,
			}).Error
	})
}
