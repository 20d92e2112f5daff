package repository

import (
	"github.com/schoolpaydev/schoolpay/app/models"
	"gorm.io/gorm"
)

// walletRepository implements the WalletRepository interface
type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository instance
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetByStudentID(studentID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Where("student_id = ?", studentID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetWithTransactions loads a wallet with its most recent transactions.
// Dashboard reads tolerate eventual consistency; no locks are taken here.
func (r *walletRepository) GetWithTransactions(studentID uint, limit int) (*models.Wallet, error) {
	if limit <= 0 {
		limit = 25
	}
	var wallet models.Wallet
	err := r.db.Preload("Transactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Limit(limit)
	}).Where("student_id = ?", studentID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
