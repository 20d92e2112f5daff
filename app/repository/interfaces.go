package repository

import (
	"github.com/schoolpaydev/schoolpay/app/models"
)

// UserRepository defines the read operations the HTTP surface needs for
// users. Parent accounts are created by the importer, which owns its own
// repository; nothing mutates users through this interface.
type UserRepository interface {
	GetByAPIKeyHash(hash string) (*models.User, error)
	Count() (int64, error)
}

// StudentRepository defines the read operations the HTTP surface needs
// for students. Student creation is owned by the importer.
type StudentRepository interface {
	GetByID(id uint) (*models.Student, error)
	ListByParentID(parentID uint) ([]models.Student, error)
	Count() (int64, error)
}

// WalletRepository defines the interface for wallet read operations used
// by the dashboard side. Balance mutations never go through here; they
// are owned exclusively by the payments apply path.
type WalletRepository interface {
	GetByStudentID(studentID uint) (*models.Wallet, error)
	GetWithTransactions(studentID uint, limit int) (*models.Wallet, error)
}

// WebhookEventRepository defines the interface for the operator-facing
// event log view.
type WebhookEventRepository interface {
	List(processed *bool, limit int) ([]models.WebhookEvent, error)
	GetByID(id uint) (*models.WebhookEvent, error)
	Count() (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	User         UserRepository
	Student      StudentRepository
	Wallet       WalletRepository
	WebhookEvent WebhookEventRepository
}
