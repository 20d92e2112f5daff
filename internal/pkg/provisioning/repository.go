package provisioning

import (
	"github.com/schoolpaydev/schoolpay/app/models"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a provisioning repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListStudentsWithoutActiveAccount() ([]models.Student, error) {
	var students []models.Student
	err := r.db.Preload("Parent").
		Where("id NOT IN (?)", r.db.Model(&models.VirtualAccount{}).
			Select("student_id").
			Where("is_active = ?", true)).
		Order("id ASC").
		Find(&students).Error
	return students, err
}

// SaveVirtualAccount deactivates any previous account for the student and
// creates the new one in a single transaction, preserving the at most one
// active account per student invariant.
func (r *gormRepository) SaveVirtualAccount(account *models.VirtualAccount) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VirtualAccount{}).
			Where("student_id = ? AND is_active = ?", account.StudentID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(account).Error
	})
}
