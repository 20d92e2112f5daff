package repository

import (
	"github.com/schoolpaydev/schoolpay/app/models"
	"gorm.io/gorm"
)

// studentRepository implements the StudentRepository interface
type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository instance
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.Preload("Wallet").First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) ListByParentID(parentID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.Preload("Wallet").Where("parent_id = ?", parentID).Find(&students).Error
	return students, err
}

func (r *studentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Student{}).Count(&count).Error
	return count, err
}
