package importer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolpaydev/schoolpay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an importer repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListPending(limit int) ([]models.StagingImportRecord, error) {
	var rows []models.StagingImportRecord
	q := r.db.Where("processed = ? AND error_message = ''", false).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *gormRepository) MarkProcessed(id uint, studentUUID, parentUUID string) error {
	now := time.Now()
	return r.db.Model(&models.StagingImportRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed":     true,
		"processed_at":  &now,
		"error_message": "",
		"student_uuid":  studentUUID,
		"parent_uuid":   parentUUID,
	}).Error
}

func (r *gormRepository) MarkError(id uint, msg string) error {
	return r.db.Model(&models.StagingImportRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed":     false,
		"error_message": msg,
	}).Error
}

func (r *gormRepository) ResetErrors() (int64, error) {
	res := r.db.Model(&models.StagingImportRecord{}).
		Where("processed = ? AND error_message <> ''", false).
		Update("error_message", "")
	return res.RowsAffected, res.Error
}

// LookupOrCreateParent resolves a parent by email through the unique
// index on users.email: insert-if-not-exists, then read back. Two rows
// for the same parent can never be created, no matter how the batch is
// interleaved or restarted.
func (r *gormRepository) LookupOrCreateParent(email, name string) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		name = email
	}
	parent := &models.User{
		UUID:   uuid.NewString(),
		Name:   name,
		Email:  email,
		Role:   models.ROLE_PARENT,
		Status: models.STATUS_ACTIVE,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(parent).Error; err != nil {
		return nil, err
	}

	var stored models.User
	if err := r.db.Where("email = ?", email).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// CreateStudentWithWallet creates the student and their wallet in one
// transaction. Every beneficiary has exactly one wallet from onboarding.
func (r *gormRepository) CreateStudentWithWallet(student *models.Student) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(student).Error; err != nil {
			return err
		}
		return tx.Create(&models.Wallet{
			StudentID: student.ID,
			Balance:   0,
			Currency:  "NGN",
		}).Error
	})
}
