package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/schoolpaydev/schoolpay/app/models"
)

// Repository provides DB operations used by the bulk importer.
type Repository interface {
	ListPending(limit int) ([]models.StagingImportRecord, error)
	MarkProcessed(id uint, studentUUID, parentUUID string) error
	MarkError(id uint, msg string) error
	ResetErrors() (int64, error)
	LookupOrCreateParent(email, name string) (*models.User, error)
	CreateStudentWithWallet(student *models.Student) error
}

// Result summarizes one import run.
type Result struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Importer turns staged onboarding rows into parent users, students and
// wallets. Parent identity is resolved through the database's uniqueness
// constraint on email rather than any in-process cache, so a run can be
// interrupted and resumed without duplicating parents.
type Importer struct {
	repo Repository

	BatchLimit int
}

func NewImporter(repo Repository) *Importer {
	return &Importer{repo: repo, BatchLimit: 500}
}

// ProcessPending handles every pending staging row. Each row transitions
// independently to processed or error; failures never stop the batch.
func (im *Importer) ProcessPending(ctx context.Context) (*Result, error) {
	rows, err := im.repo.ListPending(im.BatchLimit)
	if err != nil {
		return nil, err
	}

	result := &Result{Total: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		studentUUID, parentUUID, err := im.processRow(&row)
		if err != nil {
			log.Warnf("[Import] row %d failed: %v", row.ID, err)
			if markErr := im.repo.MarkError(row.ID, err.Error()); markErr != nil {
				return result, markErr
			}
			result.Failed++
			continue
		}
		if err := im.repo.MarkProcessed(row.ID, studentUUID, parentUUID); err != nil {
			return result, err
		}
		result.Processed++
	}

	log.Infof("[Import] run finished: total=%d processed=%d failed=%d", result.Total, result.Processed, result.Failed)
	return result, nil
}

func (im *Importer) processRow(row *models.StagingImportRecord) (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(row.ParentEmail))
	if email == "" || !strings.Contains(email, "@") {
		return "", "", fmt.Errorf("invalid parent email %q", row.ParentEmail)
	}
	if strings.TrimSpace(row.StudentName) == "" {
		return "", "", fmt.Errorf("student name is required")
	}
	if strings.TrimSpace(row.RegistrationNumber) == "" {
		return "", "", fmt.Errorf("registration number is required")
	}

	parent, err := im.repo.LookupOrCreateParent(email, row.ParentName)
	if err != nil {
		return "", "", fmt.Errorf("lookup or create parent: %w", err)
	}

	student := &models.Student{
		UUID:               uuid.NewString(),
		Name:               strings.TrimSpace(row.StudentName),
		Class:              strings.TrimSpace(row.Class),
		RegistrationNumber: strings.TrimSpace(row.RegistrationNumber),
		ParentID:           &parent.ID,
		IsBoarding:         row.IsBoarding,
		IsMember:           row.IsMember,
		DeclaredDebt:       row.DeclaredDebt,
	}
	if err := im.repo.CreateStudentWithWallet(student); err != nil {
		return "", "", fmt.Errorf("create student: %w", err)
	}

	return student.UUID, parent.UUID, nil
}

// ResetErrors flips error rows back to pending so a later run retries
// them.
func (im *Importer) ResetErrors(ctx context.Context) (int64, error) {
	_ = ctx
	return im.repo.ResetErrors()
}
