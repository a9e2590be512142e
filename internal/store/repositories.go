package store

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/primedclinic/intake-service/internal/models"
)

// LeadRepository persists contact-form enquiries.
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	List(ctx context.Context) ([]models.Lead, error)
}

// SubmissionRepository archives finalized questionnaire payloads.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.IntakeSubmission) error
	List(ctx context.Context) ([]models.IntakeSubmission, error)
}

type gormLeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &gormLeadRepository{db: db}
}

func (r *gormLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *gormLeadRepository) List(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&leads).Error
	return leads, err
}

type gormSubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &gormSubmissionRepository{db: db}
}

func (r *gormSubmissionRepository) Create(ctx context.Context, sub *models.IntakeSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *gormSubmissionRepository) List(ctx context.Context) ([]models.IntakeSubmission, error) {
	var subs []models.IntakeSubmission
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// NewSubmission builds the archive row for a finalized session.
func NewSubmission(session *models.Session, completed bool) (*models.IntakeSubmission, error) {
	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return nil, err
	}
	return &models.IntakeSubmission{
		Token:       session.Token,
		TreatmentID: session.TreatmentID,
		IsCompleted: completed,
		Answers:     datatypes.JSON(answers),
	}, nil
}

// AutoMigrate creates the lead and submission tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Lead{}, &models.IntakeSubmission{})
}
