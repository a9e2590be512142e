package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IntakeForm carries the identity/address/credential fields collected
// before the medical questionnaire begins. It is submitted once via guest
// registration and never persisted locally.
type IntakeForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Address         string `json:"address" validate:"required"`
	StreetNumber    string `json:"streetNumber" validate:"required"`
	StreetName      string `json:"streetName" validate:"required"`
	Suburb          string `json:"suburb" validate:"required"`
	State           string `json:"state" validate:"required"`
	Postcode        string `json:"postcode" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	ReferralCode    string `json:"referral_code"`
}

// Lead is a contact-form enquiry captured from the marketing site.
type Lead struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	FirstName      string         `json:"first_name" gorm:"not null;size:100" validate:"required"`
	LastName       string         `json:"last_name" gorm:"not null;size:100" validate:"required"`
	Email          string         `json:"email" gorm:"not null;size:255;index" validate:"required"`
	Phone          string         `json:"phone" gorm:"not null;size:20" validate:"required"`
	AssistanceType string         `json:"assistance_type" gorm:"not null;size:100" validate:"required"`
	Message        string         `json:"message" gorm:"type:text" validate:"required,max=1000"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Lead) TableName() string {
	return "leads"
}

// IntakeSubmission archives a finalized (saved or completed) questionnaire
// payload alongside the token that produced it.
type IntakeSubmission struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Token       string         `json:"token" gorm:"not null;size:64;index"`
	TreatmentID string         `json:"treatment_id" gorm:"not null;size:64"`
	IsCompleted bool           `json:"is_completed" gorm:"not null"`
	Answers     datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (IntakeSubmission) TableName() string {
	return "intake_submissions"
}
