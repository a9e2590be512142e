package services

import (
	"context"
	"log/slog"

	"github.com/primedclinic/intake-service/internal/events"
	"github.com/primedclinic/intake-service/internal/intake"
	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/store"
)

// ContactService captures marketing-site enquiries as leads.
type ContactService interface {
	SubmitLead(ctx context.Context, lead *models.Lead) error
}

type contactService struct {
	leads     store.LeadRepository
	validator *intake.Validator
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewContactService(
	leads store.LeadRepository,
	validator *intake.Validator,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ContactService {
	return &contactService{
		leads:     leads,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *contactService) SubmitLead(ctx context.Context, lead *models.Lead) error {
	if fieldErrs := s.validator.ValidateLead(lead); len(fieldErrs) > 0 {
		return &FieldValidationError{Fields: fieldErrs}
	}
	lead.Phone = intake.NormalizePhoneInput(lead.Phone)

	if err := s.leads.Create(ctx, lead); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.NewEvent(events.EventLeadCreated, events.LeadCreatedEvent{
			LeadID:         lead.ID,
			Email:          lead.Email,
			AssistanceType: lead.AssistanceType,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish lead event", "lead_id", lead.ID, "error", err)
		}
	}

	s.logger.Info("Contact request submitted", "lead_id", lead.ID)
	return nil
}
