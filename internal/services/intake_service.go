package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/primedclinic/intake-service/internal/address"
	"github.com/primedclinic/intake-service/internal/events"
	"github.com/primedclinic/intake-service/internal/intake"
	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/store"
	"github.com/primedclinic/intake-service/internal/upstream"
)

// IntakeService collects the identity/address/credential form and performs
// guest registration against the clinic API.
type IntakeService interface {
	SuggestAddresses(ctx context.Context, input string) ([]address.Suggestion, error)
	ResolveAddress(ctx context.Context, form *models.IntakeForm, selected string) error
	Register(ctx context.Context, token string, form *models.IntakeForm) error
}

type intakeService struct {
	clinic    *upstream.Client
	places    *address.Client
	sessions  store.SessionStore
	validator *intake.Validator
	publisher events.EventPublisher
	logger    *slog.Logger

	inFlight sync.Map
}

func NewIntakeService(
	clinic *upstream.Client,
	places *address.Client,
	sessions store.SessionStore,
	validator *intake.Validator,
	publisher events.EventPublisher,
	logger *slog.Logger,
) IntakeService {
	return &intakeService{
		clinic:    clinic,
		places:    places,
		sessions:  sessions,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *intakeService) SuggestAddresses(ctx context.Context, input string) ([]address.Suggestion, error) {
	return s.places.Suggest(ctx, input)
}

// ResolveAddress geocodes a selected suggestion and decomposes the result
// into the structured address fields, revealing the manual-edit sub-fields.
func (s *intakeService) ResolveAddress(ctx context.Context, form *models.IntakeForm, selected string) error {
	components, err := s.places.Geocode(ctx, selected)
	if err != nil {
		return err
	}
	address.Apply(form, selected, components)
	return nil
}

// Register runs the two-step submission protocol: CSRF/session priming,
// then the guest-registration POST. Field collisions reported by the
// clinic API (422) come back as a RegistrationRejectedError; everything
// else fatal to the attempt surfaces as the upstream error.
func (s *intakeService) Register(ctx context.Context, token string, form *models.IntakeForm) error {
	if _, loaded := s.inFlight.LoadOrStore(token, struct{}{}); loaded {
		return ErrOperationInFlight
	}
	defer s.inFlight.Delete(token)

	session, err := s.sessions.Load(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if session.Phase.Terminal() {
		return ErrAlreadyFinished
	}

	// A URL-sourced referral code is locked; whatever the form carries is
	// overridden by the session's value.
	if session.ReferralLocked {
		form.ReferralCode = session.ReferralCode
	}

	if fieldErrs := s.validator.ValidateForm(form); len(fieldErrs) > 0 {
		return &FieldValidationError{Fields: fieldErrs}
	}

	if err := s.clinic.PrimeCSRF(ctx); err != nil {
		return err
	}

	err = s.clinic.RegisterGuest(ctx, upstream.NewGuestRegistration(form))
	if err != nil {
		var ve *upstream.ValidationError
		if errors.As(err, &ve) {
			return &RegistrationRejectedError{Message: registrationMessage(ve)}
		}
		return err
	}

	session.Registered = true
	session.FirstName = form.FirstName
	session.LastName = form.LastName
	session.Email = form.Email
	session.Phone = form.Phone
	session.ReferralCode = form.ReferralCode
	if err := s.sessions.Save(ctx, session); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.NewEvent(events.EventRegistrationCompleted, events.RegistrationCompletedEvent{
			Token:        token,
			Email:        form.Email,
			ReferralCode: form.ReferralCode,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish registration event", "token", token, "error", err)
		}
	}

	s.logger.Info("Guest registration completed", "token", token)
	return nil
}

// registrationMessage applies the collision rules: email and phone together
// collapse into one combined message, an email collision alone invites a
// login, otherwise the first relevant field message wins.
func registrationMessage(ve *upstream.ValidationError) string {
	emailErr := ve.First("email")
	phoneErr := ve.First("phone")
	referralErr := ve.First("referral_code")

	switch {
	case emailErr != "" && phoneErr != "":
		return "Email and phone are already used."
	case emailErr != "":
		return emailErr + " Login to your account instead."
	case phoneErr != "":
		return phoneErr
	case referralErr != "":
		return referralErr
	}
	return "An error occurred."
}
