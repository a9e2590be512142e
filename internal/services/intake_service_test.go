package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primedclinic/intake-service/internal/address"
	"github.com/primedclinic/intake-service/internal/events"
	"github.com/primedclinic/intake-service/internal/intake"
	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/store"
)

type intakeFixture struct {
	service   IntakeService
	clinic    *fakeClinic
	sessions  *store.MemorySessionStore
	publisher *events.MockEventPublisher
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()
	clinic := newFakeClinic(t)
	sessions := store.NewMemorySessionStore()
	publisher := events.NewMockEventPublisher(testLogger())

	service := NewIntakeService(
		clinic.client(t),
		address.NewClient(clinic.URL, "test-key"),
		sessions,
		intake.NewValidator(),
		publisher,
		testLogger(),
	)
	return &intakeFixture{service: service, clinic: clinic, sessions: sessions, publisher: publisher}
}

func (f *intakeFixture) saveSession(t *testing.T, session *models.Session) {
	t.Helper()
	require.NoError(t, f.sessions.Save(context.Background(), session))
}

func completeIntakeForm() *models.IntakeForm {
	return &models.IntakeForm{
		FirstName:       "Jamie",
		LastName:        "Nguyen",
		Email:           "jamie@example.com",
		Phone:           "+61 412 345 678",
		Address:         "1 Example St, Sydney NSW 2000",
		StreetNumber:    "1",
		StreetName:      "Example St",
		Suburb:          "Sydney",
		State:           "NSW",
		Postcode:        "2000",
		Password:        "secret-password",
		ConfirmPassword: "secret-password",
	}
}

func TestRegisterUnknownToken(t *testing.T) {
	f := newIntakeFixture(t)
	err := f.service.Register(context.Background(), "missing", completeIntakeForm())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegisterValidationFailure(t *testing.T) {
	f := newIntakeFixture(t)
	f.saveSession(t, &models.Session{Token: "tok", Phase: models.PhaseAnswering})

	form := completeIntakeForm()
	form.Email = ""
	form.Phone = "+61 "

	err := f.service.Register(context.Background(), "tok", form)
	var fieldErr *FieldValidationError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "Email is required", fieldErr.Fields["email"])
	assert.Equal(t, "Phone number is required", fieldErr.Fields["phone"])
	assert.Nil(t, f.clinic.registerPayload(), "invalid forms never reach the clinic API")
}

func TestRegisterSuccess(t *testing.T) {
	f := newIntakeFixture(t)
	f.saveSession(t, &models.Session{Token: "tok", Phase: models.PhaseAnswering})

	require.NoError(t, f.service.Register(context.Background(), "tok", completeIntakeForm()))

	session, err := f.sessions.Load(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, session.Registered)
	assert.Equal(t, "jamie@example.com", session.Email)

	payload := f.clinic.registerPayload()
	require.NotNil(t, payload)
	assert.Equal(t, "Jamie", payload["first_name"])
	assert.Equal(t, "1", payload["streetNumber"])

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventRegistrationCompleted, f.publisher.Events[0].Type)
}

func TestRegisterLockedReferralOverridesForm(t *testing.T) {
	f := newIntakeFixture(t)
	f.saveSession(t, &models.Session{
		Token:          "tok",
		Phase:          models.PhaseAnswering,
		ReferralCode:   "URL-CODE",
		ReferralLocked: true,
	})

	form := completeIntakeForm()
	form.ReferralCode = "TYPED-CODE"
	require.NoError(t, f.service.Register(context.Background(), "tok", form))

	payload := f.clinic.registerPayload()
	require.NotNil(t, payload)
	assert.Equal(t, "URL-CODE", payload["referral_code"])
}

func TestRegisterCollisionMessages(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			"email and phone collide",
			`{"errors":{"email":["The email has already been taken."],"phone":["The phone has already been taken."]}}`,
			"Email and phone are already used.",
		},
		{
			"email alone invites login",
			`{"errors":{"email":["The email has already been taken."]}}`,
			"The email has already been taken. Login to your account instead.",
		},
		{
			"phone alone passes through",
			`{"errors":{"phone":["The phone has already been taken."]}}`,
			"The phone has already been taken.",
		},
		{
			"referral code error passes through",
			`{"errors":{"referral_code":["The selected referral code is invalid."]}}`,
			"The selected referral code is invalid.",
		},
		{
			"empty errors fall back to generic",
			`{"errors":{}}`,
			"An error occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntakeFixture(t)
			f.clinic.registerStatus = http.StatusUnprocessableEntity
			f.clinic.registerBody = tt.body
			f.saveSession(t, &models.Session{Token: "tok", Phase: models.PhaseAnswering})

			err := f.service.Register(context.Background(), "tok", completeIntakeForm())
			var rejected *RegistrationRejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.expected, rejected.Message)

			// The form stays editable: registration did not stick.
			session, loadErr := f.sessions.Load(context.Background(), "tok")
			require.NoError(t, loadErr)
			assert.False(t, session.Registered)
		})
	}
}

func TestRegisterRejectedAfterTerminal(t *testing.T) {
	f := newIntakeFixture(t)
	f.saveSession(t, &models.Session{Token: "tok", Phase: models.PhaseSubmitted})

	err := f.service.Register(context.Background(), "tok", completeIntakeForm())
	assert.ErrorIs(t, err, ErrAlreadyFinished)
}
