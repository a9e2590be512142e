package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/upstream"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func yesNoMCQ(key, question string) models.Question {
	return models.Question{Key: key, Question: question, Type: models.QuestionTypeMCQ, Choices: []string{"Yes", "No"}}
}

// questionnairePayload is the question list the fake clinic API serves.
func questionnairePayload() []models.Question {
	return []models.Question{
		{Key: models.KeySexAtBirth, Question: "What was your sex at birth?", Type: models.QuestionTypeMCQ, Choices: []string{"Male", "Female"}},
		yesNoMCQ(models.KeyPregnancyStatus, "Are you pregnant, breastfeeding or planning to become pregnant?"),
		{Key: models.KeyDateOfBirth, Question: "What is your date of birth?", Type: models.QuestionTypeDate},
		{Key: models.KeyHeight, Question: "What is your height in cm?", Type: models.QuestionTypeInput},
		{Key: models.KeyWeight, Question: "What is your weight in kg?", Type: models.QuestionTypeWeight},
		yesNoMCQ(models.KeyHasMedicalConditions, "Do you have any medical conditions?"),
		{Key: models.KeyMedicalConditionsDetails, Question: "Please list your medical conditions.", Type: models.QuestionTypeTextarea},
		yesNoMCQ(models.KeyHasFamilyHistory, "Any relevant family history?"),
		{Key: models.KeyFamilyHistoryDetails, Question: "Please describe the family history.", Type: models.QuestionTypeTextarea},
		yesNoMCQ(models.KeyTakingMedications, "Are you taking any medications?"),
		{Key: models.KeyMedicationsDetails, Question: "Please list your medications.", Type: models.QuestionTypeTextarea, Checkbox: true},
		yesNoMCQ(models.KeyHasAllergies, "Do you have any allergies?"),
		{Key: models.KeyAllergiesDetails, Question: "Please list your allergies.", Type: models.QuestionTypeTextarea},
		yesNoMCQ(models.KeyHasAdditionalInfo, "Anything else we should know?"),
		{Key: models.KeyAdditionalInfoDetails, Question: "Please share the details.", Type: models.QuestionTypeTextarea},
		{Key: models.KeyMedicareNumber, Question: "What is your Medicare number?", Type: models.QuestionTypeInput, Checkbox: true},
		{Key: models.KeyMedicareExpiry, Question: "When does your Medicare card expire?", Type: models.QuestionTypeDate},
		{Key: models.KeyIndividualReferenceNumber, Question: "What is your Individual Reference Number?", Type: models.QuestionTypeInput},
		{Key: models.KeyReferralSource, Question: "How did you hear about us?", Type: models.QuestionTypeMCQ, Choices: []string{"Search", "Friend", "Social media"}},
	}
}

// fakeClinic simulates the clinic API for service tests.
type fakeClinic struct {
	*httptest.Server

	fetchCount     int32
	registerStatus int
	registerBody   string
	completeStatus int

	mu           sync.Mutex
	lastRegister map[string]any
	lastComplete map[string]any
}

func newFakeClinic(t *testing.T) *fakeClinic {
	t.Helper()
	f := &fakeClinic{
		registerStatus: http.StatusOK,
		completeStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/initial-questionnaire", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.fetchCount, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(questionnairePayload())
	})
	mux.HandleFunc("/sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "csrf", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/register/guest", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastRegister = body
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.registerStatus)
		if f.registerBody != "" {
			_, _ = w.Write([]byte(f.registerBody))
		}
	})
	mux.HandleFunc("/register/complete", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastComplete = body
		f.mu.Unlock()
		w.WriteHeader(f.completeStatus)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *fakeClinic) client(t *testing.T) *upstream.Client {
	t.Helper()
	c, err := upstream.NewClient(f.URL)
	require.NoError(t, err)
	return c
}

func (f *fakeClinic) completeBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastComplete
}

func (f *fakeClinic) registerPayload() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRegister
}

// memorySubmissionRepo is an in-memory SubmissionRepository for tests.
type memorySubmissionRepo struct {
	mu   sync.Mutex
	subs []models.IntakeSubmission
}

func (r *memorySubmissionRepo) Create(ctx context.Context, sub *models.IntakeSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *memorySubmissionRepo) List(ctx context.Context) ([]models.IntakeSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.IntakeSubmission(nil), r.subs...), nil
}

// memoryLeadRepo is an in-memory LeadRepository for tests.
type memoryLeadRepo struct {
	mu    sync.Mutex
	leads []models.Lead
}

func (r *memoryLeadRepo) Create(ctx context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead.ID = uint(len(r.leads) + 1)
	r.leads = append(r.leads, *lead)
	return nil
}

func (r *memoryLeadRepo) List(ctx context.Context) ([]models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Lead(nil), r.leads...), nil
}
