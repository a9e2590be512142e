package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primedclinic/intake-service/internal/models"
)

func yesNo() []string { return []string{"Yes", "No"} }

// medicalQuestions mirrors the ordering the clinic API delivers.
func medicalQuestions() []models.Question {
	return []models.Question{
		{Key: models.KeySexAtBirth, Question: "What was your sex at birth?", Type: models.QuestionTypeMCQ, Choices: []string{"Male", "Female"}},
		{Key: models.KeyPregnancyStatus, Question: "Are you pregnant, breastfeeding or planning to become pregnant?", Type: models.QuestionTypeMCQ, Choices: yesNo()},
		{Key: models.KeyDateOfBirth, Question: "What is your date of birth?", Type: models.QuestionTypeDate},
		{Key: models.KeyHeight, Question: "What is your height in cm?", Type: models.QuestionTypeInput},
		{Key: models.KeyWeight, Question: "What is your weight in kg?", Type: models.QuestionTypeWeight},
		{Key: models.KeyHasMedicalConditions, Question: "Do you have any medical conditions?", Type: models.QuestionTypeMCQ, Choices: yesNo()},
		{Key: models.KeyMedicalConditionsDetails, Question: "Please list your medical conditions.", Type: models.QuestionTypeTextarea},
		{Key: models.KeyHasFamilyHistory, Question: "Any relevant family history?", Type: models.QuestionTypeMCQ, Choices: yesNo()},
		{Key: models.KeyFamilyHistoryDetails, Question: "Please describe the family history.", Type: models.QuestionTypeTextarea},
		{Key: models.KeyTakingMedications, Question: "Are you taking any medications?", Type: models.QuestionTypeMCQ, Choices: yesNo()},
		{Key: models.KeyMedicationsDetails, Question: "Please list your medications.", Type: models.QuestionTypeTextarea, Checkbox: true},
		{Key: models.KeyHasAllergies, Question: "Do you have any allergies?", Type: models.QuestionTypeMCQ, Choices: yesNo()},
		{Key: models.KeyAllergiesDetails, Question: "Please list your allergies.", Type: models.QuestionTypeTextarea},
		{Key: models.KeyHasAdditionalInfo, Question: "Anything else we should know?", Type: models.QuestionTypeMCQ, Choices: yesNo()},
		{Key: models.KeyAdditionalInfoDetails, Question: "Please share the details.", Type: models.QuestionTypeTextarea},
		{Key: models.KeyMedicareNumber, Question: "What is your Medicare number?", Type: models.QuestionTypeInput, Checkbox: true},
		{Key: models.KeyMedicareExpiry, Question: "When does your Medicare card expire?", Type: models.QuestionTypeDate},
		{Key: models.KeyIndividualReferenceNumber, Question: "What is your Individual Reference Number?", Type: models.QuestionTypeInput},
		{Key: models.KeyReferralSource, Question: "How did you hear about us?", Type: models.QuestionTypeMCQ, Choices: []string{"Search", "Friend", "Social media"}},
	}
}

func newSession() *models.Session {
	return &models.Session{Token: "t", Phase: models.PhaseAnswering}
}

func TestAdvanceReachesEndWithoutConditionals(t *testing.T) {
	// A list with no branching rules must walk straight through: N-1
	// advances from index 0 land on N-1 with progress at exactly 100%.
	const n = 7
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			Key:      fmt.Sprintf("q%d", i),
			Question: fmt.Sprintf("Question %d", i),
			Type:     models.QuestionTypeInput,
		}
	}
	e := New(questions)
	s := newSession()

	for i := 0; i < n-1; i++ {
		require.NoError(t, e.Advance(s))
	}
	assert.Equal(t, n-1, s.Current)
	assert.InDelta(t, 100.0, s.Progress, 0.0001)
	assert.True(t, e.AtLastQuestion(s))
}

func TestPregnancyQuestionSkippedForMale(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	require.NoError(t, e.SetAnswer(s, models.KeySexAtBirth, "Male"))
	assert.False(t, e.Visible(1, &s.Answers))

	require.NoError(t, e.Advance(s))
	assert.Equal(t, 2, s.Current, "advance should skip the pregnancy question")

	require.NoError(t, e.SetAnswer(s, models.KeySexAtBirth, "Female"))
	assert.True(t, e.Visible(1, &s.Answers))
}

func TestPregnancyYesDisqualifies(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	require.NoError(t, e.SetAnswer(s, models.KeySexAtBirth, "Female"))
	require.NoError(t, e.Advance(s))
	require.Equal(t, 1, s.Current)

	require.NoError(t, e.SetAnswer(s, models.KeyPregnancyStatus, "Yes"))
	require.NoError(t, e.Advance(s))

	assert.Equal(t, models.PhaseDisqualified, s.Phase)
	// Terminal: nothing moves any more.
	assert.ErrorIs(t, e.Advance(s), ErrTerminalState)
	assert.ErrorIs(t, e.SetAnswer(s, models.KeyDateOfBirth, "1990-01-01"), ErrTerminalState)
}

func TestDisqualificationOnlyFiresAtPregnancyTransition(t *testing.T) {
	// The check is tied to leaving the pregnancy question, not to every
	// subsequent advance.
	e := New(medicalQuestions())
	s := newSession()
	s.Current = 2
	s.Answers.PregnancyStatus = "Yes"

	require.NoError(t, e.Advance(s))
	assert.Equal(t, models.PhaseAnswering, s.Phase)
	assert.Equal(t, 3, s.Current)
}

func TestDetailQuestionsFollowTheirGate(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()
	s.Current = 5

	require.NoError(t, e.SetAnswer(s, models.KeyHasMedicalConditions, "No"))
	require.NoError(t, e.Advance(s))
	assert.Equal(t, 7, s.Current, "details question must be skipped on No")

	s.Current = 5
	require.NoError(t, e.SetAnswer(s, models.KeyHasMedicalConditions, "Yes"))
	require.NoError(t, e.Advance(s))
	assert.Equal(t, 6, s.Current, "details question must be shown on Yes")
}

func TestMedicareCompositeBlocksAdvance(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()
	s.Current = 15

	// Too short: blocked with a field error.
	s.Answers.MedicareNumber = "123"
	err := e.Advance(s)
	assert.ErrorIs(t, err, ErrAdvanceBlocked)
	assert.Equal(t, 15, s.Current)
	assert.Equal(t, "Medicare number must be 10 digits", s.Errors[models.KeyMedicareNumber])
	assert.Equal(t, "Individual Reference Number is required", s.Errors[models.KeyIndividualReferenceNumber])

	// Valid values: advance lands past the folded questions.
	s.Answers.MedicareNumber = "1234567890"
	s.Answers.IndividualReferenceNumber = "X"
	require.NoError(t, e.Advance(s))
	assert.Equal(t, 18, s.Current)
}

func TestMedicareDeferredSkipsValidationAndClears(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()
	s.Current = 15
	s.Answers.MedicareNumber = "123"
	s.Errors = map[string]string{models.KeyMedicareNumber: "Medicare number must be 10 digits"}

	expiry := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.SetMedicareExpiry(s, &expiry))
	require.NoError(t, e.SetMedicareDeferred(s, true))

	assert.Empty(t, s.Answers.MedicareNumber)
	assert.Nil(t, s.Answers.MedicareExpiry)
	assert.Empty(t, s.Answers.IndividualReferenceNumber)
	assert.NotContains(t, s.Errors, models.KeyMedicareNumber)

	require.NoError(t, e.Advance(s))
	assert.Equal(t, 18, s.Current)
}

func TestRetreatSkipsFoldedAndInvisible(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	// Back from the final question lands on the composite screen, not
	// inside the folded range.
	s.Current = 18
	require.NoError(t, e.Retreat(s))
	assert.Equal(t, 15, s.Current)

	// Back over a hidden details question.
	s.Answers.HasAdditionalInfo = "No"
	require.NoError(t, e.Retreat(s))
	assert.Equal(t, 13, s.Current)

	// At the start there is nowhere to go.
	s.Current = 0
	require.NoError(t, e.Retreat(s))
	assert.Equal(t, 0, s.Current)
}

func TestSetAnswerNumericValidation(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	err := e.SetAnswer(s, models.KeyWeight, "abc")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, "Please enter only a number", s.Errors[models.KeyWeight])
	assert.Empty(t, s.Answers.Weight, "rejected value must not be stored")

	require.NoError(t, e.SetAnswer(s, models.KeyWeight, "82.5"))
	assert.Equal(t, "82.5", s.Answers.Weight)
	assert.NotContains(t, s.Errors, models.KeyWeight)

	// "height" in the question text makes a plain input numeric too.
	err = e.SetAnswer(s, models.KeyHeight, "tall")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestSetAnswerMedicareNumberRules(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	err := e.SetAnswer(s, models.KeyMedicareNumber, "12345678901")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, "Medicare number should not exceed 10 digits", s.Errors[models.KeyMedicareNumber])

	err = e.SetAnswer(s, models.KeyMedicareNumber, "12a")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	require.NoError(t, e.SetAnswer(s, models.KeyMedicareNumber, "1234567890"))
	assert.Equal(t, "1234567890", s.Answers.MedicareNumber)
}

func TestSetAnswerMCQMembership(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	err := e.SetAnswer(s, models.KeySexAtBirth, "Other")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	require.NoError(t, e.SetAnswer(s, models.KeySexAtBirth, "Female"))
	assert.Equal(t, "Female", s.Answers.SexAtBirth)
}

func TestSetAnswerDateAgeGate(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()

	tooYoung := time.Now().AddDate(-17, 0, 0).Format("2006-01-02")
	err := e.SetAnswer(s, models.KeyDateOfBirth, tooYoung)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	oldEnough := time.Now().AddDate(-30, 0, 0).Format("2006-01-02")
	require.NoError(t, e.SetAnswer(s, models.KeyDateOfBirth, oldEnough))
}

func TestSetAnswerTextareaCap(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()
	s.Answers.HasMedicalConditions = "Yes"

	long := strings.Repeat("a", 1500)
	require.NoError(t, e.SetAnswer(s, models.KeyMedicalConditionsDetails, long))
	assert.Len(t, s.Answers.MedicalConditionsDetails, 1000)
}

func TestMedicationsUnknownKeepsContent(t *testing.T) {
	e := New(medicalQuestions())
	s := newSession()
	require.NoError(t, e.SetAnswer(s, models.KeyMedicationsDetails, "aspirin"))

	require.NoError(t, e.SetMedicationsUnknown(s, true))
	assert.True(t, s.MedicationsUnknown)
	assert.Equal(t, "aspirin", s.Answers.MedicationsDetails)
}
