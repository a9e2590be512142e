package engine

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/primedclinic/intake-service/internal/models"
)

// Engine drives one questionnaire flow over an immutable question list.
// All state lives on the session; the engine itself is safe to share.
type Engine struct {
	questions []models.Question
}

var (
	// ErrInvalidAnswer is returned when a value fails per-question
	// validation; the field error is recorded on the session.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrAdvanceBlocked is returned when Next is refused by composite-screen
	// validation.
	ErrAdvanceBlocked = errors.New("advance blocked by validation")

	// ErrTerminalState is returned for any mutation attempted after the
	// flow reached a terminal phase.
	ErrTerminalState = errors.New("questionnaire flow already finished")
)

const (
	answerMaxLen      = 1000
	medicareDigits    = 10
	minimumPatientAge = 18
)

var medicareNumberRe = regexp.MustCompile(`^\d{10}$`)

func New(questions []models.Question) *Engine {
	return &Engine{questions: questions}
}

func (e *Engine) Questions() []models.Question {
	return e.questions
}

// Start moves the flow from intro to answering at the first question.
func (e *Engine) Start(s *models.Session) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}
	if s.Phase == models.PhaseIntro {
		s.Phase = models.PhaseAnswering
	}
	return nil
}

// SetAnswer validates and records a string answer for the given key.
// Rejected values leave the stored answer untouched and record a
// field-scoped error on the session.
func (e *Engine) SetAnswer(s *models.Session, key, raw string) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}
	q, ok := e.questionByKey(key)
	if !ok {
		return errors.New("unknown question key " + key)
	}

	if s.Errors == nil {
		s.Errors = map[string]string{}
	}

	switch {
	case key == models.KeyMedicareNumber || key == models.KeyIndividualReferenceNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); raw != "" && err != nil {
			s.Errors[key] = "Please enter only a number"
			return ErrInvalidAnswer
		}
		if key == models.KeyMedicareNumber && len(raw) > medicareDigits {
			s.Errors[key] = "Medicare number should not exceed 10 digits"
			return ErrInvalidAnswer
		}

	case q.Type == models.QuestionTypeMCQ:
		if !containsChoice(q.Choices, raw) {
			s.Errors[key] = "Please select one of the listed options"
			return ErrInvalidAnswer
		}

	case q.Type == models.QuestionTypeDate:
		if err := validateBirthDate(raw); err != nil {
			s.Errors[key] = err.Error()
			return ErrInvalidAnswer
		}

	case q.Type == models.QuestionTypeWeight ||
		strings.Contains(strings.ToLower(q.Question), "height"):
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); raw != "" && err != nil {
			s.Errors[key] = "Please enter only a number"
			return ErrInvalidAnswer
		}

	case q.Type == models.QuestionTypeTextarea:
		if len(raw) > answerMaxLen {
			raw = raw[:answerMaxLen]
		}
	}

	delete(s.Errors, key)
	return s.Answers.Set(key, raw)
}

// SetMedicareExpiry records the expiry date shown inside the composite
// screen. A nil date clears it.
func (e *Engine) SetMedicareExpiry(s *models.Session, date *time.Time) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}
	s.Answers.MedicareExpiry = date
	return nil
}

// SetMedicareDeferred toggles the "I'll have these ready for the
// consultation" checkbox. Checking it blanks all three composite answers
// and their errors.
func (e *Engine) SetMedicareDeferred(s *models.Session, deferred bool) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}
	s.MedicareDeferred = deferred
	if deferred {
		s.Answers.MedicareNumber = ""
		s.Answers.MedicareExpiry = nil
		s.Answers.IndividualReferenceNumber = ""
		delete(s.Errors, models.KeyMedicareNumber)
		delete(s.Errors, models.KeyMedicareExpiry)
		delete(s.Errors, models.KeyIndividualReferenceNumber)
	}
	return nil
}

// SetMedicationsUnknown toggles the "can't remember" checkbox on the
// medications question. It disables the field without clearing content.
func (e *Engine) SetMedicationsUnknown(s *models.Session, unknown bool) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}
	s.MedicationsUnknown = unknown
	return nil
}

// Advance implements the Next transition:
//  1. leaving the Medicare composite without the opt-out validates the
//     Medicare number (10 digits) and IRN;
//  2. leaving the pregnancy question with a "Yes" disqualifies;
//  3. otherwise scan forward to the first navigable question and update
//     the progress percentage.
func (e *Engine) Advance(s *models.Session) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}

	current := e.questionAt(s.Current)
	if current == nil {
		return nil
	}

	if current.Key == models.KeyMedicareNumber && !s.MedicareDeferred {
		if !e.validateMedicareComposite(s) {
			return ErrAdvanceBlocked
		}
	}

	if current.Key == models.KeyPregnancyStatus && s.Answers.PregnancyStatus == "Yes" {
		s.Phase = models.PhaseDisqualified
		return nil
	}

	next := s.Current + 1
	for next < len(e.questions) && !e.Navigable(next, &s.Answers) {
		next++
	}
	if next < len(e.questions) {
		s.Current = next
		s.Progress = e.progressAt(next)
	}
	return nil
}

// Retreat implements the Previous transition: mirror scan backward to the
// first navigable question at or before current-1. Folded indices are
// skipped, so stepping back from the question after the composite screen
// lands on the composite itself.
func (e *Engine) Retreat(s *models.Session) error {
	if s.Phase.Terminal() {
		return ErrTerminalState
	}

	prev := s.Current - 1
	for prev >= 0 && !e.Navigable(prev, &s.Answers) {
		prev--
	}
	if prev >= 0 {
		s.Current = prev
		s.Progress = e.progressAt(prev)
	}
	return nil
}

// AtLastQuestion reports whether the flow sits on the final navigable
// question, the only position from which Submit is reachable.
func (e *Engine) AtLastQuestion(s *models.Session) bool {
	for idx := len(e.questions) - 1; idx >= 0; idx-- {
		if e.Navigable(idx, &s.Answers) {
			return idx == s.Current
		}
	}
	return false
}

func (e *Engine) validateMedicareComposite(s *models.Session) bool {
	if s.Errors == nil {
		s.Errors = map[string]string{}
	}
	ok := true
	number := strings.TrimSpace(s.Answers.MedicareNumber)
	irn := strings.TrimSpace(s.Answers.IndividualReferenceNumber)

	if number == "" {
		s.Errors[models.KeyMedicareNumber] = "Medicare number is required"
		ok = false
	} else if !medicareNumberRe.MatchString(number) {
		s.Errors[models.KeyMedicareNumber] = "Medicare number must be 10 digits"
		ok = false
	}
	if irn == "" {
		s.Errors[models.KeyIndividualReferenceNumber] = "Individual Reference Number is required"
		ok = false
	}
	return ok
}

func (e *Engine) progressAt(idx int) float64 {
	if len(e.questions) == 0 {
		return 0
	}
	return float64(idx+1) / float64(len(e.questions)) * 100
}

func (e *Engine) questionAt(idx int) *models.Question {
	if idx < 0 || idx >= len(e.questions) {
		return nil
	}
	return &e.questions[idx]
}

func (e *Engine) questionByKey(key string) (*models.Question, bool) {
	for i := range e.questions {
		if e.questions[i].Key == key {
			return &e.questions[i], true
		}
	}
	return nil, false
}

func containsChoice(choices []string, value string) bool {
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}

func validateBirthDate(raw string) error {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return errors.New("Please enter a valid date")
	}
	cutoff := time.Now().AddDate(-minimumPatientAge, 0, 0)
	if date.After(cutoff) {
		return errors.New("You must be at least 18 years old")
	}
	return nil
}
