package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/primedclinic/intake-service/internal/engine"
	"github.com/primedclinic/intake-service/internal/events"
	"github.com/primedclinic/intake-service/internal/intake"
	"github.com/primedclinic/intake-service/internal/models"
	"github.com/primedclinic/intake-service/internal/store"
	"github.com/primedclinic/intake-service/internal/upstream"
)

// QuestionnaireService drives the medical questionnaire flow: session
// lifecycle, answer collection, navigation, persistence and finalization.
type QuestionnaireService interface {
	StartSession(ctx context.Context, req *StartSessionRequest) (*models.Session, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Questions(ctx context.Context) ([]models.Question, error)
	CurrentScreen(ctx context.Context, token string) (*ScreenView, error)

	Answer(ctx context.Context, token string, req *AnswerRequest) (*models.Session, error)
	Next(ctx context.Context, token string) (*models.Session, error)
	Previous(ctx context.Context, token string) (*models.Session, error)

	Save(ctx context.Context, token string) (*FinalizeResult, error)
	Submit(ctx context.Context, token string) (*FinalizeResult, error)
}

// StartSessionRequest carries the questionnaire-route query parameters.
// Pre-fill fields are trusted as delivered, except the phone which is
// re-formatted into the canonical shape.
type StartSessionRequest struct {
	Token        string `json:"token"`
	TreatmentID  string `json:"treatment_id" binding:"required"`
	ReferralCode string `json:"referral_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	QuizStatus   string `json:"quiz_status"`
}

// AnswerRequest mutates one answer. Exactly one of Value, Expiry or a
// checkbox toggle applies per call.
type AnswerRequest struct {
	Key                string     `json:"key" binding:"required"`
	Value              *string    `json:"value,omitempty"`
	Expiry             *time.Time `json:"expiry,omitempty"`
	MedicareDeferred   *bool      `json:"medicare_deferred,omitempty"`
	MedicationsUnknown *bool      `json:"medications_unknown,omitempty"`
}

// ScreenView is what the front end renders for the current position. The
// Medicare composite screen folds its two companion questions into Grouped.
type ScreenView struct {
	Index    int               `json:"index"`
	Question models.Question   `json:"question"`
	Grouped  []models.Question `json:"grouped,omitempty"`
	Progress float64           `json:"progress"`
	IsLast   bool              `json:"is_last"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// FinalizeResult reports a terminal transition and the quiz_status value
// the front end writes back into the URL.
type FinalizeResult struct {
	Phase      models.Phase `json:"phase"`
	QuizStatus string       `json:"quiz_status"`
}

type questionnaireService struct {
	clinic    *upstream.Client
	progress  store.ProgressStore
	sessions  store.SessionStore
	subs      store.SubmissionRepository
	publisher events.EventPublisher
	logger    *slog.Logger

	questionsMu sync.Mutex
	questions   []models.Question
	flow        *engine.Engine

	tokenLocks sync.Map
}

func NewQuestionnaireService(
	clinic *upstream.Client,
	progress store.ProgressStore,
	sessions store.SessionStore,
	subs store.SubmissionRepository,
	publisher events.EventPublisher,
	logger *slog.Logger,
) QuestionnaireService {
	return &questionnaireService{
		clinic:    clinic,
		progress:  progress,
		sessions:  sessions,
		subs:      subs,
		publisher: publisher,
		logger:    logger,
	}
}

// ensureEngine fetches the question list on first use and caches it for the
// life of the process. The list is owned by the clinic API and read-only.
func (s *questionnaireService) ensureEngine(ctx context.Context) (*engine.Engine, error) {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	if s.flow != nil {
		return s.flow, nil
	}
	questions, err := s.clinic.FetchQuestions(ctx)
	if err != nil {
		return nil, err
	}
	s.questions = questions
	s.flow = engine.New(questions)
	s.logger.Info("Loaded initial questionnaire", "questions", len(questions))
	return s.flow, nil
}

func (s *questionnaireService) Questions(ctx context.Context) ([]models.Question, error) {
	if _, err := s.ensureEngine(ctx); err != nil {
		return nil, err
	}
	return s.questions, nil
}

func (s *questionnaireService) StartSession(ctx context.Context, req *StartSessionRequest) (*models.Session, error) {
	token := req.Token
	if token == "" {
		token = generateToken()
	}

	// Terminal-state restoration from quiz_status happens before anything
	// else so a reload of a finished flow never fetches questions back into
	// an answering state.
	if phase, ok := models.PhaseForQuizStatus(req.QuizStatus); ok {
		session := &models.Session{
			Token:       token,
			TreatmentID: req.TreatmentID,
			Phase:       phase,
			CreatedAt:   time.Now(),
		}
		if phase == models.PhaseDisqualified {
			s.clearStorage(ctx, token)
		}
		return session, nil
	}

	if existing, err := s.sessions.Load(ctx, token); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if _, err := s.ensureEngine(ctx); err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:          token,
		TreatmentID:    req.TreatmentID,
		Phase:          models.PhaseIntro,
		ReferralCode:   req.ReferralCode,
		ReferralLocked: req.ReferralCode != "",
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          intake.FormatPhone(req.Phone),
		CreatedAt:      time.Now(),
	}

	// Restore persisted progress for this token; expired snapshots are
	// discarded by the store.
	if snap, err := s.progress.Load(ctx, token); err == nil {
		session.Answers.Merge(snap.Answers)
		session.Current = snap.CurrentQuestion
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventQuestionnaireStarted, events.QuestionnaireLifecycleEvent{
		Token:       token,
		TreatmentID: req.TreatmentID,
	})

	return session, nil
}

func (s *questionnaireService) Get(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.sessions.Load(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *questionnaireService) CurrentScreen(ctx context.Context, token string) (*ScreenView, error) {
	flow, err := s.ensureEngine(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	questions := flow.Questions()
	if session.Current < 0 || session.Current >= len(questions) {
		return nil, fmt.Errorf("current question %d out of range", session.Current)
	}

	view := &ScreenView{
		Index:    session.Current,
		Question: questions[session.Current],
		Progress: session.Progress,
		IsLast:   flow.AtLastQuestion(session),
		Errors:   session.Errors,
	}
	// The Medicare screen presents its two companion questions together.
	if questions[session.Current].Key == models.KeyMedicareNumber &&
		session.Current+2 < len(questions) {
		view.Grouped = questions[session.Current+1 : session.Current+3]
	}
	return view, nil
}

func (s *questionnaireService) Answer(ctx context.Context, token string, req *AnswerRequest) (*models.Session, error) {
	flow, err := s.ensureEngine(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Phase.Terminal() {
		return nil, ErrAlreadyFinished
	}
	if err := flow.Start(session); err != nil {
		return nil, err
	}

	switch {
	case req.MedicareDeferred != nil:
		err = flow.SetMedicareDeferred(session, *req.MedicareDeferred)
	case req.MedicationsUnknown != nil:
		err = flow.SetMedicationsUnknown(session, *req.MedicationsUnknown)
	case req.Key == models.KeyMedicareExpiry:
		err = flow.SetMedicareExpiry(session, req.Expiry)
	case req.Value != nil:
		err = flow.SetAnswer(session, req.Key, *req.Value)
	default:
		return nil, &FieldValidationError{Fields: map[string]string{req.Key: "A value is required"}}
	}

	if err != nil && !errors.Is(err, engine.ErrInvalidAnswer) {
		return nil, err
	}
	// Rejected values still persist the session so field errors survive a
	// reload, matching the snapshot-on-every-settle contract.
	if persistErr := s.persist(ctx, session); persistErr != nil {
		return nil, persistErr
	}
	if errors.Is(err, engine.ErrInvalidAnswer) {
		return session, &FieldValidationError{Fields: session.Errors}
	}
	return session, nil
}

func (s *questionnaireService) Next(ctx context.Context, token string) (*models.Session, error) {
	flow, err := s.ensureEngine(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Phase.Terminal() {
		return nil, ErrAlreadyFinished
	}
	if err := flow.Start(session); err != nil {
		return nil, err
	}

	err = flow.Advance(session)
	if errors.Is(err, engine.ErrAdvanceBlocked) {
		if persistErr := s.persist(ctx, session); persistErr != nil {
			return nil, persistErr
		}
		return session, &FieldValidationError{Fields: session.Errors}
	}
	if err != nil {
		return nil, err
	}

	if session.Phase == models.PhaseDisqualified {
		s.clearStorage(ctx, token)
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.EventQuestionnaireDisqualified, events.QuestionnaireLifecycleEvent{
			Token:       token,
			TreatmentID: session.TreatmentID,
		})
		return session, nil
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *questionnaireService) Previous(ctx context.Context, token string) (*models.Session, error) {
	flow, err := s.ensureEngine(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Phase.Terminal() {
		return nil, ErrAlreadyFinished
	}
	if err := flow.Retreat(session); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *questionnaireService) Save(ctx context.Context, token string) (*FinalizeResult, error) {
	return s.finalize(ctx, token, false)
}

func (s *questionnaireService) Submit(ctx context.Context, token string) (*FinalizeResult, error) {
	return s.finalize(ctx, token, true)
}

func (s *questionnaireService) finalize(ctx context.Context, token string, completed bool) (*FinalizeResult, error) {
	unlock, ok := s.lockToken(token)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer unlock()

	flow, err := s.ensureEngine(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Phase.Terminal() {
		return nil, ErrAlreadyFinished
	}
	if !session.Registered {
		return nil, ErrNotRegistered
	}
	if completed && !flow.AtLastQuestion(session) {
		return nil, ErrSubmitNotAtEnd
	}

	payload := upstream.NewCompletion(&session.Answers, session.TreatmentID, completed)
	if err := s.clinic.CompleteRegistration(ctx, payload); err != nil {
		// Progress stays persisted so the error redirect loses nothing.
		s.logger.Error("Questionnaire finalization failed",
			"token", token, "is_completed", completed, "error", err)
		return nil, err
	}

	if sub, err := store.NewSubmission(session, completed); err == nil {
		if err := s.subs.Create(ctx, sub); err != nil {
			s.logger.Error("Failed to archive submission", "token", token, "error", err)
		}
	}

	phase := models.PhaseSaved
	eventType := events.EventQuestionnaireSaved
	if completed {
		phase = models.PhaseSubmitted
		eventType = events.EventQuestionnaireSubmitted
	}
	session.Phase = phase

	s.clearStorage(ctx, token)
	s.publishEvent(ctx, eventType, events.QuestionnaireLifecycleEvent{
		Token:       token,
		TreatmentID: session.TreatmentID,
		IsCompleted: completed,
	})

	status, _ := models.QuizStatusForPhase(phase)
	s.logger.Info("Questionnaire finalized",
		"token", token, "phase", phase, "quiz_status", status)
	return &FinalizeResult{Phase: phase, QuizStatus: status}, nil
}

// persist rewrites the session scratch and the token-scoped snapshot, the
// equivalent of a state settle in the original flow.
func (s *questionnaireService) persist(ctx context.Context, session *models.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return err
	}
	snap := &models.ProgressSnapshot{
		Answers:         session.Answers,
		CurrentQuestion: session.Current,
		Timestamp:       time.Now().UnixMilli(),
	}
	return s.progress.Save(ctx, session.Token, snap)
}

// clearStorage removes the snapshot and the session scratch for a token.
func (s *questionnaireService) clearStorage(ctx context.Context, token string) {
	if err := s.progress.Delete(ctx, token); err != nil {
		s.logger.Warn("Failed to clear progress snapshot", "token", token, "error", err)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		s.logger.Warn("Failed to clear session scratch", "token", token, "error", err)
	}
}

func (s *questionnaireService) lockToken(token string) (func(), bool) {
	if _, loaded := s.tokenLocks.LoadOrStore(token, struct{}{}); loaded {
		return nil, false
	}
	return func() { s.tokenLocks.Delete(token) }, true
}

func (s *questionnaireService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

// generateToken mints the per-visit identifier partitioning persisted
// progress.
func generateToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
