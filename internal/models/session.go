package models

import "time"

// Phase is the questionnaire flow state. Submitted, Saved and Disqualified
// are terminal; no transition leaves them within a session.
type Phase string

const (
	PhaseIntro        Phase = "intro"
	PhaseAnswering    Phase = "answering"
	PhaseSubmitted    Phase = "submitted"
	PhaseSaved        Phase = "saved"
	PhaseDisqualified Phase = "disqualified"
)

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool {
	return p == PhaseSubmitted || p == PhaseSaved || p == PhaseDisqualified
}

// QuizStatus values carried on the questionnaire URL so a reload lands on
// the right terminal screen without replaying the flow.
const (
	QuizStatusDone    = "done"
	QuizStatusStopped = "stopped"
	QuizStatusSaved   = "saved"
)

// PhaseForQuizStatus maps a quiz_status query value back to a phase.
// Unrecognized values leave the flow where it was.
func PhaseForQuizStatus(status string) (Phase, bool) {
	switch status {
	case QuizStatusDone:
		return PhaseSubmitted, true
	case QuizStatusStopped:
		return PhaseDisqualified, true
	case QuizStatusSaved:
		return PhaseSaved, true
	}
	return "", false
}

// QuizStatusForPhase is the inverse mapping for terminal phases.
func QuizStatusForPhase(p Phase) (string, bool) {
	switch p {
	case PhaseSubmitted:
		return QuizStatusDone, true
	case PhaseDisqualified:
		return QuizStatusStopped, true
	case PhaseSaved:
		return QuizStatusSaved, true
	}
	return "", false
}

// ProgressSnapshot is the persisted progress record for one token. Exactly
// one snapshot exists per token; snapshots older than the expiry window are
// discarded lazily on read.
type ProgressSnapshot struct {
	Answers         Answers `json:"answers"`
	CurrentQuestion int     `json:"currentQuestion"`
	Timestamp       int64   `json:"timestamp"` // unix millis
}

// SnapshotExpiry is how long a snapshot stays restorable.
const SnapshotExpiry = 24 * time.Hour

// Expired reports whether the snapshot is past the expiry window at now.
func (s *ProgressSnapshot) Expired(now time.Time) bool {
	return now.UnixMilli()-s.Timestamp > SnapshotExpiry.Milliseconds()
}

// Session is the per-visit state of the intake flow, partitioned by token.
type Session struct {
	Token       string  `json:"token"`
	TreatmentID string  `json:"treatment_id"`
	Phase       Phase   `json:"phase"`
	Current     int     `json:"current_question"`
	Progress    float64 `json:"progress"`
	Answers     Answers `json:"answers"`

	// Intake phase
	Registered     bool   `json:"registered"`
	ReferralCode   string `json:"referral_code,omitempty"`
	ReferralLocked bool   `json:"referral_locked,omitempty"`

	// Pre-fill parameters carried on the questionnaire URL.
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	// Checkbox opt-outs
	MedicareDeferred   bool `json:"medicare_deferred"`
	MedicationsUnknown bool `json:"medications_unknown"`

	// Field-scoped validation errors for the current screen.
	Errors map[string]string `json:"errors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
