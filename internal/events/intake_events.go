package events

import (
	"time"
)

// EventType represents the lifecycle events the intake service emits.
type EventType string

const (
	// Lead events
	EventLeadCreated EventType = "lead.created"

	// Registration events
	EventRegistrationCompleted EventType = "registration.completed"

	// Questionnaire events
	EventQuestionnaireStarted      EventType = "questionnaire.started"
	EventQuestionnaireSaved        EventType = "questionnaire.saved"
	EventQuestionnaireSubmitted    EventType = "questionnaire.submitted"
	EventQuestionnaireDisqualified EventType = "questionnaire.disqualified"
)

// IntakeEvent is the base event structure published to the events topic.
type IntakeEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type LeadCreatedEvent struct {
	LeadID         uint   `json:"lead_id"`
	Email          string `json:"email"`
	AssistanceType string `json:"assistance_type"`
}

type RegistrationCompletedEvent struct {
	Token        string `json:"token"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type QuestionnaireLifecycleEvent struct {
	Token       string `json:"token"`
	TreatmentID string `json:"treatment_id"`
	IsCompleted bool   `json:"is_completed,omitempty"`
}
