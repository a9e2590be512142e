package engine

import (
	"github.com/primedclinic/intake-service/internal/models"
)

// Branching rules are keyed by the question's own key rather than its array
// position, so a reordered delivery fails loudly (unknown key) instead of
// silently branching on the wrong question. A question with no rule is
// always visible.
var visibilityRules = map[string]func(a *models.Answers) bool{
	models.KeyPregnancyStatus: func(a *models.Answers) bool {
		return a.SexAtBirth != "Male"
	},
	models.KeyMedicalConditionsDetails: func(a *models.Answers) bool {
		return a.HasMedicalConditions == "Yes"
	},
	models.KeyFamilyHistoryDetails: func(a *models.Answers) bool {
		return a.HasFamilyHistory == "Yes"
	},
	models.KeyMedicationsDetails: func(a *models.Answers) bool {
		return a.TakingMedications == "Yes"
	},
	models.KeyAllergiesDetails: func(a *models.Answers) bool {
		return a.HasAllergies == "Yes"
	},
	models.KeyAdditionalInfoDetails: func(a *models.Answers) bool {
		return a.HasAdditionalInfo == "Yes"
	},
}

// foldedKeys are rendered inside the Medicare composite screen and never
// stand alone as navigation targets.
var foldedKeys = map[string]bool{
	models.KeyMedicareExpiry:            true,
	models.KeyIndividualReferenceNumber: true,
}

// Visible reports whether the question at idx should be shown given the
// accumulated answers.
func (e *Engine) Visible(idx int, a *models.Answers) bool {
	if idx < 0 || idx >= len(e.questions) {
		return false
	}
	rule, ok := visibilityRules[e.questions[idx].Key]
	if !ok {
		return true
	}
	return rule(a)
}

// Navigable reports whether idx is a legal landing position for the current
// question index: visible and not folded into the composite screen.
func (e *Engine) Navigable(idx int, a *models.Answers) bool {
	if !e.Visible(idx, a) {
		return false
	}
	return !foldedKeys[e.questions[idx].Key]
}
