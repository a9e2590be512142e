package models

// QuestionType mirrors the type discriminator delivered by the clinic API.
type QuestionType string

const (
	QuestionTypeMCQ      QuestionType = "MCQs"
	QuestionTypeDate     QuestionType = "date_input"
	QuestionTypeInput    QuestionType = "input"
	QuestionTypeWeight   QuestionType = "weight_input"
	QuestionTypeTextarea QuestionType = "Textarea"
)

// Question is a single entry of the initial questionnaire. The list is
// fetched once from the clinic API and treated as read-only; array position
// is the canonical question index.
type Question struct {
	Key         string       `json:"key"`
	Question    string       `json:"question"`
	Type        QuestionType `json:"type"`
	Choices     []string     `json:"choices,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Description string       `json:"description,omitempty"`
	Checkbox    bool         `json:"checkbox,omitempty"`
	Image       bool         `json:"image,omitempty"`
}

// Known answer keys. The clinic API owns the question list, but the
// branching logic and the completion payload are defined over these keys,
// so they form the contract between the two systems.
const (
	KeySexAtBirth                = "sex_at_birth"
	KeyPregnancyStatus           = "pregnancy_status"
	KeyDateOfBirth               = "date_of_birth"
	KeyHeight                    = "height"
	KeyWeight                    = "weight"
	KeyHasMedicalConditions      = "has_medical_conditions"
	KeyMedicalConditionsDetails  = "medical_conditions_details"
	KeyHasFamilyHistory          = "has_family_history"
	KeyFamilyHistoryDetails      = "family_history_details"
	KeyTakingMedications         = "taking_medications"
	KeyMedicationsDetails        = "medications_details"
	KeyHasAllergies              = "has_allergies"
	KeyAllergiesDetails          = "allergies_details"
	KeyHasAdditionalInfo         = "has_additional_info"
	KeyAdditionalInfoDetails     = "additional_info_details"
	KeyMedicareNumber            = "medicare_number"
	KeyMedicareExpiry            = "medicare_expiry"
	KeyIndividualReferenceNumber = "individual_reference_number"
	KeyReferralSource            = "referral_source"
)

// KnownKeys is the expected question ordering. The engine keys its branching
// rules off question keys, but the clinic API must keep delivering questions
// in this order for the composite-screen folding to line up.
var KnownKeys = []string{
	KeySexAtBirth,
	KeyPregnancyStatus,
	KeyDateOfBirth,
	KeyHeight,
	KeyWeight,
	KeyHasMedicalConditions,
	KeyMedicalConditionsDetails,
	KeyHasFamilyHistory,
	KeyFamilyHistoryDetails,
	KeyTakingMedications,
	KeyMedicationsDetails,
	KeyHasAllergies,
	KeyAllergiesDetails,
	KeyHasAdditionalInfo,
	KeyAdditionalInfoDetails,
	KeyMedicareNumber,
	KeyMedicareExpiry,
	KeyIndividualReferenceNumber,
	KeyReferralSource,
}
