package models

import (
	"fmt"
	"time"
)

// Answers is the fixed-shape record of questionnaire answers. Keys are the
// known question identifiers; an unknown key is a programming error (or
// drift between the clinic API and this service) and is rejected on write.
// MedicareExpiry is the one non-string answer.
type Answers struct {
	SexAtBirth                string     `json:"sex_at_birth"`
	PregnancyStatus           string     `json:"pregnancy_status"`
	DateOfBirth               string     `json:"date_of_birth"`
	Height                    string     `json:"height"`
	Weight                    string     `json:"weight"`
	HasMedicalConditions      string     `json:"has_medical_conditions"`
	MedicalConditionsDetails  string     `json:"medical_conditions_details"`
	HasFamilyHistory          string     `json:"has_family_history"`
	FamilyHistoryDetails      string     `json:"family_history_details"`
	TakingMedications         string     `json:"taking_medications"`
	MedicationsDetails        string     `json:"medications_details"`
	HasAllergies              string     `json:"has_allergies"`
	AllergiesDetails          string     `json:"allergies_details"`
	HasAdditionalInfo         string     `json:"has_additional_info"`
	AdditionalInfoDetails     string     `json:"additional_info_details"`
	MedicareNumber            string     `json:"medicare_number"`
	MedicareExpiry            *time.Time `json:"medicare_expiry,omitempty"`
	IndividualReferenceNumber string     `json:"individual_reference_number"`
	ReferralSource            string     `json:"referral_source"`
}

func (a *Answers) stringField(key string) (*string, bool) {
	switch key {
	case KeySexAtBirth:
		return &a.SexAtBirth, true
	case KeyPregnancyStatus:
		return &a.PregnancyStatus, true
	case KeyDateOfBirth:
		return &a.DateOfBirth, true
	case KeyHeight:
		return &a.Height, true
	case KeyWeight:
		return &a.Weight, true
	case KeyHasMedicalConditions:
		return &a.HasMedicalConditions, true
	case KeyMedicalConditionsDetails:
		return &a.MedicalConditionsDetails, true
	case KeyHasFamilyHistory:
		return &a.HasFamilyHistory, true
	case KeyFamilyHistoryDetails:
		return &a.FamilyHistoryDetails, true
	case KeyTakingMedications:
		return &a.TakingMedications, true
	case KeyMedicationsDetails:
		return &a.MedicationsDetails, true
	case KeyHasAllergies:
		return &a.HasAllergies, true
	case KeyAllergiesDetails:
		return &a.AllergiesDetails, true
	case KeyHasAdditionalInfo:
		return &a.HasAdditionalInfo, true
	case KeyAdditionalInfoDetails:
		return &a.AdditionalInfoDetails, true
	case KeyMedicareNumber:
		return &a.MedicareNumber, true
	case KeyIndividualReferenceNumber:
		return &a.IndividualReferenceNumber, true
	case KeyReferralSource:
		return &a.ReferralSource, true
	}
	return nil, false
}

// Set writes a string answer under a known key.
func (a *Answers) Set(key, value string) error {
	field, ok := a.stringField(key)
	if !ok {
		return fmt.Errorf("unknown answer key %q", key)
	}
	*field = value
	return nil
}

// Get returns the string answer under a known key. MedicareExpiry is not
// addressable this way; use the field directly.
func (a *Answers) Get(key string) (string, error) {
	field, ok := a.stringField(key)
	if !ok {
		return "", fmt.Errorf("unknown answer key %q", key)
	}
	return *field, nil
}

// Merge fills in values from other without blanking fields that other left
// empty, matching how a restored snapshot overlays in-memory defaults.
func (a *Answers) Merge(other Answers) {
	for _, key := range KnownKeys {
		if key == KeyMedicareExpiry {
			if other.MedicareExpiry != nil {
				a.MedicareExpiry = other.MedicareExpiry
			}
			continue
		}
		if v, _ := (&other).Get(key); v != "" {
			_ = a.Set(key, v)
		}
	}
}
