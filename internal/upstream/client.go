// Package upstream talks to the clinic REST API: question list, session
// priming, guest registration and questionnaire completion.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/primedclinic/intake-service/internal/models"
)

var (
	// ErrUpstream covers transport failures and non-422 error statuses.
	// Callers treat it as fatal to the current operation.
	ErrUpstream = errors.New("clinic api request failed")
)

// ValidationError carries the field errors of an HTTP 422 response.
type ValidationError struct {
	Errors map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("clinic api rejected request: %d field errors", len(e.Errors))
}

// First returns the leading message for a field, or empty.
func (e *ValidationError) First(field string) string {
	if msgs := e.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client with a cookie jar so the CSRF priming request
// can establish the session cookies the registration POST rides on.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// FetchQuestions loads the initial questionnaire. The list is ordered; the
// caller treats it as read-only.
func (c *Client) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/initial-questionnaire", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode)
	}

	var questions []models.Question
	if err := json.NewDecoder(res.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return questions, nil
}

// PrimeCSRF performs the session/CSRF priming request. The interesting
// output is the cookies, not the body.
func (c *Client) PrimeCSRF(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sanctum/csrf-cookie", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode)
	}
	return nil
}

// GuestRegistration is the body of POST /register/guest. The mixed naming
// is the upstream contract, not a typo.
type GuestRegistration struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	StreetNumber string `json:"streetNumber"`
	StreetName   string `json:"streetName"`
	Suburb       string `json:"suburb"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	ReferralCode string `json:"referral_code"`
}

// NewGuestRegistration maps an intake form onto the wire shape.
func NewGuestRegistration(form *models.IntakeForm) GuestRegistration {
	return GuestRegistration{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Password:     form.Password,
		Phone:        form.Phone,
		Address:      form.Address,
		StreetNumber: form.StreetNumber,
		StreetName:   form.StreetName,
		Suburb:       form.Suburb,
		State:        form.State,
		Postcode:     form.Postcode,
		ReferralCode: form.ReferralCode,
	}
}

// RegisterGuest creates the guest patient account. A 422 is returned as a
// *ValidationError so the caller can surface field messages; any other
// failure is ErrUpstream.
func (c *Client) RegisterGuest(ctx context.Context, reg GuestRegistration) error {
	res, err := c.postJSON(ctx, "/register/guest", reg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode < 300:
		return nil
	case res.StatusCode == http.StatusUnprocessableEntity:
		var ve ValidationError
		if err := json.NewDecoder(res.Body).Decode(&ve); err != nil {
			ve.Errors = nil
		}
		if ve.Errors == nil {
			ve.Errors = map[string][]string{}
		}
		return &ve
	default:
		return fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode)
	}
}

// Completion is the body of POST /register/complete; shared between save
// and submit, differing only in IsCompleted and the expiry serialization.
type Completion struct {
	UserID                    *string `json:"user_id"`
	SexAtBirth                string  `json:"sex_at_birth"`
	PregnancyStatus           string  `json:"pregnancy_status"`
	DateOfBirth               string  `json:"date_of_birth"`
	Height                    string  `json:"height"`
	Weight                    string  `json:"weight"`
	HasMedicalConditions      string  `json:"has_medical_conditions"`
	MedicalConditionsDetails  string  `json:"medical_conditions_details"`
	HasFamilyHistory          string  `json:"has_family_history"`
	FamilyHistoryDetails      string  `json:"family_history_details"`
	TakingMedications         string  `json:"taking_medications"`
	MedicationsDetails        string  `json:"medications_details"`
	HasAllergies              string  `json:"has_allergies"`
	AllergiesDetails          string  `json:"allergies_details"`
	HasAdditionalInfo         string  `json:"has_additional_info"`
	AdditionalInfoDetails     string  `json:"additional_info_details"`
	MedicareNumber            string  `json:"medicare_number"`
	MedicareExpiry            *string `json:"medicare_expiry"`
	IndividualReferenceNumber string  `json:"individual_reference_number"`
	ReferralSource            string  `json:"referral_source"`
	TreatmentID               string  `json:"treatment_id"`
	IsCompleted               bool    `json:"is_completed"`
}

// NewCompletion maps the answers onto the wire shape. On submit the expiry
// serializes as YYYY-MM, on save as YYYY-MM-01.
func NewCompletion(a *models.Answers, treatmentID string, completed bool) Completion {
	var expiry *string
	if a.MedicareExpiry != nil {
		v := a.MedicareExpiry.Format("2006-01")
		if !completed {
			v += "-01"
		}
		expiry = &v
	}
	return Completion{
		SexAtBirth:                a.SexAtBirth,
		PregnancyStatus:           a.PregnancyStatus,
		DateOfBirth:               a.DateOfBirth,
		Height:                    a.Height,
		Weight:                    a.Weight,
		HasMedicalConditions:      a.HasMedicalConditions,
		MedicalConditionsDetails:  a.MedicalConditionsDetails,
		HasFamilyHistory:          a.HasFamilyHistory,
		FamilyHistoryDetails:      a.FamilyHistoryDetails,
		TakingMedications:         a.TakingMedications,
		MedicationsDetails:        a.MedicationsDetails,
		HasAllergies:              a.HasAllergies,
		AllergiesDetails:          a.AllergiesDetails,
		HasAdditionalInfo:         a.HasAdditionalInfo,
		AdditionalInfoDetails:     a.AdditionalInfoDetails,
		MedicareNumber:            a.MedicareNumber,
		MedicareExpiry:            expiry,
		IndividualReferenceNumber: a.IndividualReferenceNumber,
		ReferralSource:            a.ReferralSource,
		TreatmentID:               treatmentID,
		IsCompleted:               completed,
	}
}

// CompleteRegistration posts the questionnaire payload.
func (c *Client) CompleteRegistration(ctx context.Context, payload Completion) error {
	res, err := c.postJSON(ctx, "/register/complete", payload)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.csrfToken(); token != "" {
		req.Header.Set("X-XSRF-TOKEN", token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return res, nil
}

// csrfToken reads the XSRF-TOKEN cookie primed by PrimeCSRF.
func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == "XSRF-TOKEN" {
			return cookie.Value
		}
	}
	return ""
}
