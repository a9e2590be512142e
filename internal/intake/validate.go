package intake

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/primedclinic/intake-service/internal/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator checks intake forms and contact leads. Struct tags cover the
// required/min/eqfield rules; email and phone carry bespoke rules that the
// tag language does not express cleanly.
type Validator struct {
	structValidator *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{structValidator: v}
}

// ValidateForm evaluates every rule and accumulates field-scoped messages.
// An empty map means the form may be submitted.
func (v *Validator) ValidateForm(form *models.IntakeForm) map[string]string {
	errs := map[string]string{}

	if err := v.structValidator.Struct(form); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			for _, fe := range invalid {
				if msg := formMessage(fe); msg != "" {
					errs[fe.Field()] = msg
				}
			}
		}
	}

	if form.Email != "" && !emailRe.MatchString(form.Email) {
		errs["email"] = "Invalid email address"
	}
	if msg := validatePhone(form.Phone); msg != "" {
		errs["phone"] = msg
	}
	return errs
}

// ValidateLead applies the contact-form rules.
func (v *Validator) ValidateLead(lead *models.Lead) map[string]string {
	errs := map[string]string{}

	if lead.FirstName == "" {
		errs["first_name"] = "First name is required"
	}
	if lead.LastName == "" {
		errs["last_name"] = "Last name is required"
	}
	if lead.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailRe.MatchString(lead.Email) {
		errs["email"] = "Invalid email address"
	}
	if msg := validatePhone(lead.Phone); msg != "" {
		errs["phone"] = msg
	}
	if lead.AssistanceType == "" {
		errs["assistance_type"] = "Please select an option"
	}
	if lead.Message == "" {
		errs["message"] = "Please explain your problem"
	}
	return errs
}

func formMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "firstName":
		return "First name is required"
	case "lastName":
		return "Last name is required"
	case "email":
		return "Email is required"
	case "phone":
		// handled by validatePhone with finer-grained messages
		return ""
	case "address":
		return "Address is required"
	case "streetNumber":
		return "Street number is required"
	case "streetName":
		return "Street name is required"
	case "suburb":
		return "Suburb is required"
	case "state":
		return "State is required"
	case "postcode":
		return "Postcode is required"
	case "password":
		if fe.Tag() == "min" {
			return "Password must be at least 8 characters long"
		}
		return "Password is required"
	case "confirmPassword":
		if fe.Tag() == "eqfield" {
			return "Passwords do not match"
		}
		return "Password is required"
	}
	return ""
}
