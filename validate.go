package adminauth

import (
	stderrors "errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	errors "github.com/goliatone/go-errors"
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

// Validation messages surface verbatim as the wizard's lastError, so the
// wording here is user-facing copy, not diagnostics.
const (
	msgEmailRequired    = "Email is required"
	msgEmailInvalid     = "Enter a valid email address"
	msgPasswordRequired = "Password is required"
	msgPasswordLength   = "Password must be at least 8 characters"
	msgPasswordMismatch = "Passwords do not match"
	msgNameRequired     = "Display name is required"
	msgPhoneInvalid     = "Enter a valid phone number"
	msgOrgRequired      = "Organization name is required"
)

// ValidateStep runs the validator that owns the given step's fields. Rules
// are checked in order and only the first failure is reported; the message
// a user sees when several fields are invalid depends on this ordering.
func ValidateStep(step Step, fields Fields) error {
	switch step {
	case StepAccount:
		return validateAccount(fields)
	case StepProfile:
		return validateProfile(fields)
	case StepOrganization:
		return validateOrganization(fields)
	case StepReview:
		// Review owns no fields; prior steps were validated on the way in.
		return nil
	default:
		return errors.New("unknown wizard step", errors.CategoryBadInput).
			WithMetadata(map[string]any{"step": int(step)})
	}
}

func validateAccount(fields Fields) error {
	if err := validation.Validate(fields.Email,
		validation.Required.Error(msgEmailRequired),
		validation.By(containsAtSign),
	); err != nil {
		return stepError(err)
	}

	if err := validation.Validate(fields.Password,
		validation.Required.Error(msgPasswordRequired),
		validation.Length(8, 0).Error(msgPasswordLength),
	); err != nil {
		return stepError(err)
	}

	if err := validation.Validate(fields.PasswordConfirm,
		validation.By(matchesString(fields.Password, msgPasswordMismatch)),
	); err != nil {
		return stepError(err)
	}

	return nil
}

func validateProfile(fields Fields) error {
	if err := validation.Validate(fields.DisplayName,
		validation.Required.Error(msgNameRequired),
	); err != nil {
		return stepError(err)
	}

	if err := validation.Validate(fields.Phone,
		validation.Match(phonePattern).Error(msgPhoneInvalid),
	); err != nil {
		return stepError(err)
	}

	return nil
}

func validateOrganization(fields Fields) error {
	if err := validation.Validate(fields.OrganizationName,
		validation.Required.Error(msgOrgRequired),
	); err != nil {
		return stepError(err)
	}
	return nil
}

func containsAtSign(value any) error {
	s, _ := value.(string)
	if !strings.Contains(s, "@") {
		return stderrors.New(msgEmailInvalid)
	}
	return nil
}

// matchesString checks that both values match, mirroring the confirm field
// against its source.
func matchesString(other, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != other {
			return stderrors.New(message)
		}
		return nil
	}
}

func stepError(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, messageOf(err)).
		WithTextCode(textCodeStepInvalid).
		WithCode(errors.CodeBadRequest)
}
