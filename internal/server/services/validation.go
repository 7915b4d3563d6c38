package services

import (
	"errors"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var usernameFormat = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// passwordStrength requires at least 8 characters containing at least one
// letter and one digit.
var passwordStrength = validation.By(func(value any) error {
	s, _ := value.(string)
	if len(s) < 8 {
		return errors.New("must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("must contain at least one letter and one digit")
	}
	return nil
})

// validateRegistration checks the per-field format rules of a registration
// request. All failures are batched into one validation.Errors map; the
// uniqueness checks are layered on top by the caller.
func validateRegistration(in RegisterInput) validation.Errors {
	errs := validation.Errors{
		"username": validation.Validate(in.Username,
			validation.Required,
			validation.Length(3, 150),
			validation.Match(usernameFormat).Error("may only contain letters, digits and underscores"),
		),
		"email": validation.Validate(in.Email,
			validation.Required,
			is.Email,
		),
		"password": validation.Validate(in.Password,
			validation.Required,
			passwordStrength,
		),
	}
	if in.Password != in.PasswordConfirm {
		errs["password_confirm"] = errors.New("passwords do not match")
	}
	return errs
}

// validateNewPassword checks the new-password half of a password change.
func validateNewPassword(newPassword, confirm string) validation.Errors {
	errs := validation.Errors{
		"new_password": validation.Validate(newPassword,
			validation.Required,
			passwordStrength,
		),
	}
	if newPassword != confirm {
		errs["new_password_confirm"] = errors.New("passwords do not match")
	}
	return errs
}

// validateProfileUpdate checks the optional profile attribute formats.
func validateProfileUpdate(in UpdateProfileInput) validation.Errors {
	errs := validation.Errors{}
	if in.Website != nil {
		errs["website"] = validation.Validate(*in.Website, is.URL)
	}
	if in.Gender != nil && *in.Gender != "" {
		errs["gender"] = validation.Validate(*in.Gender, validation.In("M", "F", "O"))
	}
	if in.Phone != nil && *in.Phone != "" {
		errs["phone"] = validation.Validate(*in.Phone,
			validation.Match(regexp.MustCompile(`^\+?[0-9 ()-]{5,20}$`)).Error("must be a valid phone number"))
	}
	return errs
}
