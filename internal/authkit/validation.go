package authkit

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignupRequest carries the profile fields required at signup.
type SignupRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber int64  `json:"phone_number" validate:"required"`
}

var signupFieldMessages = map[string]string{
	"username":     "Username is required",
	"password":     "Password is required",
	"first_name":   "First name is required",
	"last_name":    "Last name is required",
	"email":        "Email is required",
	"phone_number": "Phone number is required",
}

var signupValidator = newSignupValidator()

func newSignupValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if tag == "-" {
			return ""
		}
		return tag
	})
	return validate
}

// ValidateSignupRequest checks field presence and shape, aggregating every
// offending field into a single *ValidationError.
func ValidateSignupRequest(request SignupRequest) error {
	validateErr := signupValidator.Struct(trimmedForValidation(request))
	if validateErr == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(validateErr, &fieldErrors) {
		return validateErr
	}
	aggregated := &ValidationError{}
	for _, fieldError := range fieldErrors {
		aggregated.Fields = append(aggregated.Fields, FieldError{
			Field:   fieldError.Field(),
			Message: messageForField(fieldError),
		})
	}
	sort.Slice(aggregated.Fields, func(i, j int) bool {
		return aggregated.Fields[i].Field < aggregated.Fields[j].Field
	})
	return aggregated
}

// trimmedForValidation treats whitespace-only text fields as blank.
func trimmedForValidation(request SignupRequest) SignupRequest {
	request.Username = strings.TrimSpace(request.Username)
	request.Password = strings.TrimSpace(request.Password)
	request.FirstName = strings.TrimSpace(request.FirstName)
	request.LastName = strings.TrimSpace(request.LastName)
	request.Email = strings.TrimSpace(request.Email)
	return request
}

func messageForField(fieldError validator.FieldError) string {
	if fieldError.Tag() == "email" {
		return "Email must be a valid email address"
	}
	if message, ok := signupFieldMessages[fieldError.Field()]; ok {
		return message
	}
	return fieldError.Field() + " is invalid"
}
