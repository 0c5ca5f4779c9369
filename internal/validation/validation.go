package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Feeling bounds for reflections
const (
	MinFeeling = 1
	MaxFeeling = 5
)

// BirthdateLayout is the accepted birthdate format
const BirthdateLayout = "2006-01-02"

// Upload content types mapped to the file extension used for their object keys
var allowedFileTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks if a person or family name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if len(name) > 100 {
		return ValidationError{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// ValidateRequired rejects blank values
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateFeeling checks a reflection rating is within 1-5
func ValidateFeeling(feeling int) error {
	if feeling < MinFeeling || feeling > MaxFeeling {
		return ValidationError{Field: "feeling", Message: fmt.Sprintf("feeling must be between %d and %d", MinFeeling, MaxFeeling)}
	}
	return nil
}

// NormalizeAgeRange rewrites an age range into the stored form: en and em
// dashes become "-", whitespace and a trailing "years" are dropped.
// "5–8 years" becomes "5-8".
func NormalizeAgeRange(ageRange string) string {
	r := strings.ToLower(strings.TrimSpace(ageRange))
	r = strings.NewReplacer("–", "-", "—", "-").Replace(r)
	r = strings.TrimSuffix(r, "years")
	r = strings.TrimSuffix(r, "year")
	return strings.Join(strings.Fields(r), "")
}

// AgeRangeFromBirthdate buckets a YYYY-MM-DD birthdate into an age range as of now
func AgeRangeFromBirthdate(birthdate string, now time.Time) (string, error) {
	born, err := time.Parse(BirthdateLayout, strings.TrimSpace(birthdate))
	if err != nil {
		return "", ValidationError{Field: "birthdate", Message: "birthdate must be YYYY-MM-DD"}
	}
	if born.After(now) {
		return "", ValidationError{Field: "birthdate", Message: "birthdate cannot be in the future"}
	}

	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}

	switch {
	case age < 2:
		return "0-2", nil
	case age < 5:
		return "2-5", nil
	case age < 8:
		return "5-8", nil
	case age < 12:
		return "8-12", nil
	default:
		return "12+", nil
	}
}

// FileExtension returns the object key extension for an allowed upload type
func FileExtension(fileType string) (string, error) {
	ext, ok := allowedFileTypes[strings.ToLower(strings.TrimSpace(fileType))]
	if !ok {
		return "", ValidationError{Field: "file_type", Message: "only JPEG, PNG and GIF images are allowed"}
	}
	return ext, nil
}
