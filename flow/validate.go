package flow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/crashdoc/crashdoc-api/api"
)

// These mirror the server's field rules so a case that passes local
// validation is never rejected by the API for format reasons.
var (
	idNumberPattern      = regexp.MustCompile(`^[0-9]{9}$`)
	phoneNumberPattern   = regexp.MustCompile(`^[0-9]{10}$`)
	vehicleNumberPattern = regexp.MustCompile(`^[0-9]{7,8}$`)
	licenseNumberPattern = regexp.MustCompile(`^[0-9]{7}$`)
	vehicleModelPattern  = regexp.MustCompile(`^[0-9a-zA-Z]{1,20}$`)
)

// FieldError is one failed field rule, named so the UI can highlight the
// offending input.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// ValidationError aggregates every failed field rule from one check.
type ValidationError struct {
	Fields []FieldError
}

func (v *ValidationError) Error() string {
	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func checkFields(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func checkPartyFields(idField, idNumber, phoneNumber, vehicleNumber, licenseNumber, vehicleModel string) []FieldError {
	var failed []FieldError
	if !idNumberPattern.MatchString(idNumber) {
		failed = append(failed, FieldError{idField, "must be exactly 9 digits"})
	}
	if !phoneNumberPattern.MatchString(phoneNumber) {
		failed = append(failed, FieldError{"phoneNumber", "must be exactly 10 digits"})
	}
	if !vehicleNumberPattern.MatchString(vehicleNumber) {
		failed = append(failed, FieldError{"vehicleNumber", "must be 7 or 8 digits"})
	}
	if !licenseNumberPattern.MatchString(licenseNumber) {
		failed = append(failed, FieldError{"licenseNumber", "must be exactly 7 digits"})
	}
	if !vehicleModelPattern.MatchString(vehicleModel) {
		failed = append(failed, FieldError{"vehicleModel", "must be 1-20 letters or digits"})
	}
	return failed
}

// ValidateThirdParty checks the other driver's details. Documents are always
// optional.
func ValidateThirdParty(info api.ThirdPartyInfo) error {
	return checkFields(checkPartyFields("thirdPartyId",
		info.IDNumber, info.PhoneNumber, info.VehicleNumber, info.LicenseNumber, info.VehicleModel))
}

// ValidateReporter checks reporter details supplied inline by a guest.
func ValidateReporter(info api.OnboardingInfo) error {
	return checkFields(checkPartyFields("userId",
		info.IDNumber, info.PhoneNumber, info.VehicleNumber, info.LicenseNumber, info.VehicleModel))
}
