package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobuffalo/validate/v3"

	"github.com/crashdoc/crashdoc-api/api"
)

// Model validation tool
var mValidate *validator.Validate

// Format rules for the identity and vehicle fields collected at the scene.
// National IDs are exactly nine digits, phone numbers exactly ten. Vehicle
// plate numbers run seven or eight digits, driver's license numbers exactly
// seven. Vehicle model is free text up to twenty alphanumeric characters.
var (
	idNumberRegex      = regexp.MustCompile(`^[0-9]{9}$`)
	phoneNumberRegex   = regexp.MustCompile(`^[0-9]{10}$`)
	vehicleNumberRegex = regexp.MustCompile(`^[0-9]{7,8}$`)
	licenseNumberRegex = regexp.MustCompile(`^[0-9]{7}$`)
	vehicleModelRegex  = regexp.MustCompile(`^[0-9a-zA-Z]{1,20}$`)
)

var fieldValidators = map[string]func(validator.FieldLevel) bool{
	"caseStatus":    validateCaseStatus,
	"idNumber":      validateIDNumber,
	"phoneNumber":   validatePhoneNumber,
	"vehicleNumber": validateVehicleNumber,
	"licenseNumber": validateLicenseNumber,
	"vehicleModel":  validateVehicleModel,
}

func validateModel(m interface{}) *validate.Errors {
	vErrs := validate.NewErrors()

	if err := mValidate.Struct(m); err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			vErrs.Add(err.StructNamespace(), err.Error())
		}
	}
	return vErrs
}

// flattenPopErrors - pop validation errors are complex structures, this flattens them to a simple string
func flattenPopErrors(popErrs *validate.Errors) string {
	var msgs []string
	for key, val := range popErrs.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", key, strings.Join(val, ", ")))
	}
	msg := strings.Join(msgs, " |")
	return msg
}

func validateCaseStatus(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(api.CaseStatus); ok {
		_, valid := ValidCaseStatus[value]
		return valid
	}
	return false
}

func validateIDNumber(field validator.FieldLevel) bool {
	return idNumberRegex.MatchString(field.Field().String())
}

func validatePhoneNumber(field validator.FieldLevel) bool {
	return phoneNumberRegex.MatchString(field.Field().String())
}

func validateVehicleNumber(field validator.FieldLevel) bool {
	return vehicleNumberRegex.MatchString(field.Field().String())
}

func validateLicenseNumber(field validator.FieldLevel) bool {
	return licenseNumberRegex.MatchString(field.Field().String())
}

func validateVehicleModel(field validator.FieldLevel) bool {
	return vehicleModelRegex.MatchString(field.Field().String())
}

// A case belongs to exactly one reporting party, either a registered user or
// a guest.
func caseStructLevelValidation(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(Case)
	if !ok {
		panic("caseStructLevelValidation registered to a type other than Case")
	}

	if c.Status == api.CaseStatusPending {
		// owner is assigned in a second step
		return
	}

	if c.UserID.Valid == c.GuestID.Valid {
		sl.ReportError(c.UserID, "user_id", "UserID", "exactly_one_owner_required", "")
	}
}

// An access token belongs to exactly one principal, either a user or a guest.
func userAccessTokenStructLevelValidation(sl validator.StructLevel) {
	uat, ok := sl.Current().Interface().(UserAccessToken)
	if !ok {
		panic("userAccessTokenStructLevelValidation registered to a type other than UserAccessToken")
	}

	if uat.UserID.Valid == uat.GuestID.Valid {
		sl.ReportError(uat.UserID, "user_id", "UserID", "exactly_one_principal_required", "")
	}
}
