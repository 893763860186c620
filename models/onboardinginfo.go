package models

import (
	"encoding/json"
	"time"

	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
)

// OnboardingInfos is a slice of OnboardingInfo objects
type OnboardingInfos []OnboardingInfo

// OnboardingInfo is a registered user's vehicle/license profile, collected
// once after registration and reused for every case the user files.
type OnboardingInfo struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id" validate:"required"`

	IDNumber      string `db:"id_number" validate:"required,idNumber"`
	PhoneNumber   string `db:"phone_number" validate:"required,phoneNumber"`
	VehicleNumber string `db:"vehicle_number" validate:"required,vehicleNumber"`
	LicenseNumber string `db:"license_number" validate:"required,licenseNumber"`
	VehicleModel  string `db:"vehicle_model" validate:"required,vehicleModel"`

	// document image URLs, any of which may be blank
	DriversLicenseURL      string `db:"drivers_license_url"`
	VehicleLicenseURL      string `db:"vehicle_license_url"`
	InsuranceURL           string `db:"insurance_url"`
	RegistrationURL        string `db:"registration_url"`
	AdditionalDocumentsURL string `db:"additional_documents_url"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	User *User `belongs_to:"users"`
}

// String can be helpful for serializing the model
func (o OnboardingInfo) String() string {
	jo, _ := json.Marshal(o)
	return string(jo)
}

// Validate gets run every time you call a "pop.Validate*" method.
func (o *OnboardingInfo) Validate(tx *pop.Connection) (*validate.Errors, error) {
	return validateModel(o), nil
}

// FindByUserID locates the profile belonging to the given user. Each user has
// at most one.
func (o *OnboardingInfo) FindByUserID(tx *pop.Connection, userID uuid.UUID) error {
	err := tx.Where("user_id = ?", userID).First(o)
	return appErrorFromDB(err, api.ErrorQueryFailure)
}

// Create stores the OnboardingInfo data as a new record in the database.
func (o *OnboardingInfo) Create(tx *pop.Connection) error {
	return create(tx, o)
}

// Update writes the OnboardingInfo data to an existing database record.
func (o *OnboardingInfo) Update(tx *pop.Connection) error {
	return update(tx, o)
}

// Documents bundles the document URL columns
func (o *OnboardingInfo) Documents() api.DocumentSet {
	return api.DocumentSet{
		DriversLicense:      o.DriversLicenseURL,
		VehicleLicense:      o.VehicleLicenseURL,
		Insurance:           o.InsuranceURL,
		Registration:        o.RegistrationURL,
		AdditionalDocuments: o.AdditionalDocumentsURL,
	}
}

// SetDocuments spreads a document bundle across the URL columns
func (o *OnboardingInfo) SetDocuments(d api.DocumentSet) {
	o.DriversLicenseURL = d.DriversLicense
	o.VehicleLicenseURL = d.VehicleLicense
	o.InsuranceURL = d.Insurance
	o.RegistrationURL = d.Registration
	o.AdditionalDocumentsURL = d.AdditionalDocuments
}

// ConvertToAPI converts a models.OnboardingInfo to an api.OnboardingInfo,
// refreshing any stored document URLs that are close to expiring.
func (o *OnboardingInfo) ConvertToAPI(tx *pop.Connection) api.OnboardingInfo {
	out := api.OnboardingInfo{
		IDNumber:      o.IDNumber,
		PhoneNumber:   o.PhoneNumber,
		VehicleNumber: o.VehicleNumber,
		LicenseNumber: o.LicenseNumber,
		VehicleModel:  o.VehicleModel,
		Documents:     o.Documents(),
	}

	for _, u := range []*string{
		&out.Documents.DriversLicense,
		&out.Documents.VehicleLicense,
		&out.Documents.Insurance,
		&out.Documents.Registration,
		&out.Documents.AdditionalDocuments,
	} {
		*u = freshFileURL(tx, *u)
	}

	return out
}
