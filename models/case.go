package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gobuffalo/events"
	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/log"
)

const CaseReferenceNumberLength = 7

var ValidCaseStatus = map[api.CaseStatus]struct{}{
	api.CaseStatusPending: {},
	api.CaseStatusFiled:   {},
}

type Cases []Case

// Case is a complete accident report. The reporter columns are a snapshot of
// the reporting party's details taken when the case is created, so later
// profile edits do not rewrite history.
type Case struct {
	ID              uuid.UUID      `db:"id"`
	ReferenceNumber string         `db:"reference_number" validate:"required,len=7"`
	Status          api.CaseStatus `db:"status" validate:"caseStatus"`

	// owning principal, assigned in a second step after creation
	UserID  nulls.UUID `db:"user_id"`
	GuestID nulls.UUID `db:"guest_id"`

	ReporterFirstName     string `db:"reporter_first_name"`
	ReporterLastName      string `db:"reporter_last_name"`
	ReporterIDNumber      string `db:"reporter_id_number" validate:"required,idNumber"`
	ReporterPhoneNumber   string `db:"reporter_phone_number" validate:"required,phoneNumber"`
	ReporterVehicleNumber string `db:"reporter_vehicle_number" validate:"required,vehicleNumber"`
	ReporterLicenseNumber string `db:"reporter_license_number" validate:"required,licenseNumber"`
	ReporterVehicleModel  string `db:"reporter_vehicle_model" validate:"required,vehicleModel"`

	ReporterDriversLicenseURL      string `db:"reporter_drivers_license_url"`
	ReporterVehicleLicenseURL      string `db:"reporter_vehicle_license_url"`
	ReporterInsuranceURL           string `db:"reporter_insurance_url"`
	ReporterRegistrationURL        string `db:"reporter_registration_url"`
	ReporterAdditionalDocumentsURL string `db:"reporter_additional_documents_url"`

	ThirdPartyIDNumber      string `db:"third_party_id_number" validate:"required,idNumber"`
	ThirdPartyPhoneNumber   string `db:"third_party_phone_number" validate:"required,phoneNumber"`
	ThirdPartyVehicleNumber string `db:"third_party_vehicle_number" validate:"required,vehicleNumber"`
	ThirdPartyLicenseNumber string `db:"third_party_license_number" validate:"required,licenseNumber"`
	ThirdPartyVehicleModel  string `db:"third_party_vehicle_model" validate:"required,vehicleModel"`

	ThirdPartyDriversLicenseURL      string `db:"third_party_drivers_license_url"`
	ThirdPartyVehicleLicenseURL      string `db:"third_party_vehicle_license_url"`
	ThirdPartyInsuranceURL           string `db:"third_party_insurance_url"`
	ThirdPartyRegistrationURL        string `db:"third_party_registration_url"`
	ThirdPartyAdditionalDocumentsURL string `db:"third_party_additional_documents_url"`

	DamagePhoto1URL string `db:"damage_photo_1_url"`
	DamagePhoto2URL string `db:"damage_photo_2_url"`
	DamagePhoto3URL string `db:"damage_photo_3_url"`
	DamagePhoto4URL string `db:"damage_photo_4_url"`
	DamagePhoto5URL string `db:"damage_photo_5_url"`

	DamageSeverity  string `db:"damage_severity"`
	DamageNarrative string `db:"damage_narrative"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	User  *User  `belongs_to:"users" validate:"-"`
	Guest *Guest `belongs_to:"guests" validate:"-"`
}

// Validate gets run every time you call a "pop.Validate*" method.
func (c *Case) Validate(tx *pop.Connection) (*validate.Errors, error) {
	return validateModel(c), nil
}

// Create stores the Case data as a new record in the database. A new case is
// always Pending until an owner is assigned.
func (c *Case) Create(tx *pop.Connection) error {
	c.ReferenceNumber = uniqueCaseReferenceNumber(tx)
	c.Status = api.CaseStatusPending

	if err := create(tx, c); err != nil {
		return err
	}

	if err := c.LinkFiles(tx); err != nil {
		return err
	}

	e := events.Event{
		Kind:    domain.EventApiCaseCreated,
		Message: fmt.Sprintf("Case Reference Number: %s", c.ReferenceNumber),
		Payload: events.Payload{domain.EventPayloadID: c.ID},
	}
	emitEvent(e)

	return nil
}

// Update writes the Case data to an existing database record.
func (c *Case) Update(tx *pop.Connection) error {
	return update(tx, c)
}

// Destroy removes the Case record from the database.
func (c *Case) Destroy(tx *pop.Connection) error {
	return destroy(tx, c)
}

func (c *Case) GetID() uuid.UUID {
	return c.ID
}

func (c *Case) FindByID(tx *pop.Connection, id uuid.UUID) error {
	return find(tx, c, id)
}

func (c *Case) FindByReferenceNumber(tx *pop.Connection, ref string) error {
	err := tx.Where("reference_number = ?", ref).First(c)
	return appErrorFromDB(err, api.ErrorQueryFailure)
}

// AssignOwner attaches a pending case to its reporting party and marks it
// Filed. Exactly one of userID and guestID must be non-nil. A case that is
// already filed, or already has an owner, cannot be reassigned.
func (c *Case) AssignOwner(tx *pop.Connection, userID, guestID *uuid.UUID) error {
	if (userID == nil) == (guestID == nil) {
		err := errors.New("a case must be assigned to exactly one of a user or a guest")
		return api.NewAppError(err, api.ErrorValidation, api.CategoryUser)
	}

	if c.Status != api.CaseStatusPending || c.UserID.Valid || c.GuestID.Valid {
		err := fmt.Errorf("case %s has already been filed", c.ReferenceNumber)
		return api.NewAppError(err, api.ErrorCaseNotPending, api.CategoryUser)
	}

	if userID != nil {
		c.UserID = nulls.NewUUID(*userID)
	} else {
		c.GuestID = nulls.NewUUID(*guestID)
	}
	c.Status = api.CaseStatusFiled

	if err := update(tx, c); err != nil {
		return err
	}

	e := events.Event{
		Kind:    domain.EventApiCaseFiled,
		Message: fmt.Sprintf("Case Reference Number: %s", c.ReferenceNumber),
		Payload: events.Payload{domain.EventPayloadID: c.ID},
	}
	emitEvent(e)

	return nil
}

// IsOwnedBy reports whether the case belongs to the given principal ID,
// whether user or guest.
func (c *Case) IsOwnedBy(id uuid.UUID) bool {
	if c.UserID.Valid && c.UserID.UUID == id {
		return true
	}
	return c.GuestID.Valid && c.GuestID.UUID == id
}

// AllForUser loads the cases owned by the given user, newest first
func (c *Cases) AllForUser(tx *pop.Connection, userID uuid.UUID) error {
	err := tx.Where("user_id = ?", userID).Order("created_at desc").All(c)
	return appErrorFromDB(err, api.ErrorQueryFailure)
}

// AllForGuest loads the cases owned by the given guest, newest first
func (c *Cases) AllForGuest(tx *pop.Connection, guestID uuid.UUID) error {
	err := tx.Where("guest_id = ?", guestID).Order("created_at desc").All(c)
	return appErrorFromDB(err, api.ErrorQueryFailure)
}

// ReporterInfo bundles the reporter snapshot columns
func (c *Case) ReporterInfo() api.OnboardingInfo {
	return api.OnboardingInfo{
		IDNumber:      c.ReporterIDNumber,
		PhoneNumber:   c.ReporterPhoneNumber,
		VehicleNumber: c.ReporterVehicleNumber,
		LicenseNumber: c.ReporterLicenseNumber,
		VehicleModel:  c.ReporterVehicleModel,
		Documents: api.DocumentSet{
			DriversLicense:      c.ReporterDriversLicenseURL,
			VehicleLicense:      c.ReporterVehicleLicenseURL,
			Insurance:           c.ReporterInsuranceURL,
			Registration:        c.ReporterRegistrationURL,
			AdditionalDocuments: c.ReporterAdditionalDocumentsURL,
		},
	}
}

// SetReporterInfo spreads a reporter profile across the snapshot columns
func (c *Case) SetReporterInfo(info api.OnboardingInfo) {
	c.ReporterIDNumber = info.IDNumber
	c.ReporterPhoneNumber = info.PhoneNumber
	c.ReporterVehicleNumber = info.VehicleNumber
	c.ReporterLicenseNumber = info.LicenseNumber
	c.ReporterVehicleModel = info.VehicleModel
	c.ReporterDriversLicenseURL = info.Documents.DriversLicense
	c.ReporterVehicleLicenseURL = info.Documents.VehicleLicense
	c.ReporterInsuranceURL = info.Documents.Insurance
	c.ReporterRegistrationURL = info.Documents.Registration
	c.ReporterAdditionalDocumentsURL = info.Documents.AdditionalDocuments
}

// ThirdPartyInfo bundles the third-party columns
func (c *Case) ThirdPartyInfo() api.ThirdPartyInfo {
	return api.ThirdPartyInfo{
		IDNumber:      c.ThirdPartyIDNumber,
		PhoneNumber:   c.ThirdPartyPhoneNumber,
		VehicleNumber: c.ThirdPartyVehicleNumber,
		LicenseNumber: c.ThirdPartyLicenseNumber,
		VehicleModel:  c.ThirdPartyVehicleModel,
		Documents: api.DocumentSet{
			DriversLicense:      c.ThirdPartyDriversLicenseURL,
			VehicleLicense:      c.ThirdPartyVehicleLicenseURL,
			Insurance:           c.ThirdPartyInsuranceURL,
			Registration:        c.ThirdPartyRegistrationURL,
			AdditionalDocuments: c.ThirdPartyAdditionalDocumentsURL,
		},
	}
}

// SetThirdPartyInfo spreads the other driver's details across the columns
func (c *Case) SetThirdPartyInfo(info api.ThirdPartyInfo) {
	c.ThirdPartyIDNumber = info.IDNumber
	c.ThirdPartyPhoneNumber = info.PhoneNumber
	c.ThirdPartyVehicleNumber = info.VehicleNumber
	c.ThirdPartyLicenseNumber = info.LicenseNumber
	c.ThirdPartyVehicleModel = info.VehicleModel
	c.ThirdPartyDriversLicenseURL = info.Documents.DriversLicense
	c.ThirdPartyVehicleLicenseURL = info.Documents.VehicleLicense
	c.ThirdPartyInsuranceURL = info.Documents.Insurance
	c.ThirdPartyRegistrationURL = info.Documents.Registration
	c.ThirdPartyAdditionalDocumentsURL = info.Documents.AdditionalDocuments
}

// DamagePhotos bundles the damage photo slot columns
func (c *Case) DamagePhotos() api.DamagePhotoSet {
	return api.DamagePhotoSet{
		DamagePhoto1: c.DamagePhoto1URL,
		DamagePhoto2: c.DamagePhoto2URL,
		DamagePhoto3: c.DamagePhoto3URL,
		DamagePhoto4: c.DamagePhoto4URL,
		DamagePhoto5: c.DamagePhoto5URL,
	}
}

// SetDamagePhotos spreads a photo set across the slot columns
func (c *Case) SetDamagePhotos(photos api.DamagePhotoSet) {
	c.DamagePhoto1URL = photos.DamagePhoto1
	c.DamagePhoto2URL = photos.DamagePhoto2
	c.DamagePhoto3URL = photos.DamagePhoto3
	c.DamagePhoto4URL = photos.DamagePhoto4
	c.DamagePhoto5URL = photos.DamagePhoto5
}

// documentURLs returns every stored document and photo URL, empty slots
// included.
func (c *Case) documentURLs() []string {
	return []string{
		c.ReporterDriversLicenseURL,
		c.ReporterVehicleLicenseURL,
		c.ReporterInsuranceURL,
		c.ReporterRegistrationURL,
		c.ReporterAdditionalDocumentsURL,
		c.ThirdPartyDriversLicenseURL,
		c.ThirdPartyVehicleLicenseURL,
		c.ThirdPartyInsuranceURL,
		c.ThirdPartyRegistrationURL,
		c.ThirdPartyAdditionalDocumentsURL,
		c.DamagePhoto1URL,
		c.DamagePhoto2URL,
		c.DamagePhoto3URL,
		c.DamagePhoto4URL,
		c.DamagePhoto5URL,
	}
}

// LinkFiles marks every uploaded file referenced by the case's document and
// photo columns as linked, so the unlinked-file cleanup leaves them alone.
// URLs that do not reference a stored file pass through untouched, and a file
// already linked by an earlier case stays linked.
func (c *Case) LinkFiles(tx *pop.Connection) error {
	for _, u := range c.documentURLs() {
		id, ok := fileIDFromURL(u)
		if !ok {
			continue
		}

		var f File
		if err := f.Find(tx, id); err != nil {
			continue
		}
		if f.Linked {
			continue
		}
		if err := f.SetLinked(tx); err != nil {
			return err
		}
	}
	return nil
}

// ConvertToAPI converts a models.Case to an api.Case. Stored document URLs
// are swapped for ones that are still fetchable before they go out.
func (c *Case) ConvertToAPI(tx *pop.Connection) api.Case {
	out := api.Case{
		ID:              c.ID,
		ReferenceNumber: c.ReferenceNumber,
		Status:          c.Status,
		UserID:          convertUUIDToAPI(c.UserID),
		GuestID:         convertUUIDToAPI(c.GuestID),
		Reporter:        c.ReporterInfo(),
		ThirdParty:      c.ThirdPartyInfo(),
		DamagePhotos:    c.DamagePhotos(),
		DamageSeverity:  c.DamageSeverity,
		DamageNarrative: c.DamageNarrative,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}

	for _, u := range []*string{
		&out.Reporter.Documents.DriversLicense,
		&out.Reporter.Documents.VehicleLicense,
		&out.Reporter.Documents.Insurance,
		&out.Reporter.Documents.Registration,
		&out.Reporter.Documents.AdditionalDocuments,
		&out.ThirdParty.Documents.DriversLicense,
		&out.ThirdParty.Documents.VehicleLicense,
		&out.ThirdParty.Documents.Insurance,
		&out.ThirdParty.Documents.Registration,
		&out.ThirdParty.Documents.AdditionalDocuments,
		&out.DamagePhotos.DamagePhoto1,
		&out.DamagePhotos.DamagePhoto2,
		&out.DamagePhotos.DamagePhoto3,
		&out.DamagePhotos.DamagePhoto4,
		&out.DamagePhotos.DamagePhoto5,
	} {
		*u = freshFileURL(tx, *u)
	}

	return out
}

// ConvertToAPI converts a models.Cases to an api.Cases
func (c *Cases) ConvertToAPI(tx *pop.Connection) api.Cases {
	cases := make(api.Cases, len(*c))
	for i, cc := range *c {
		cases[i] = cc.ConvertToAPI(tx)
	}
	return cases
}

// uniqueCaseReferenceNumber generates a reference number that is not yet in
// use by another case.
func uniqueCaseReferenceNumber(tx *pop.Connection) string {
	attempts := 0
	for {
		// create reference number in format CD12345
		ref := fmt.Sprintf("CD%s", domain.RandomString(CaseReferenceNumberLength-2, "0123456789"))

		var existing Case
		err := existing.FindByReferenceNumber(tx, ref)
		var appErr *api.AppError
		if errors.As(err, &appErr) && appErr.Key == api.ErrorNoRows {
			return ref
		}

		attempts++
		if attempts > 100 {
			panic(fmt.Errorf("failed to find unique case reference number after %d attempts", attempts))
		}
		log.Warningf("unique case reference number not found, attempt %d", attempts)
	}
}
