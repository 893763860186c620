package api

// DocumentSet is the fixed five-category bundle of identity/vehicle document
// images. Values are image URLs; an empty string means the document was never
// supplied, which is always acceptable.
//
// swagger:model
type DocumentSet struct {
	DriversLicense      string `json:"driversLicense"`
	VehicleLicense      string `json:"vehicleLicense"`
	Insurance           string `json:"insurance"`
	Registration        string `json:"registration"`
	AdditionalDocuments string `json:"additionalDocuments"`
}

// IsEmpty reports whether no document at all has been supplied.
func (d DocumentSet) IsEmpty() bool {
	return d == DocumentSet{}
}

// URLs returns the document URLs in their fixed category order, including
// empty slots.
func (d DocumentSet) URLs() []string {
	return []string{
		d.DriversLicense,
		d.VehicleLicense,
		d.Insurance,
		d.Registration,
		d.AdditionalDocuments,
	}
}

// DamagePhotoSet holds up to five damage photo URLs. Slots are filled
// incrementally and independently; an empty string means the slot was never
// used.
//
// swagger:model
type DamagePhotoSet struct {
	DamagePhoto1 string `json:"damagePhoto1"`
	DamagePhoto2 string `json:"damagePhoto2"`
	DamagePhoto3 string `json:"damagePhoto3"`
	DamagePhoto4 string `json:"damagePhoto4"`
	DamagePhoto5 string `json:"damagePhoto5"`
}

// URLs returns the photo URLs in slot order, including empty slots.
func (d DamagePhotoSet) URLs() []string {
	return []string{
		d.DamagePhoto1,
		d.DamagePhoto2,
		d.DamagePhoto3,
		d.DamagePhoto4,
		d.DamagePhoto5,
	}
}

// PresentURLs returns only the non-empty photo URLs, in slot order.
func (d DamagePhotoSet) PresentURLs() []string {
	var urls []string
	for _, u := range d.URLs() {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// OnboardingInfo is the reporting party's vehicle/license profile. For a
// registered user it is collected once at onboarding and reused across cases;
// for a guest the equivalent data is supplied inline per case.
//
// swagger:model
type OnboardingInfo struct {
	// the reporting party's national ID number (9 digits)
	IDNumber string `json:"userId"`

	PhoneNumber   string `json:"phoneNumber"`
	VehicleNumber string `json:"vehicleNumber"`
	LicenseNumber string `json:"licenseNumber"`
	VehicleModel  string `json:"vehicleModel"`

	Documents DocumentSet `json:"documents"`
}

// IsEmpty reports whether the profile has no identifying fields at all.
func (o OnboardingInfo) IsEmpty() bool {
	return o.IDNumber == "" && o.PhoneNumber == "" && o.VehicleNumber == "" &&
		o.LicenseNumber == "" && o.VehicleModel == "" && o.Documents.IsEmpty()
}
