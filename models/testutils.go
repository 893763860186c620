//go:build development

// This build tag ensures that this file will not be included unless
//  the `development` tag is explicitly requested (which should be never)

package models

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/gobuffalo/buffalo"
	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/storage"
)

type FixturesConfig struct {
	NumberOfUsers  int
	NumberOfGuests int
	CasesPerOwner  int
}

// Fixtures hold slices of model objects created for test fixtures
type Fixtures struct {
	Cases
	Files
	Guests
	OnboardingInfos
	UserAccessTokens
	Users
}

// TestBuffaloContext is a buffalo context used in tests
type TestBuffaloContext struct {
	buffalo.DefaultContext
	params map[interface{}]interface{}
}

// Value returns the value associated with the given key in the test context
func (b *TestBuffaloContext) Value(key interface{}) interface{} {
	return b.params[key]
}

// Set sets the value to be associated with the given key in the test context
func (b *TestBuffaloContext) Set(key string, val interface{}) {
	b.params[key] = val
}

// CreateTestContext sets the domain.ContextKeyCurrentUser to the user param in the TestBuffaloContext
func CreateTestContext(user User) buffalo.Context {
	ctx := &TestBuffaloContext{
		params: map[interface{}]interface{}{},
	}
	ctx.Set(domain.ContextKeyCurrentUser, user)
	return ctx
}

// CreateFileFixtures generates any number of file records for testing,
//  all owned by the same principal.
func CreateFileFixtures(tx *pop.Connection, n int, createdByID uuid.UUID) Fixtures {
	_ = storage.CreateS3Bucket()
	files := make(Files, n)
	for i := range files {
		f := File{
			Content:     []byte("GIF87a"),
			Name:        fmt.Sprintf("file_%d.gif", i),
			CreatedByID: createdByID,
		}
		if err := f.Store(tx); err != nil {
			panic(fmt.Sprintf("failed to create file fixture, %s", err))
		}
		files[i] = f
	}

	return Fixtures{
		Files: files,
	}
}

// CreateUserFixtures generates any number of user records for testing. The access token for
// each user is the same as the user's Email.
func CreateUserFixtures(tx *pop.Connection, n int) Fixtures {
	unique := domain.GetUUID().String()

	users := make(Users, n)
	accessTokenFixtures := make(UserAccessTokens, n)
	for i := range users {
		users[i].Email = fmt.Sprintf("user%d_%s@example.com", i, unique)
		iStr := strconv.Itoa(i)
		users[i].FirstName = "first" + iStr
		users[i].LastName = "last" + iStr
		users[i].LastLoginUTC = time.Now()
		if err := users[i].SetPassword("password" + iStr); err != nil {
			panic("failed to set password fixture, " + err.Error())
		}
		MustCreate(tx, &users[i])

		accessTokenFixtures[i].UserID = nulls.NewUUID(users[i].ID)
		accessTokenFixtures[i].TokenHash = HashAccessToken(users[i].Email)
		accessTokenFixtures[i].ExpiresAt = time.Now().UTC().Add(time.Minute * 60)
		accessTokenFixtures[i].LastUsedAt = nulls.NewTime(time.Now())
		MustCreate(tx, &accessTokenFixtures[i])
	}

	return Fixtures{
		Users:            users,
		UserAccessTokens: accessTokenFixtures,
	}
}

// CreateGuestFixtures generates any number of guest records for testing. The access token for
// each guest is the guest's first name.
func CreateGuestFixtures(tx *pop.Connection, n int) Fixtures {
	unique := domain.GetUUID().String()[0:8]

	guests := make(Guests, n)
	accessTokenFixtures := make(UserAccessTokens, n)
	for i := range guests {
		iStr := strconv.Itoa(i)
		guests[i].FirstName = fmt.Sprintf("guest%s_%s", iStr, unique)
		guests[i].LastName = "visitor" + iStr
		MustCreate(tx, &guests[i])

		accessTokenFixtures[i].GuestID = nulls.NewUUID(guests[i].ID)
		accessTokenFixtures[i].TokenHash = HashAccessToken(guests[i].FirstName)
		accessTokenFixtures[i].ExpiresAt = time.Now().UTC().Add(time.Minute * 60)
		MustCreate(tx, &accessTokenFixtures[i])
	}

	return Fixtures{
		Guests:           guests,
		UserAccessTokens: accessTokenFixtures,
	}
}

// CreateOnboardingInfoFixtures generates an onboarding profile for each of the given users
func CreateOnboardingInfoFixtures(tx *pop.Connection, users Users) Fixtures {
	infos := make(OnboardingInfos, len(users))
	for i := range infos {
		infos[i] = OnboardingInfo{
			UserID:            users[i].ID,
			IDNumber:          randDigits(9),
			PhoneNumber:       randDigits(10),
			VehicleNumber:     randDigits(8),
			LicenseNumber:     randDigits(7),
			VehicleModel:      "model" + randStr(5),
			DriversLicenseURL: "https://files.example.com/" + randStr(10) + ".jpg",
		}
		MustCreate(tx, &infos[i])
	}

	return Fixtures{
		OnboardingInfos: infos,
	}
}

// CreateCaseFixtures generates case records for testing.
// Uses FixturesConfig fields: NumberOfUsers, NumberOfGuests, CasesPerOwner
func CreateCaseFixtures(tx *pop.Connection, config FixturesConfig) Fixtures {
	userFixtures := CreateUserFixtures(tx, config.NumberOfUsers)
	guestFixtures := CreateGuestFixtures(tx, config.NumberOfGuests)
	infoFixtures := CreateOnboardingInfoFixtures(tx, userFixtures.Users)

	var cases Cases
	for i := range userFixtures.Users {
		for j := 0; j < config.CasesPerOwner; j++ {
			c := createCaseFixture(tx, infoFixtures.OnboardingInfos[i].ConvertToAPI(tx))
			mustAssignOwner(tx, &c, &userFixtures.Users[i].ID, nil)
			cases = append(cases, c)
		}
	}
	for i := range guestFixtures.Guests {
		for j := 0; j < config.CasesPerOwner; j++ {
			c := createCaseFixture(tx, randOnboardingInfo())
			mustAssignOwner(tx, &c, nil, &guestFixtures.Guests[i].ID)
			cases = append(cases, c)
		}
	}

	return Fixtures{
		Cases:            cases,
		Guests:           guestFixtures.Guests,
		OnboardingInfos:  infoFixtures.OnboardingInfos,
		UserAccessTokens: append(userFixtures.UserAccessTokens, guestFixtures.UserAccessTokens...),
		Users:            userFixtures.Users,
	}
}

func createCaseFixture(tx *pop.Connection, reporter api.OnboardingInfo) Case {
	c := Case{
		DamagePhoto1URL: "https://files.example.com/" + randStr(10) + ".jpg",
		DamageSeverity:  api.DamageSeverityLight,
		DamageNarrative: "minor scratches",
	}
	c.SetReporterInfo(reporter)
	c.SetThirdPartyInfo(api.ThirdPartyInfo{
		IDNumber:      randDigits(9),
		PhoneNumber:   randDigits(10),
		VehicleNumber: randDigits(7),
		LicenseNumber: randDigits(7),
		VehicleModel:  "model" + randStr(5),
	})
	if err := c.Create(tx); err != nil {
		panic(fmt.Sprintf("error creating case fixture, %s", err))
	}
	return c
}

// createFileFixture saves a file record directly, without a round trip
// through object storage.
func createFileFixture(tx *pop.Connection, createdByID uuid.UUID, expiration time.Time) File {
	f := File{
		ID:            domain.GetUUID(),
		Name:          randStr(8) + ".jpg",
		Size:          1024,
		ContentType:   "image/jpeg",
		CreatedByID:   createdByID,
		URLExpiration: expiration,
	}
	f.URL = "https://files.example.com/" + f.Path()
	MustCreate(tx, &f)
	return f
}

func randOnboardingInfo() api.OnboardingInfo {
	return api.OnboardingInfo{
		IDNumber:      randDigits(9),
		PhoneNumber:   randDigits(10),
		VehicleNumber: randDigits(8),
		LicenseNumber: randDigits(7),
		VehicleModel:  "model" + randStr(5),
	}
}

func mustAssignOwner(tx *pop.Connection, c *Case, userID, guestID *uuid.UUID) {
	if err := c.AssignOwner(tx, userID, guestID); err != nil {
		panic(fmt.Sprintf("error assigning case fixture owner, %s", err))
	}
}

// MustCreate saves a record to the database with validation. Panics if any error occurs.
func MustCreate(tx *pop.Connection, f interface{}) {
	// Use `create` instead of `tx.Create` to check validation rules
	err := create(tx, f)
	if err != nil {
		panic(fmt.Sprintf("error creating %T fixture, %s", f, err))
	}
}

func randStr(n int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Int63()%int64(len(chars))]
	}
	return string(b)
}

func randDigits(n int) string {
	const chars = "0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Int63()%int64(len(chars))]
	}
	return string(b)
}

func DestroyAll() {
	// delete all Cases
	var cases Cases
	destroyTable(&cases)

	// delete all OnboardingInfos
	var infos OnboardingInfos
	destroyTable(&infos)

	// delete all Users and UserAccessTokens
	var users Users
	destroyTable(&users)

	// delete all Guests
	var guests Guests
	destroyTable(&guests)

	// delete all Files
	var files Files
	destroyTable(&files)
}

func destroyTable(i interface{}) {
	if err := DB.All(i); err != nil {
		panic(err.Error())
	}
	if err := DB.Destroy(i); err != nil {
		panic(err.Error())
	}
}
