package actions

import (
	"errors"
	"net/http"

	"github.com/gobuffalo/buffalo"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/cache"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/models"
)

// swagger:operation GET /cases Cases CasesList
//
// CasesList
//
// list the cases owned by the authenticated principal, newest first
//
// ---
// responses:
//   '200':
//     description: cases owned by the principal
//     schema:
//       type: array
//       items:
//         "$ref": "#/definitions/Case"
func casesList(c buffalo.Context) error {
	principalID, isUser, err := currentPrincipalID(c)
	if err != nil {
		return reportError(c, err)
	}

	tx := models.Tx(c)

	var out api.Cases
	err = cache.Fetch(c, cache.UserCasesKey(principalID), &out, func() (any, error) {
		var cases models.Cases
		if isUser {
			if err := cases.AllForUser(tx, principalID); err != nil {
				return nil, err
			}
		} else {
			if err := cases.AllForGuest(tx, principalID); err != nil {
				return nil, err
			}
		}
		return cases.ConvertToAPI(tx), nil
	})
	if err != nil {
		return reportError(c, err)
	}

	return renderOk(c, out)
}

// swagger:operation GET /cases/{id} Cases CasesView
//
// CasesView
//
// a single case; only its owner may view it
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: case ID
// responses:
//   '200':
//     description: a case
//     schema:
//       "$ref": "#/definitions/Case"
func casesView(c buffalo.Context) error {
	principalID, _, err := currentPrincipalID(c)
	if err != nil {
		return reportError(c, err)
	}

	id, err := caseID(c)
	if err != nil {
		return reportError(c, err)
	}

	tx := models.Tx(c)

	var out api.Case
	err = cache.Fetch(c, cache.CaseKey(id), &out, func() (any, error) {
		var cs models.Case
		if err := cs.FindByID(tx, id); err != nil {
			return nil, err
		}
		return cs.ConvertToAPI(tx), nil
	})
	if err != nil {
		return reportError(c, err)
	}

	if !isCaseOwner(out, principalID) {
		err := errors.New("case does not belong to the authenticated principal")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	return renderOk(c, out)
}

// swagger:operation POST /cases Cases CasesCreate
//
// CasesCreate
//
// create a case. The case is created without an owner; a follow-up call to
// CasesUpdateOwner completes the filing. For a registered user the reporter
// details come from the stored onboarding profile; a guest supplies them
// inline.
//
// ---
// parameters:
//   - name: case input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/CaseCreateInput"
// responses:
//   '200':
//     description: the new case, still pending owner assignment
//     schema:
//       "$ref": "#/definitions/Case"
func casesCreate(c buffalo.Context) error {
	principalID, isUser, err := currentPrincipalID(c)
	if err != nil {
		return reportError(c, err)
	}

	var input api.CaseCreateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	tx := models.Tx(c)

	reporter, err := resolveReporter(c, input, isUser, principalID)
	if err != nil {
		return reportError(c, err)
	}

	var cs models.Case
	cs.SetReporterInfo(reporter)
	cs.SetThirdPartyInfo(input.ThirdParty)
	cs.SetDamagePhotos(input.DamagePhotos)
	cs.DamageSeverity = input.DamageSeverity
	cs.DamageNarrative = input.DamageNarrative

	if user := models.CurrentUser(c); !user.ID.IsNil() {
		cs.ReporterFirstName = user.FirstName
		cs.ReporterLastName = user.LastName
	} else if guest := models.CurrentGuest(c); !guest.ID.IsNil() {
		cs.ReporterFirstName = guest.FirstName
		cs.ReporterLastName = guest.LastName
	}

	if err := cs.Create(tx); err != nil {
		return reportError(c, err)
	}

	cache.Invalidate(c, cache.UserCasesKey(principalID))

	return renderOk(c, cs.ConvertToAPI(tx))
}

// swagger:operation PUT /cases/{id} Cases CasesUpdateOwner
//
// CasesUpdateOwner
//
// assign a pending case to its owner, completing the filing
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: case ID
//   - name: owner input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/CaseOwnerUpdateInput"
// responses:
//   '200':
//     description: the filed case
//     schema:
//       "$ref": "#/definitions/Case"
func casesUpdateOwner(c buffalo.Context) error {
	principalID, _, err := currentPrincipalID(c)
	if err != nil {
		return reportError(c, err)
	}

	id, err := caseID(c)
	if err != nil {
		return reportError(c, err)
	}

	var input api.CaseOwnerUpdateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	tx := models.Tx(c)

	var cs models.Case
	if err := cs.FindByID(tx, id); err != nil {
		return reportError(c, err)
	}

	// a principal may only assign a case to itself
	if (input.UserID != nil && *input.UserID != principalID) ||
		(input.GuestID != nil && *input.GuestID != principalID) {
		err := errors.New("cannot assign a case to another principal")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	if err := cs.AssignOwner(tx, input.UserID, input.GuestID); err != nil {
		return reportError(c, err)
	}

	cache.Invalidate(c, cache.CaseKey(cs.ID), cache.UserCasesKey(principalID))

	return renderOk(c, cs.ConvertToAPI(tx))
}

// swagger:operation DELETE /cases/{id} Cases CasesDestroy
//
// CasesDestroy
//
// delete a case; only its owner may delete it
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: case ID
// responses:
//   '204':
//     description: the case was deleted
func casesDestroy(c buffalo.Context) error {
	principalID, _, err := currentPrincipalID(c)
	if err != nil {
		return reportError(c, err)
	}

	id, err := caseID(c)
	if err != nil {
		return reportError(c, err)
	}

	tx := models.Tx(c)

	var cs models.Case
	if err := cs.FindByID(tx, id); err != nil {
		return reportError(c, err)
	}

	if !cs.IsOwnedBy(principalID) {
		err := errors.New("case does not belong to the authenticated principal")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	if err := cs.Destroy(tx); err != nil {
		return reportError(c, err)
	}

	cache.Invalidate(c, cache.CaseKey(cs.ID), cache.UserCasesKey(principalID))

	return c.Render(http.StatusNoContent, nil)
}

func caseID(c buffalo.Context) (uuid.UUID, error) {
	id, err := uuid.FromString(c.Param(domain.TypeCase + "_id"))
	if err != nil {
		return uuid.Nil, api.NewAppError(err, api.ErrorMustBeAValidUUID, api.CategoryUser)
	}
	return id, nil
}

func isCaseOwner(cs api.Case, principalID uuid.UUID) bool {
	if cs.UserID != nil && *cs.UserID == principalID {
		return true
	}
	return cs.GuestID != nil && *cs.GuestID == principalID
}

// resolveReporter produces the reporter snapshot for a new case. Users must
// have completed onboarding; guests must supply reporter details inline.
func resolveReporter(c buffalo.Context, input api.CaseCreateInput, isUser bool, principalID uuid.UUID) (api.OnboardingInfo, error) {
	tx := models.Tx(c)

	if isUser {
		var info models.OnboardingInfo
		if err := info.FindByUserID(tx, principalID); err != nil {
			err = errors.New("user has not completed onboarding")
			return api.OnboardingInfo{}, api.NewAppError(err, api.ErrorNotOnboarded, api.CategoryUser)
		}
		return info.ConvertToAPI(tx), nil
	}

	if input.Reporter == nil || input.Reporter.IsEmpty() {
		err := errors.New("guest case requires reporter details")
		return api.OnboardingInfo{}, api.NewAppError(err, api.ErrorValidation, api.CategoryUser)
	}
	return *input.Reporter, nil
}
