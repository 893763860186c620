package flow

import (
	"context"

	"github.com/pkg/errors"

	"github.com/crashdoc/crashdoc-api/api"
)

// ErrSubmissionInFlight indicates a submission for this case is already
// running; the guard exists so a double-tap cannot file the case twice
// concurrently. It does not protect against a completed submission being
// repeated, which files a second case.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrSubmissionFailed indicates the case was created but could not be
// assigned to its owner. The orphaned case is not rolled back; retrying the
// submission files a new case.
var ErrSubmissionFailed = errors.New("case submission failed")

// Submit files the assembled case: resolve the reporting identity, create
// the case, then assign it to the owner with a second call. The two steps are
// not atomic and the whole operation is not idempotent.
func (a *Accumulator) Submit(ctx context.Context, client *Client) (api.Case, error) {
	a.mu.Lock()
	if a.submitting {
		a.mu.Unlock()
		return api.Case{}, ErrSubmissionInFlight
	}
	a.submitting = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.submitting = false
		a.mu.Unlock()
	}()

	identity, err := ResolveIdentity(ctx, client)
	if err != nil {
		return api.Case{}, err
	}

	input := a.Review()
	if identity.Kind == IdentityUser {
		// the server snapshots the stored profile; inline details are ignored
		input.Reporter = nil
	} else {
		if input.Reporter == nil {
			return api.Case{}, errors.Wrap(ErrSubmissionFailed, "guest submission requires reporter details")
		}
		if err := ValidateReporter(*input.Reporter); err != nil {
			return api.Case{}, err
		}
	}

	created, err := client.CreateCase(ctx, input)
	if err != nil {
		return api.Case{}, errors.Wrap(err, "creating case")
	}

	owner := api.CaseOwnerUpdateInput{}
	if identity.Kind == IdentityUser {
		owner.UserID = &identity.UserID
	} else {
		owner.GuestID = &identity.GuestID
	}

	filed, err := client.AssignCaseOwner(ctx, created.ID, owner)
	if err != nil {
		return created, errors.Wrapf(ErrSubmissionFailed, "case %s created but not assigned: %s", created.ReferenceNumber, err)
	}

	return filed, nil
}
