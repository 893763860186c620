package flow

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/crashdoc/crashdoc-api/api"
)

// ErrNoSession indicates no session has been established; the caller must
// register, log in, or start a guest flow first.
var ErrNoSession = errors.New("no session established")

// ErrNotOnboarded indicates the account exists but its onboarding profile is
// incomplete, so reporter details cannot be resolved from it.
var ErrNotOnboarded = errors.New("user has not completed onboarding")

// IdentityKind tags how reporter details are sourced for a case.
type IdentityKind string

const (
	// reporter details come from the account's stored onboarding profile
	IdentityUser = IdentityKind("user")

	// reporter details are supplied inline per case
	IdentityGuest = IdentityKind("guest")
)

// IdentitySource is the resolved reporting identity for a submission.
type IdentitySource struct {
	Kind    IdentityKind
	UserID  uuid.UUID
	GuestID uuid.UUID

	// populated for users only; guests carry their details in the case input
	Info api.OnboardingInfo
}

// ResolveIdentity determines who is reporting and where their details come
// from. It is read-only: it never creates a session or modifies the profile.
func ResolveIdentity(ctx context.Context, client *Client) (IdentitySource, error) {
	session, err := client.Session()
	if err != nil {
		return IdentitySource{}, errors.Wrap(err, "loading session")
	}
	if !session.HasToken() {
		return IdentitySource{}, ErrNoSession
	}

	if session.IsGuest() {
		return IdentitySource{Kind: IdentityGuest, GuestID: session.GuestID}, nil
	}

	user, err := client.Me(ctx)
	if err != nil {
		return IdentitySource{}, errors.Wrap(err, "fetching profile")
	}
	if !user.Onboarded || user.OnboardingInfo == nil {
		return IdentitySource{}, ErrNotOnboarded
	}

	return IdentitySource{
		Kind:   IdentityUser,
		UserID: user.ID,
		Info:   *user.OnboardingInfo,
	}, nil
}
