package actions

import (
	"errors"
	"fmt"

	"github.com/gobuffalo/buffalo"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/log"
	"github.com/crashdoc/crashdoc-api/models"
)

// AuthN authenticates the request by its bearer token and puts the principal,
// user or guest, on the context. An expired token is replaced transparently:
// the request proceeds and the new token is returned in the response
// Authorization header for the client to adopt.
func AuthN(next buffalo.Handler) buffalo.Handler {
	return func(c buffalo.Context) error {
		bearerToken := domain.GetBearerTokenFromRequest(c.Request())
		if bearerToken == "" {
			err := errors.New("no bearer token provided")
			return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryUnauthorized))
		}

		var userAccessToken models.UserAccessToken
		tx := models.Tx(c)
		if err := userAccessToken.FindByAccessToken(tx, bearerToken); err != nil {
			return reportError(c, err)
		}

		if userAccessToken.IsExpired() {
			newToken, err := userAccessToken.Replace(tx)
			if err != nil {
				return reportError(c, err)
			}
			userAccessToken = newToken
			c.Response().Header().Set("Authorization", "Bearer "+newToken.AccessToken)
		}

		if userAccessToken.UserID.Valid {
			user, err := userAccessToken.GetUser(tx)
			if err != nil {
				err = fmt.Errorf("error finding user by access token, %s", err)
				return reportError(c, err)
			}

			if user.IsBlocked {
				err := fmt.Errorf("request by blocked user %s", user.ID)
				return reportError(c, api.NewAppError(err, api.ErrorUserBlocked, api.CategoryForbidden))
			}
			c.Set(domain.ContextKeyCurrentUser, user)

			log.SetUser(c, user.ID.String(), user.GetName(), user.Email)
			newExtra(c, "user_id", user.ID)
			newExtra(c, "email", user.Email)
		} else {
			guest, err := userAccessToken.GetGuest(tx)
			if err != nil {
				err = fmt.Errorf("error finding guest by access token, %s", err)
				return reportError(c, err)
			}
			c.Set(domain.ContextKeyCurrentGuest, guest)

			log.SetUser(c, guest.ID.String(), guest.GetName(), "")
			newExtra(c, "guest_id", guest.ID)
		}

		newExtra(c, "ip", c.Request().RemoteAddr)

		return next(c)
	}
}

// currentPrincipalID returns the ID of whichever principal is on the context.
func currentPrincipalID(c buffalo.Context) (uuid.UUID, bool, error) {
	if user := models.CurrentUser(c); !user.ID.IsNil() {
		return user.ID, true, nil
	}
	if guest := models.CurrentGuest(c); !guest.ID.IsNil() {
		return guest.ID, false, nil
	}
	return uuid.Nil, false, api.NewAppError(
		errors.New("no authenticated principal on request"),
		api.ErrorNoSession, api.CategoryUnauthorized)
}
