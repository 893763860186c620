// CrashDoc API
//
// Terms Of Service:
//
// there are no TOS at this moment, use at your own risk we take no responsibility
//
//	Schemes: https
//	Host: localhost
//	BasePath: /
//	Version: 0.0.1
//	License: MIT http://opensource.org/licenses/MIT
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	SecurityDefinitions:
//	bearerAuth:
//	    type: apiKey
//	    in: header
//	    name: Authorization
//
// swagger:meta
package actions

import (
	"github.com/gobuffalo/buffalo"
	"github.com/gobuffalo/buffalo-pop/v3/pop/popmw"
	contenttype "github.com/gobuffalo/mw-contenttype"
	i18n "github.com/gobuffalo/mw-i18n/v2"
	paramlogger "github.com/gobuffalo/mw-paramlogger"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"

	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/locales"
	"github.com/crashdoc/crashdoc-api/log"
	"github.com/crashdoc/crashdoc-api/models"
)

var app *buffalo.App

// App is where all routes and middleware for buffalo should be defined.
//
// Routing, middleware, groups, etc... are declared TOP -> DOWN.
// This means if you add a middleware to `app` *after* declaring a
// group, that group will NOT have that new middleware.
func App() *buffalo.App {
	if app == nil {
		app = buffalo.New(buffalo.Options{
			Env: domain.Env.GoEnv,
			PreWares: []buffalo.PreWare{
				cors.New(cors.Options{
					AllowCredentials: true,
					AllowedOrigins:   []string{domain.Env.UIURL},
					AllowedMethods:   []string{"HEAD", "GET", "POST", "PUT", "PATCH", "DELETE"},
					AllowedHeaders:   []string{"*"},
				}).Handler,
			},
			SessionName:  "_crashdoc_api_session",
			SessionStore: sessions.NewCookieStore([]byte(domain.Env.SessionSecret)),
		})

		var err error
		domain.T, err = i18n.New(locales.FS(), "en")
		if err != nil {
			_ = app.Stop(err)
		}
		app.Use(domain.T.Middleware())

		app.Use(log.SentryMiddleware)

		// Log request parameters (filters apply).
		app.Use(paramlogger.ParameterLogger)

		// Set the request content type to JSON
		app.Use(contenttype.Set("application/json"))

		// Wraps each request in a transaction.
		app.Use(popmw.Transaction(models.DB))

		registerCustomErrorHandler(app)

		app.Use(AuthN)
		app.Middleware.Skip(AuthN, HomeHandler, usersCreate, usersLogin, guestsCreate)

		app.GET("/", HomeHandler)

		usersGroup := app.Group("/" + domain.TypeUser)
		usersGroup.POST("/", usersCreate)
		usersGroup.POST("/login", usersLogin)
		usersGroup.GET("/me", usersMe)
		usersGroup.POST("/onboarding", usersOnboarding)
		usersGroup.GET("/email/{user_email}", usersFindByEmail)
		usersGroup.PUT("/email", usersUpdateEmail)
		usersGroup.GET("/{"+domain.TypeUser+"_id}", usersView)
		usersGroup.PUT("/{"+domain.TypeUser+"_id}", usersUpdate)

		guestsGroup := app.Group("/" + domain.TypeGuest)
		guestsGroup.POST("/", guestsCreate)
		guestsGroup.GET("/{"+domain.TypeGuest+"_id}", guestsView)
		guestsGroup.PUT("/{"+domain.TypeGuest+"_id}", guestsUpdate)

		casesGroup := app.Group("/" + domain.TypeCase)
		casesGroup.GET("/", casesList)
		casesGroup.POST("/", casesCreate)
		casesGroup.GET("/{"+domain.TypeCase+"_id}", casesView)
		casesGroup.PUT("/{"+domain.TypeCase+"_id}", casesUpdateOwner)
		casesGroup.DELETE("/{"+domain.TypeCase+"_id}", casesDestroy)

		uploadGroup := app.Group("/upload")
		uploadGroup.POST("/", uploadClassify)
		uploadGroup.POST("/file", uploadFile)
	}

	return app
}
