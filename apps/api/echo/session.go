package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/session"
)

type sessionApi struct {
	deps ServerDeps
}

type SignInResponse struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
}

func registerSessionAPI(g *echo.Group, auth []echo.MiddlewareFunc, deps ServerDeps) {
	api := sessionApi{deps: deps}

	sg := g.Group("/session")
	sg.POST("", api.signIn)
	sg.GET("", api.retrieve, auth...)
	sg.DELETE("", api.signOut, auth...)
}

func (api *sessionApi) signIn(ctx echo.Context) error {
	var creds session.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return core.NewValidationError(errors.Wrap(err, "invalid payload"))
	}
	if err := creds.Validate(api.deps.Validate); err != nil {
		return err
	}

	sess, token, err := api.deps.Sessions.SignIn(ctx.Request().Context(), creds)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}
	return ctx.JSON(http.StatusOK, SignInResponse{Token: token, Session: sess})
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) signOut(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.Sessions.SignOut(ctx.Request().Context(), sess); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return ctx.NoContent(http.StatusNoContent)
}
