package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core/session"
)

var (
	contextTokenKey   = "sessionToken"
	contextSessionKey = "session"
)

// newJWTConfig returns the JWT auth middleware config for tokens issued by sessions.
func newJWTConfig(sessions *session.Manager) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    sessions.SigningKey(),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(session.Claims),
	}
}

func getContextClaims(ctx echo.Context) (session.Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*session.Claims); ok {
			return *claims, nil
		}
	}
	return session.Claims{}, errUnauthorized
}

func contextSession(ctx echo.Context) (session.Session, bool) {
	sess, ok := ctx.Get(contextSessionKey).(session.Session)
	return sess, ok
}

func getContextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := contextSession(ctx); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}

// sessionMiddleware rejects tokens whose session was signed out or expired, and puts the session in the context.
func sessionMiddleware(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			sess, err := sessions.Resume(ctx.Request().Context(), claims)
			if err != nil {
				return errors.Wrap(err, "resuming session")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}
