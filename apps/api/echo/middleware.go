package echoapi

import (
	"github.com/labstack/echo/v4"
)

// roleMiddleware only lets sessions with one of roles through (any session when roles is empty).
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := getContextSession(ctx)
			if err != nil {
				return err
			}
			if sess.HasRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
