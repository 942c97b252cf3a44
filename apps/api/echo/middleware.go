package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/sarvashiksha/backend/core/user"
)

// roleMiddleware lets through active users having one of roles; any role when roles is empty.
func roleMiddleware(svc *user.Service, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if len(roles) == 0 {
				return next(ctx)
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, user.RoleAdmin)
}

func staffMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return roleMiddleware(svc, user.RoleAdmin, user.RoleTechnician)
}

// ctxUser returns the user stored by roleMiddleware.
func ctxUser(ctx echo.Context) user.User {
	usr, _ := ctx.Get(userContextKey).(user.User)
	return usr
}
