package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/session"
	"github.com/trezcool/lumina/core/user"
)

var contextWorkspaceKey = "workspace"

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// staffMiddleware lets instructors and admins through.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.IsInstructor {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// workspaceMiddleware loads the active user and opens their workspace.
// Deactivated accounts are turned away even while their token is still valid.
func workspaceMiddleware(svc user.Service, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsActive {
				store.Close(usr.ID)
				return errAccountDeactivated
			}
			ws, err := store.Open(ctx.Request().Context(), usr.ID)
			if err != nil {
				return errors.Wrap(err, "opening workspace")
			}
			ctx.Set(contextWorkspaceKey, ws)
			return next(ctx)
		}
	}
}

func getContextWorkspace(ctx echo.Context) (*session.Workspace, error) {
	if ws, ok := ctx.Get(contextWorkspaceKey).(*session.Workspace); ok {
		return ws, nil
	}
	return nil, errors.New("workspace not found in echo.Context")
}
