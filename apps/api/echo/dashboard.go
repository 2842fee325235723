package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/dashboard"
	"github.com/trezcool/lumina/core/user"
)

func registerDashboardAPI(g *echo.Group, jwt, ws echo.MiddlewareFunc, users user.Service, svc dashboard.Service) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		usr, err := getContextUser(ctx, users)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		wsp, err := getContextWorkspace(ctx)
		if err != nil {
			return err
		}
		stats, err := svc.Stats(ctx.Request().Context(), usr, wsp.Courses)
		if err != nil {
			return errors.Wrap(err, "computing dashboard")
		}
		return ctx.JSON(http.StatusOK, stats)
	}, jwt, ws)
}
