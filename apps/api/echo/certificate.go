package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/certificate"
	"github.com/trezcool/lumina/core/user"
)

type certificateApi struct {
	users user.Service
	svc   certificate.Service
}

func registerCertificateAPI(g *echo.Group, jwt, ws echo.MiddlewareFunc, users user.Service, svc certificate.Service) {
	api := certificateApi{users: users, svc: svc}

	cg := g.Group("/certificates")
	cg.GET("/verify/:code", api.verify)
	cg.GET("", api.query, jwt, ws)
}

// query renders the certificates earned on the user's shelf.
func (api *certificateApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}

	certs, err := api.svc.Sync(ctx.Request().Context(), usr, ws.Courses.Courses())
	if err != nil {
		return errors.Wrap(err, "syncing certificates")
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *certificateApi) verify(ctx echo.Context) error {
	cert, err := api.svc.Verify(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "verifying certificate")
	}
	return ctx.JSON(http.StatusOK, cert)
}
