package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/ai"
	"github.com/trezcool/lumina/core/user"
)

type aiApi struct {
	users user.Service
	svc   ai.Service
}

func registerAIAPI(g *echo.Group, jwt, ws echo.MiddlewareFunc, users user.Service, svc ai.Service) {
	api := aiApi{users: users, svc: svc}

	g.POST("/roadmaps", api.roadmap, jwt)
	g.GET("/recommendations", api.recommendations, jwt, ws)
}

func (api *aiApi) roadmap(ctx echo.Context) error {
	var data ai.RoadmapRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RoadmapRequest")
	}
	rm, err := api.svc.LearningPath(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating learning path")
	}
	return ctx.JSON(http.StatusOK, rm)
}

// recommendations suggests courses from the progress on the user's shelf.
func (api *aiApi) recommendations(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Recommendations(ctx.Request().Context(), usr, ws.Courses.Courses()))
}
