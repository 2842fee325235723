package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/user"
)

type assessmentApi struct {
	users user.Service
	svc   assessment.Service
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, users user.Service, svc assessment.Service) {
	api := assessmentApi{users: users, svc: svc}

	ag := g.Group("/assessments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, staffMiddleware())
	ag.GET("/performance", api.performance)
}

func (api *assessmentApi) query(ctx echo.Context) error {
	list, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing assessments")
	}
	if list == nil {
		list = []assessment.Assessment{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *assessmentApi) create(ctx echo.Context) error {
	var data assessment.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

// performance reports the caller's results; staff may look up any student with ?student_id=.
func (api *assessmentApi) performance(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	studentID := usr.ID
	if id := core.CleanString(ctx.QueryParam("student_id")); id != "" && id != usr.ID {
		if !usr.IsStaff() {
			return errHttpForbidden
		}
		studentID = id
	}

	perf, err := api.svc.Performance(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "computing performance")
	}
	return ctx.JSON(http.StatusOK, perf)
}
