package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

type courseApi struct {
	users user.Service
	svc   course.Service
}

func registerCourseAPI(g *echo.Group, jwt, ws echo.MiddlewareFunc, users user.Service, svc course.Service) {
	api := courseApi{users: users, svc: svc}

	cg := g.Group("/courses", jwt, ws)
	cg.GET("", api.query)
	cg.POST("", api.create, staffMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/enroll", api.enroll)
	cg.POST("/:id/lessons/:lesson/toggle", api.toggleLesson)
}

func (api *courseApi) query(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}

	courses, err := api.svc.List(ctx.Request().Context(), ws.Courses, filter)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	author, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	c, err := api.svc.Create(ctx.Request().Context(), data, author)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Get(ctx.Request().Context(), ws.Courses, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Enroll(ctx.Request().Context(), ws.Courses, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) toggleLesson(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.ToggleLesson(ctx.Request().Context(), ws.Courses, ctx.Param("id"), ctx.Param("lesson"))
	if err != nil {
		return errors.Wrap(err, "toggling lesson")
	}
	return ctx.JSON(http.StatusOK, c)
}
