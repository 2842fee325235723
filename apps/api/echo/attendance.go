package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/attendance"
	"github.com/trezcool/lumina/core/user"
)

var errRosterFileRequired = errors.New("a csv file is required")

type attendanceApi struct {
	users user.Service
	svc   attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, users user.Service, svc attendance.Service) {
	api := attendanceApi{users: users, svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.GET("/me", api.me)

	sg := ag.Group("", staffMiddleware())
	sg.GET("/students", api.students)
	sg.POST("/roster", api.importRoster)
	sg.POST("", api.finalize)
	sg.GET("/records", api.records)
	sg.GET("/stats/:id", api.stats)
	sg.GET("/export", api.export)
	sg.GET("/export/daily", api.exportDaily)
	sg.POST("/export/email", api.emailReport)
}

func (api *attendanceApi) students(ctx echo.Context) error {
	students, err := api.svc.Students(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []attendance.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *attendanceApi) importRoster(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errRosterFileRequired, core.FieldError{Field: "file", Error: errRosterFileRequired.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	students, err := api.svc.ImportRoster(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "importing roster")
	}
	return ctx.JSON(http.StatusCreated, students)
}

func (api *attendanceApi) finalize(ctx echo.Context) error {
	var data attendance.NewRegister
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegister")
	}

	records, err := api.svc.Finalize(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "finalizing attendance")
	}
	return ctx.JSON(http.StatusCreated, FinalizeResponse{Records: records, Stats: attendance.ComputeStats(records)})
}

func (api *attendanceApi) records(ctx echo.Context) error {
	var filter attendance.RecordFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to RecordFilter")
	}
	records, err := api.svc.Records(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// me is the student's own attendance.
func (api *attendanceApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	student, err := api.svc.StudentFor(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	records, err := api.svc.Records(ctx.Request().Context(), attendance.RecordFilter{StudentID: student.ID})
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, StudentAttendance{
		Student: student,
		Stats:   attendance.ComputeStats(records),
		Records: records,
	})
}

func (api *attendanceApi) export(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := api.svc.Export(ctx.Request().Context(), &buf); err != nil {
		return errors.Wrap(err, "exporting attendance")
	}
	return attachment(ctx, attendance.ReportFilename, &buf)
}

func (api *attendanceApi) exportDaily(ctx echo.Context) error {
	var filter attendance.RecordFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to RecordFilter")
	}
	filter.Clean()
	if filter.Date == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}

	var buf bytes.Buffer
	if err := api.svc.ExportDaily(ctx.Request().Context(), &buf, filter.Date, filter.CourseID); err != nil {
		return errors.Wrap(err, "exporting daily attendance")
	}
	return attachment(ctx, attendance.DailyFilename(filter.Date), &buf)
}

// emailReport sends the complete report to the requesting staff member.
func (api *attendanceApi) emailReport(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.EmailReport(ctx.Request().Context(), usr); err != nil {
		return errors.Wrap(err, "emailing report")
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "The report is on its way to " + usr.Email + "."})
}

func attachment(ctx echo.Context, filename string, buf *bytes.Buffer) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, attendance.XLSXMimeType, buf.Bytes())
}

type (
	FinalizeResponse struct {
		Records []attendance.Record `json:"records"`
		Stats   attendance.Stats    `json:"stats"`
	}

	StudentAttendance struct {
		Student attendance.Student  `json:"student"`
		Stats   attendance.Stats    `json:"stats"`
		Records []attendance.Record `json:"records"`
	}
)
