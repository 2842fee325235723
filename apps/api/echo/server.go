package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/ai"
	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/attendance"
	"github.com/trezcool/lumina/core/certificate"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/dashboard"
	"github.com/trezcool/lumina/core/session"
	"github.com/trezcool/lumina/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		// Shutdown is called when a handler reports an unrecoverable error.
		Shutdown func()

		Sessions       *session.Store
		UserSvc        user.Service
		CourseSvc      course.Service
		CertificateSvc certificate.Service
		AttendanceSvc  attendance.Service
		AssessmentSvc  assessment.Service
		AISvc          ai.Service
		DashboardSvc   dashboard.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Shutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)
	ws := workspaceMiddleware(s.opts.UserSvc, s.opts.Sessions)

	registerUserAPI(v1, jwt, ws, s.opts.UserSvc, s.opts.Sessions, s.opts.Logger)
	registerCourseAPI(v1, jwt, ws, s.opts.UserSvc, s.opts.CourseSvc)
	registerCertificateAPI(v1, jwt, ws, s.opts.UserSvc, s.opts.CertificateSvc)
	registerAttendanceAPI(v1, jwt, s.opts.UserSvc, s.opts.AttendanceSvc)
	registerAssessmentAPI(v1, jwt, s.opts.UserSvc, s.opts.AssessmentSvc)
	registerQuizAPI(v1, jwt, ws, s.opts.AISvc)
	registerAIAPI(v1, jwt, ws, s.opts.UserSvc, s.opts.AISvc)
	registerDashboardAPI(v1, jwt, ws, s.opts.UserSvc, s.opts.DashboardSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Lumina API!")
}
