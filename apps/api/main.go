package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	echoapi "github.com/trezcool/lumina/apps/api/echo"
	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/ai"
	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/attendance"
	"github.com/trezcool/lumina/core/certificate"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/dashboard"
	"github.com/trezcool/lumina/core/session"
	"github.com/trezcool/lumina/core/user"
	emailsvc "github.com/trezcool/lumina/services/email"
	eventsvc "github.com/trezcool/lumina/services/events"
	genaisvc "github.com/trezcool/lumina/services/genai"
	logsvc "github.com/trezcool/lumina/services/logger"
	"github.com/trezcool/lumina/storage/database"
	"github.com/trezcool/lumina/storage/database/inmem"
	sqlxrepos "github.com/trezcool/lumina/storage/database/sqlx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf := core.Conf

	// =========================================================================
	// Set up Dependencies

	var logger core.Logger = logsvc.New(os.Stdout, conf)
	if conf.RollbarToken != "" {
		rl := logsvc.NewRollbarLogger(logsvc.New(os.Stdout, conf), conf)
		rl.Enable(!conf.Debug)
		logger = rl
	}
	logger.Info("Application initializing", map[string]interface{}{"version": conf.Build, "env": conf.Env})
	defer logger.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cancel, conf, logger); err != nil {
		logger.Fatal("application failed", err)
	}
}

func run(ctx context.Context, shutdown func(), conf *core.Config, logger core.Logger) error {
	// set up storage
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	if conf.Database.Enabled {
		sqlDB, err := database.Open(ctx, conf.Database)
		if err != nil {
			return errors.Wrap(err, "setting up database")
		}
		defer func() {
			if err := sqlDB.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		if err = database.Migrate(ctx, sqlDB.DB); err != nil {
			return errors.Wrap(err, "migrating database")
		}
		usrRepo = sqlxrepos.NewUserRepository(sqlDB)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var publisher core.EventPublisher = eventsvc.NewLogPublisher(logger)
	if conf.RabbitMQ.URL != "" {
		rmq, err := eventsvc.NewRabbitMQPublisher(conf.RabbitMQ, logger)
		if err != nil {
			return errors.Wrap(err, "setting up event publisher")
		}
		publisher = rmq
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("closing event publisher", err)
		}
	}()

	var gen ai.Generator = genaisvc.NewStub()
	if conf.GenAI.APIKey != "" {
		client, err := genaisvc.NewClient(ctx, conf.GenAI, logger)
		if err != nil {
			return errors.Wrap(err, "setting up generative client")
		}
		gen = client
	} else {
		logger.Warn("no generative API key configured, serving canned content")
	}

	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	certSvc := certificate.NewService(inmemdb.NewCertificateRepository(db), publisher, logger)
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), courseSvc, mailSvc, publisher, logger)
	assessSvc := assessment.NewService(inmemdb.NewAssessmentRepository(db), courseSvc)
	aiSvc := ai.NewService(gen, logger)
	dashSvc := dashboard.NewService(usrSvc, courseSvc, attSvc, assessSvc)

	store := session.NewStore(courseSvc, session.RecordResults(courseSvc, assessSvc, logger))
	defer store.CloseAll()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address(),
		DisableReqLogs: conf.Server.DisableReqLogs,
		Logger:         logger,
		Shutdown:       shutdown,
		Sessions:       store,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		CertificateSvc: certSvc,
		AttendanceSvc:  attSvc,
		AssessmentSvc:  assessSvc,
		AISvc:          aiSvc,
		DashboardSvc:   dashSvc,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API listening", map[string]interface{}{"address": conf.Server.Address()})
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serving API")
		}
		return nil
	})

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Start shutdown...")

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Stop(sctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		return nil
	})

	return g.Wait()
}
