package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/alert"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/class"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/evaluation"
	"github.com/trezcool/kelasi/core/justification"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/statistics"
	"github.com/trezcool/kelasi/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc          user.Service
		ClassSvc         class.Service
		CourseSvc        course.Service
		AttendanceSvc    attendance.Service
		AlertSvc         alert.Service
		JustificationSvc justification.Service
		NotificationSvc  notification.Service
		EvaluationSvc    evaluation.Service
		StatisticsSvc    statistics.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		// ShutdownSignal fires when a shutdown error is caught by the error
		// handler; the main goroutine should then stop the server.
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	initJWTConfig()

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts)
	registerClassAPI(v1, jwt, s.opts)
	registerCourseAPI(v1, jwt, s.opts)
	registerAttendanceAPI(v1, jwt, s.opts)
	registerAlertAPI(v1, jwt, s.opts)
	registerJustificationAPI(v1, jwt, s.opts)
	registerNotificationAPI(v1, jwt, s.opts)
	registerEvaluationAPI(v1, jwt, s.opts)
	registerStatisticsAPI(v1, jwt, s.opts)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
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
	return ctx.String(http.StatusOK, "Welcome to Kelasi API!")
}
