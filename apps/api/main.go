package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
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
	emailsvc "github.com/trezcool/kelasi/services/email"
	logsvc "github.com/trezcool/kelasi/services/logger"
	"github.com/trezcool/kelasi/storage/database"
	sqlxrepos "github.com/trezcool/kelasi/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode)) // only report to Rollbar in QA/PROD

	// set up validation
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator(enLocale.Locale())
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal("migrating database", err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	clsRepo := sqlxrepos.NewClassRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	attRepo := sqlxrepos.NewAttendanceRepository(db)
	altRepo := sqlxrepos.NewAlertRepository(db)
	jstRepo := sqlxrepos.NewJustificationRepository(db)
	ntfRepo := sqlxrepos.NewNotificationRepository(db)
	evlRepo := sqlxrepos.NewEvaluationRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	clsSvc := class.NewService(clsRepo, usrSvc)
	crsSvc := course.NewService(crsRepo, usrSvc)
	ntfSvc := notification.NewService(ntfRepo)
	altSvc := alert.NewService(altRepo, attRepo, usrSvc, mailSvc)
	attSvc := attendance.NewService(attRepo, crsSvc, altSvc)
	jstSvc := justification.NewService(jstRepo, attSvc, ntfSvc, usrSvc, mailSvc)
	evlSvc := evaluation.NewService(evlRepo, altSvc)
	stsSvc := statistics.NewService(attSvc, usrRepo, clsRepo, crsSvc)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:          conf.Server.Address(),
			Logger:           logger,
			Validate:         validate,
			Translator:       translator,
			UserSvc:          usrSvc,
			ClassSvc:         clsSvc,
			CourseSvc:        crsSvc,
			AttendanceSvc:    attSvc,
			AlertSvc:         altSvc,
			JustificationSvc: jstSvc,
			NotificationSvc:  ntfSvc,
			EvaluationSvc:    evlSvc,
			StatisticsSvc:    stsSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening on " + conf.Server.Address())
		serverErrors <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		logger.Fatal("server error", err)
	case <-app.ShutdownSignal():
		logger.Warn("integrity issue detected; shutting down")
	case sig := <-quit:
		logger.Info("shutdown started", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err = app.Stop(ctx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}
