package tests

import (
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/user"
	logsvc "github.com/trezcool/kelasi/services/logger"
)

var (
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
)

func TestMain(m *testing.M) {
	_ = os.Setenv("ENV", "TEST")
	_ = os.Setenv("TEST_DEBUG", "false") // plain error payloads
	conf := core.NewConfig()

	std := log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rollbar := logsvc.NewRollbarLogger(std, conf)
	rollbar.Enable(false)
	logger = rollbar

	// set up validation
	validate = validator.New()
	enLocale := en.New()
	translator, _ = ut.New(enLocale, enLocale).GetTranslator(enLocale.Locale())
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	os.Exit(m.Run())
}
