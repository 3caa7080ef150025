package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/kelasi/apps/api/echo"
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
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
)

var (
	usrRepo user.Repository
	clsRepo class.Repository
	crsRepo course.Repository
	attRepo attendance.Repository
	altRepo alert.Repository
	jstRepo justification.Repository
	ntfRepo notification.Repository
	evlRepo evaluation.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// setup spins a fresh in-memory store and a fully wired Server for each test.
func setup(t *testing.T) Server {
	t.Helper()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	clsRepo = dummydb.NewClassRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)
	attRepo = dummydb.NewAttendanceRepository(db)
	altRepo = dummydb.NewAlertRepository(db)
	jstRepo = dummydb.NewJustificationRepository(db)
	ntfRepo = dummydb.NewNotificationRepository(db)
	evlRepo = dummydb.NewEvaluationRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	clsSvc := class.NewService(clsRepo, usrSvc)
	crsSvc := course.NewService(crsRepo, usrSvc)
	ntfSvc := notification.NewService(ntfRepo)
	altSvc := alert.NewService(altRepo, attRepo, usrSvc, mailSvc)
	attSvc := attendance.NewService(attRepo, crsSvc, altSvc)
	jstSvc := justification.NewService(jstRepo, attSvc, ntfSvc, usrSvc, mailSvc)
	evlSvc := evaluation.NewService(evlRepo, altSvc)
	stsSvc := statistics.NewService(attSvc, usrRepo, clsRepo, crsSvc)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs:   true,
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
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
