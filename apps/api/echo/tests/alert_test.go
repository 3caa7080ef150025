package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core/alert"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_alertApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", "")

	adminToken := getToken(t, admin)
	reqMsg := "this field is required"

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "required fields", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_id": reqMsg, "message": reqMsg}),
		},
		{
			name: "no target", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, alert.NewAlert{CourseID: "crs1", Message: "See me."}),
			wantData: marchallObj(t, httpErr{Error: "indicate either a student or a teacher, not both"}),
		},
		{
			name: "both targets", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, alert.NewAlert{CourseID: "crs1", StudentID: std.ID, TeacherID: teacher.ID, Message: "See me."}),
			wantData: marchallObj(t, httpErr{Error: "indicate either a student or a teacher, not both"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/alerts"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, alert.NewAlert{CourseID: "crs1", StudentID: std.ID, Message: "See the principal."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/alerts", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var alt alert.Alert
		if err := json.Unmarshal(rec.Body.Bytes(), &alt); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if alt.ID == "" || alt.Category != alert.CategoryCustom || alt.StudentID != std.ID {
			t.Errorf("unexpected alert %+v", alt)
		}
	})
}

func Test_alertApi_mineAndMarkRead(t *testing.T) {
	app := setup(t)

	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", "")
	other := testutil.CreateStudent(t, usrRepo, "Bob", "bobby1", "")

	// an absence-threshold alert raised for the student
	date := time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		testutil.CreateRecord(t, attRepo, std.ID, "crs1", attendance.StatusAbsent, date.AddDate(0, 0, i))
	}
	alt, err := altRepo.CreateAlert(context.Background(), alert.Alert{
		CourseID:  "crs1",
		StudentID: std.ID,
		Category:  alert.CategoryAbsenceThreshold,
		Threshold: 3,
		Message:   "You have 3 unjustified absences.",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAlert() failed: %v", err)
	}

	t.Run("mine", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/alerts/mine", getToken(t, std))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var alerts []alert.Alert
		if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(alerts) != 1 || alerts[0].ID != alt.ID {
			t.Errorf("alerts = %+v, want the threshold alert", alerts)
		}
	})

	t.Run("mine is empty for others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/alerts/mine", getToken(t, other))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("mark read by non-recipient", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/alerts/"+alt.ID+"/read", getToken(t, other))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you are not the recipient of this alert"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("mark read by recipient", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/alerts/"+alt.ID+"/read", getToken(t, std))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var read alert.Alert
		if err := json.Unmarshal(rec.Body.Bytes(), &read); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if !read.Read {
			t.Error("alert was not flagged as read")
		}
	})
}
