package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/statistics"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_statisticsApi(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	cls := testutil.CreateClass(t, clsRepo, "6A")
	std1 := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", cls.ID)
	std2 := testutil.CreateStudent(t, usrRepo, "Bob", "bobby1", cls.ID)
	crs := testutil.CreateCourse(t, crsRepo, "Math", teacher.ID, cls.ID)

	day1 := time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	testutil.CreateRecord(t, attRepo, std1.ID, crs.ID, attendance.StatusAbsent, day1)
	testutil.CreateRecord(t, attRepo, std1.ID, crs.ID, attendance.StatusAbsent, day2)
	testutil.CreateRecord(t, attRepo, std2.ID, crs.ID, attendance.StatusPresent, day1)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/statistics/dashboard", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/statistics/dashboard", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Admin required for stats", path: "/v1/statistics", token: getToken(t, std1), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/statistics/dashboard", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var dash statistics.Dashboard
		if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if dash.TotalStudents != 2 || dash.TotalTeachers != 1 || dash.TotalClasses != 1 {
			t.Errorf("totals = %d/%d/%d, want 2/1/1", dash.TotalStudents, dash.TotalTeachers, dash.TotalClasses)
		}
		if dash.GlobalAbsenceRate != 66.7 {
			t.Errorf("global absence rate = %v, want 66.7", dash.GlobalAbsenceRate)
		}
		if dash.MostAbsentStudent == nil || dash.MostAbsentStudent.ID != std1.ID || dash.MostAbsentStudent.Absences != 2 {
			t.Errorf("most absent student = %+v, want %s with 2 absences", dash.MostAbsentStudent, std1.ID)
		}
		if dash.MostAbsentClass == nil || dash.MostAbsentClass.Name != cls.Name || dash.MostAbsentClass.Absences != 2 {
			t.Errorf("most absent class = %+v, want %s with 2 absences", dash.MostAbsentClass, cls.Name)
		}
	})

	t.Run("filtered by class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/statistics?class="+cls.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var rpt statistics.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &rpt); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		want := statistics.Breakdown{Present: 1, Absent: 2, Total: 3}
		if rpt.Summary != want {
			t.Errorf("summary = %+v, want %+v", rpt.Summary, want)
		}
		if rpt.AbsenceRate != 66.7 {
			t.Errorf("absence rate = %v, want 66.7", rpt.AbsenceRate)
		}
		if rpt.PerCourse[crs.Name] != want {
			t.Errorf("per course = %+v, want %+v", rpt.PerCourse[crs.Name], want)
		}
		if rpt.PerClass[cls.Name] != want {
			t.Errorf("per class = %+v, want %+v", rpt.PerClass[cls.Name], want)
		}
		if len(rpt.Monthly) != 12 {
			t.Fatalf("monthly points = %d, want 12", len(rpt.Monthly))
		}
		march := rpt.Monthly[2]
		if march.Absences != 2 || march.PresenceRate != 33.3 {
			t.Errorf("march = %+v, want 2 absences at 33.3%% presence", march)
		}
	})

	t.Run("filtered by unknown course is empty", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/statistics?course=nope", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var rpt statistics.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &rpt); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if rpt.Summary.Total != 0 || rpt.AbsenceRate != 0 {
			t.Errorf("summary = %+v, want empty", rpt.Summary)
		}
	})
}
