package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core/alert"
	"github.com/trezcool/kelasi/core/evaluation"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_evaluationApi_createAndQuery(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	cls := testutil.CreateClass(t, clsRepo, "6A")
	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", cls.ID)
	crs := testutil.CreateCourse(t, crsRepo, "Math", teacher.ID, cls.ID)

	reqMsg := "this field is required"

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student required", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "required fields", token: getToken(t, std), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacher_id": reqMsg, "course_id": reqMsg, "rating": reqMsg}),
		},
		{
			name: "rating out of range", token: getToken(t, std), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, evaluation.NewEvaluation{TeacherID: teacher.ID, CourseID: crs.ID, Rating: 9}),
			wantData: marchallObj(t, map[string]string{"rating": "rating must be 5 or less"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/evaluations"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, evaluation.NewEvaluation{TeacherID: teacher.ID, CourseID: crs.ID, Rating: 4, Comment: "Great class."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/evaluations", getToken(t, std), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var ev evaluation.Evaluation
		if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if ev.ID == "" || ev.TeacherID != teacher.ID || ev.Rating != 4 {
			t.Errorf("unexpected evaluation %+v", ev)
		}
	})

	t.Run("query is anonymous", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/evaluations", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var evaluations []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &evaluations); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(evaluations) != 1 {
			t.Fatalf("evaluations = %d, want 1", len(evaluations))
		}
		if _, ok := evaluations[0]["student_id"]; ok {
			t.Error("student identity leaked in evaluation payload")
		}
	})

	t.Run("query is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/evaluations", getToken(t, std))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_evaluationApi_report(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	cls := testutil.CreateClass(t, clsRepo, "6A")
	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", cls.ID)
	crs := testutil.CreateCourse(t, crsRepo, "Math", teacher.ID, cls.ID)

	ev, err := evlRepo.CreateEvaluation(context.Background(), evaluation.Evaluation{
		StudentID: std.ID,
		TeacherID: teacher.ID,
		CourseID:  crs.ID,
		Rating:    1,
		Comment:   "Never shows up on time.",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvaluation() failed: %v", err)
	}

	adminToken := getToken(t, admin)
	body := marchallObj(t, evaluation.NewReport{Message: "Please see the principal about your punctuality."})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/evaluations/" + ev.ID + "/report", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/evaluations/" + ev.ID + "/report", token: getToken(t, teacher), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "message required", path: "/v1/evaluations/" + ev.ID + "/report", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"message": "this field is required"}),
		},
		{
			name: "unknown evaluation", path: "/v1/evaluations/nope/report", token: adminToken, body: body, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "evaluation not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("reported", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/evaluations/"+ev.ID+"/report", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var alt alert.Alert
		if err := json.Unmarshal(rec.Body.Bytes(), &alt); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if alt.Category != alert.CategorySummons || alt.TeacherID != teacher.ID {
			t.Errorf("unexpected alert %+v", alt)
		}

		// the teacher sees the summons
		req, rec = newAuthRequest(http.MethodGet, "/v1/alerts/mine", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var alerts []alert.Alert
		if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(alerts) != 1 || alerts[0].ID != alt.ID {
			t.Errorf("alerts = %+v, want the summons", alerts)
		}
	})

	t.Run("destroyed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/evaluations/"+ev.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, err := evlRepo.GetEvaluationByID(context.Background(), ev.ID); err != evaluation.ErrNotFound {
			t.Errorf("evaluation was not deleted; err = %v", err)
		}
	})
}
