package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core/class"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_classApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	testutil.CreateClass(t, clsRepo, "6A")

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "name required", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "name taken", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, class.NewClass{Name: "6A"}),
			wantData: marchallObj(t, map[string]string{"name": "a class with this name already exists"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/classes"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, class.NewClass{Name: "6B", Description: "Sixth grade, section B"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var cls class.Class
		if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if cls.ID == "" || cls.Name != "6B" {
			t.Errorf("unexpected class %+v", cls)
		}
	})

	t.Run("query", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classes", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var classes []class.Class
		if err := json.Unmarshal(rec.Body.Bytes(), &classes); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(classes) != 2 {
			t.Errorf("classes = %d, want 2", len(classes))
		}
	})
}

func Test_classApi_assignStudent(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	cls := testutil.CreateClass(t, clsRepo, "6A")
	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", "")

	adminToken := getToken(t, admin)
	body := marchallObj(t, echoapi.AssignStudentRequest{StudentID: std.ID})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/classes/" + cls.ID + "/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/classes/" + cls.ID + "/students", token: getToken(t, teacher), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "student required", path: "/v1/classes/" + cls.ID + "/students", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "this field is required"}),
		},
		{
			name: "unknown class", path: "/v1/classes/nope/students", token: adminToken, body: body, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
		{
			name: "not a student", path: "/v1/classes/" + cls.ID + "/students", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.AssignStudentRequest{StudentID: teacher.ID}),
			wantData: marchallObj(t, map[string]string{"student_id": "user is not a student"}),
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

	t.Run("assigned", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes/"+cls.ID+"/students", adminToken, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Student assigned to class."})}
		checkCodeAndData(t, tt, rec)

		refreshed, err := usrRepo.GetUserByID(context.Background(), std.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if refreshed.ClassID != cls.ID {
			t.Errorf("ClassID = %q, want %q", refreshed.ClassID, cls.ID)
		}
	})

	t.Run("roster", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classes/"+cls.ID+"/students", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var students []user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(students) != 1 || students[0].ID != std.ID {
			t.Errorf("roster = %+v, want just %s", students, std.ID)
		}
	})
}
