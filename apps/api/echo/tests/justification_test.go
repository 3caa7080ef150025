package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/justification"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_justificationApi_create(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", "")
	other := testutil.CreateStudent(t, usrRepo, "Bob", "bobby1", "")
	rec := testutil.CreateRecord(t, attRepo, std.ID, "crs1", attendance.StatusAbsent, time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC))

	body := marchallObj(t, justification.NewJustification{RecordID: rec.ID, Reason: "I was sick."})
	reqMsg := "this field is required"

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student required", token: getToken(t, teacher), body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "required fields", token: getToken(t, std), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"record_id": reqMsg, "reason": reqMsg}),
		},
		{
			name: "unknown record", token: getToken(t, std), wantCode: http.StatusNotFound,
			body:     marchallObj(t, justification.NewJustification{RecordID: "nope", Reason: "I was sick."}),
			wantData: marchallObj(t, httpErr{Error: "attendance record not found"}),
		},
		{
			name: "not the record owner", token: getToken(t, other), body: body, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "you can only justify your own absences"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/justifications"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created pending", func(t *testing.T) {
		req, rr := newAuthRequest(http.MethodPost, "/v1/justifications", getToken(t, std), body)
		app.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rr.Code, rr.Body.String())
		}
		var jst justification.Justification
		if err := json.Unmarshal(rr.Body.Bytes(), &jst); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if jst.ID == "" || jst.Status != justification.StatusPending || jst.RecordID != rec.ID {
			t.Errorf("unexpected justification %+v", jst)
		}
	})
}

func Test_justificationApi_decide(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", "")
	rec := testutil.CreateRecord(t, attRepo, std.ID, "crs1", attendance.StatusAbsent, time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC))
	jst := testutil.CreateJustification(t, jstRepo, std.ID, rec.ID, "I was sick.")

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/justifications/" + jst.ID + "/decision", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/justifications/" + jst.ID + "/decision", token: getToken(t, std),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "invalid status", path: "/v1/justifications/" + jst.ID + "/decision", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, justification.Decision{Status: "maybe"}),
			wantData: marchallObj(t, map[string]string{"status": "status must be one of [accepted refused]"}),
		},
		{
			name: "unknown justification", path: "/v1/justifications/nope/decision", token: adminToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, justification.Decision{Status: justification.StatusAccepted}),
			wantData: marchallObj(t, httpErr{Error: "justification not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("accepted", func(t *testing.T) {
		body := marchallObj(t, justification.Decision{Status: justification.StatusAccepted, AdminComment: "Get well soon."})
		req, rr := newAuthRequest(http.MethodPut, "/v1/justifications/"+jst.ID+"/decision", adminToken, body)
		app.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rr.Code, rr.Body.String())
		}
		var decided justification.Justification
		if err := json.Unmarshal(rr.Body.Bytes(), &decided); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if decided.Status != justification.StatusAccepted || decided.AdminComment != "Get well soon." {
			t.Errorf("unexpected justification %+v", decided)
		}

		// the underlying record is now justified
		refreshed, err := attRepo.GetRecordByID(context.Background(), rec.ID)
		if err != nil {
			t.Fatalf("GetRecordByID() failed: %v", err)
		}
		if !refreshed.Justified {
			t.Error("record was not marked justified")
		}

		// and the student got an in-app notification
		ntfs, err := ntfRepo.QueryNotificationsForStudent(context.Background(), std.ID)
		if err != nil {
			t.Fatalf("QueryNotificationsForStudent() failed: %v", err)
		}
		if len(ntfs) != 1 {
			t.Fatalf("notifications = %d, want 1", len(ntfs))
		}
		if ntfs[0].Message != "Your justification has been accepted. Get well soon." {
			t.Errorf("notification message = %q", ntfs[0].Message)
		}
	})
}

func Test_notificationApi_mineAndMarkRead(t *testing.T) {
	app := setup(t)

	std := testutil.CreateStudent(t, usrRepo, "Alice", "alice1", "")
	other := testutil.CreateStudent(t, usrRepo, "Bob", "bobby1", "")

	ntf, err := ntfRepo.CreateNotification(context.Background(), notification.Notification{
		StudentID: std.ID,
		Message:   "Your justification has been refused.",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateNotification() failed: %v", err)
	}

	t.Run("mine", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications/mine", getToken(t, std))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, ntf)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("mark read by non-recipient", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/notifications/"+ntf.ID+"/read", getToken(t, other))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you are not the recipient of this notification"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("mark read by recipient", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/notifications/"+ntf.ID+"/read", getToken(t, std))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var read notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &read); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if !read.Read {
			t.Error("notification was not flagged as read")
		}
	})
}
