package alert_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/alert"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/user"
	emailsvc "github.com/trezcool/kelasi/services/email"
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
	testutil "github.com/trezcool/kelasi/tests"
)

type testEnv struct {
	svc     alert.Service
	altRepo alert.Repository
	attRepo attendance.Repository
	usrRepo user.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	core.Conf = &core.Config{
		AbsenceAlertThreshold: 3,
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)
	altRepo := dummydb.NewAlertRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)

	return &testEnv{
		svc:     alert.NewService(altRepo, attRepo, usrSvc, mailSvc),
		altRepo: altRepo,
		attRepo: attRepo,
		usrRepo: usrRepo,
	}
}

func Test_service_EvaluateAbsenceThreshold(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, env.usrRepo, "Alice", "alice1", "")
	date := time.Date(2021, 2, 1, 8, 0, 0, 0, time.UTC)

	// below threshold: nothing happens
	testutil.CreateRecord(t, env.attRepo, std.ID, "crs1", attendance.StatusAbsent, date)
	testutil.CreateRecord(t, env.attRepo, std.ID, "crs1", attendance.StatusAbsent, date.AddDate(0, 0, 1))
	if err := env.svc.EvaluateAbsenceThreshold(ctx, std.ID, "crs1"); err != nil {
		t.Fatalf("EvaluateAbsenceThreshold() failed: %v", err)
	}
	if n := alertCount(t, env, std.ID); n != 0 {
		t.Fatalf("alerts = %d below threshold, want 0", n)
	}

	// justified and non-absent records do not count
	rec := testutil.CreateRecord(t, env.attRepo, std.ID, "crs1", attendance.StatusAbsent, date.AddDate(0, 0, 2))
	if _, err := env.attRepo.SetRecordJustified(ctx, rec.ID); err != nil {
		t.Fatalf("SetRecordJustified() failed: %v", err)
	}
	testutil.CreateRecord(t, env.attRepo, std.ID, "crs1", attendance.StatusLate, date.AddDate(0, 0, 3))
	if err := env.svc.EvaluateAbsenceThreshold(ctx, std.ID, "crs1"); err != nil {
		t.Fatalf("EvaluateAbsenceThreshold() failed: %v", err)
	}
	if n := alertCount(t, env, std.ID); n != 0 {
		t.Fatalf("alerts = %d with justified absence, want 0", n)
	}

	// third unjustified absence raises the alert
	testutil.CreateRecord(t, env.attRepo, std.ID, "crs2", attendance.StatusAbsent, date.AddDate(0, 0, 4))
	if err := env.svc.EvaluateAbsenceThreshold(ctx, std.ID, "crs2"); err != nil {
		t.Fatalf("EvaluateAbsenceThreshold() failed: %v", err)
	}
	alerts, err := env.altRepo.FilterAlerts(ctx, alert.QueryFilter{StudentID: std.ID})
	if err != nil {
		t.Fatalf("FilterAlerts() failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d at threshold, want 1", len(alerts))
	}
	if alerts[0].Category != alert.CategoryAbsenceThreshold {
		t.Errorf("alert category = %q", alerts[0].Category)
	}
	if alerts[0].Message != "You have 3 unjustified absences." {
		t.Errorf("alert message = %q", alerts[0].Message)
	}

	// re-evaluation is a no-op while the alert stands
	if err := env.svc.EvaluateAbsenceThreshold(ctx, std.ID, "crs1"); err != nil {
		t.Fatalf("EvaluateAbsenceThreshold() re-run failed: %v", err)
	}
	if n := alertCount(t, env, std.ID); n != 1 {
		t.Errorf("alerts = %d after re-run, want still 1", n)
	}
}

func Test_service_MarkRead(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, env.usrRepo, "Alice", "alice1", "")
	other := testutil.CreateStudent(t, env.usrRepo, "Bob", "bobby1", "")
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "", user.AdminRoles, true)

	alt, err := env.svc.Create(ctx, alert.NewAlert{CourseID: "crs1", StudentID: std.ID, Message: "See the principal."})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = env.svc.MarkRead(ctx, alt.ID, other); err != alert.ErrNotRecipient {
		t.Errorf("MarkRead() by non-recipient error = %v, want %v", err, alert.ErrNotRecipient)
	}
	got, err := env.svc.MarkRead(ctx, alt.ID, std)
	if err != nil {
		t.Fatalf("MarkRead() by recipient failed: %v", err)
	}
	if !got.Read {
		t.Error("MarkRead() did not flag the alert")
	}
	if _, err = env.svc.MarkRead(ctx, alt.ID, admin); err != nil {
		t.Errorf("MarkRead() by admin failed: %v", err)
	}
	if _, err = env.svc.MarkRead(ctx, "nope", admin); err != alert.ErrNotFound {
		t.Errorf("MarkRead() error = %v, want %v", err, alert.ErrNotFound)
	}
}

func Test_service_CreateSummons(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)

	alt, err := env.svc.CreateSummons(ctx, alert.NewSummons{
		TeacherID: teacher.ID,
		CourseID:  "crs1",
		Message:   "Please report to the principal's office.",
	})
	if err != nil {
		t.Fatalf("CreateSummons() failed: %v", err)
	}
	if alt.Category != alert.CategorySummons {
		t.Errorf("summons category = %q", alt.Category)
	}
	if alt.TeacherID != teacher.ID || alt.StudentID != "" {
		t.Errorf("summons must target the teacher only; got student=%q teacher=%q", alt.StudentID, alt.TeacherID)
	}

	alerts, err := env.svc.QueryForTeacher(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("QueryForTeacher() failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("QueryForTeacher() alerts = %d, want 1", len(alerts))
	}
}

func alertCount(t *testing.T, env *testEnv, studentID string) int {
	t.Helper()
	alerts, err := env.altRepo.FilterAlerts(context.Background(), alert.QueryFilter{StudentID: studentID})
	if err != nil {
		t.Fatalf("FilterAlerts() failed: %v", err)
	}
	return len(alerts)
}
