package evaluation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/alert"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("evaluation not found")
)

type (
	Repository interface {
		CreateEvaluation(ctx context.Context, ev Evaluation) (Evaluation, error)
		GetEvaluationByID(ctx context.Context, id string) (Evaluation, error)
		// FilterEvaluations applies AND operation on available QueryFilter
		// fields and returns evaluations ordered by creation desc.
		FilterEvaluations(ctx context.Context, filter QueryFilter) ([]Evaluation, error)
		DeleteEvaluationsByID(ctx context.Context, ids ...string) error
	}

	// Summoner raises summons alerts; implemented by the alert service.
	Summoner interface {
		CreateSummons(ctx context.Context, ns alert.NewSummons) (alert.Alert, error)
	}

	Service interface {
		Create(ctx context.Context, ne NewEvaluation, std user.User) (Evaluation, error)
		GetByID(ctx context.Context, id string) (Evaluation, error)
		Query(ctx context.Context, filter QueryFilter) ([]Evaluation, error)
		// Report escalates the evaluation to its teacher as a summons alert.
		Report(ctx context.Context, evaluationID string, nr NewReport) (alert.Alert, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		summons Summoner
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, summons Summoner) Service {
	return &service{repo: repo, summons: summons}
}

func (svc *service) Create(ctx context.Context, ne NewEvaluation, std user.User) (Evaluation, error) {
	ev := Evaluation{
		StudentID: std.ID,
		TeacherID: ne.TeacherID,
		CourseID:  ne.CourseID,
		Rating:    ne.Rating,
		Comment:   ne.Comment,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateEvaluation(ctx, ev)
}

func (svc *service) GetByID(ctx context.Context, id string) (Evaluation, error) {
	return svc.repo.GetEvaluationByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Evaluation, error) {
	return svc.repo.FilterEvaluations(ctx, filter)
}

func (svc *service) Report(ctx context.Context, evaluationID string, nr NewReport) (alert.Alert, error) {
	ev, err := svc.repo.GetEvaluationByID(ctx, evaluationID)
	if err != nil {
		return alert.Alert{}, err
	}
	return svc.summons.CreateSummons(ctx, alert.NewSummons{
		TeacherID: ev.TeacherID,
		CourseID:  ev.CourseID,
		Message:   nr.Message,
	})
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEvaluationsByID(ctx, ids...)
}
