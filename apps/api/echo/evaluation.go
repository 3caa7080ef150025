package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/evaluation"
)

type evaluationApi struct {
	opts *Options
}

func registerEvaluationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := evaluationApi{opts: opts}

	eg := g.Group("/evaluations", jwt)
	eg.POST("", api.create, studentMiddleware())
	eg.GET("", api.query, adminMiddleware())
	eg.GET("/:id", api.retrieve, adminMiddleware())
	eg.POST("/:id/report", api.report, adminMiddleware())
	eg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *evaluationApi) create(ctx echo.Context) error {
	var data evaluation.NewEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvaluation")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ev, err := api.opts.EvaluationSvc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *evaluationApi) query(ctx echo.Context) error {
	filter := new(evaluation.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	evaluations, err := api.opts.EvaluationSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying evaluations")
	}
	if evaluations == nil {
		evaluations = []evaluation.Evaluation{}
	}
	return ctx.JSON(http.StatusOK, evaluations)
}

func (api *evaluationApi) retrieve(ctx echo.Context) error {
	ev, err := api.opts.EvaluationSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *evaluationApi) report(ctx echo.Context) error {
	var data evaluation.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	alt, err := api.opts.EvaluationSvc.Report(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, alt)
}

func (api *evaluationApi) destroy(ctx echo.Context) error {
	if _, err := api.opts.EvaluationSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.opts.EvaluationSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting evaluation")
	}
	return ctx.NoContent(http.StatusNoContent)
}
