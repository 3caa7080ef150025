package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/alert"
)

type alertApi struct {
	opts *Options
}

func registerAlertAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := alertApi{opts: opts}

	ag := g.Group("/alerts", jwt)
	ag.POST("", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/mine", api.queryMine)
	ag.GET("/:id", api.retrieve, adminMiddleware())
	ag.PUT("/:id/read", api.markRead)
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *alertApi) create(ctx echo.Context) error {
	var data alert.NewAlert
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAlert")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	alt, err := api.opts.AlertSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, alt)
}

func (api *alertApi) query(ctx echo.Context) error {
	filter := new(alert.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	alerts, err := api.opts.AlertSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying alerts")
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *alertApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var alerts []alert.Alert
	switch {
	case ctxUsr.IsTeacher():
		alerts, err = api.opts.AlertSvc.QueryForTeacher(ctx.Request().Context(), ctxUsr.ID)
	default:
		alerts, err = api.opts.AlertSvc.QueryForStudent(ctx.Request().Context(), ctxUsr.ID)
	}
	if err != nil {
		return errors.Wrap(err, "querying alerts")
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *alertApi) retrieve(ctx echo.Context) error {
	alt, err := api.opts.AlertSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, alt)
}

func (api *alertApi) markRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	alt, err := api.opts.AlertSvc.MarkRead(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, alt)
}

func (api *alertApi) destroy(ctx echo.Context) error {
	if _, err := api.opts.AlertSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.opts.AlertSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting alert")
	}
	return ctx.NoContent(http.StatusNoContent)
}
