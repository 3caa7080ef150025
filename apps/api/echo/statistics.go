package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/statistics"
)

type statisticsApi struct {
	opts *Options
}

func registerStatisticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := statisticsApi{opts: opts}

	sg := g.Group("/statistics", jwt, adminMiddleware())
	sg.GET("", api.query)
	sg.GET("/dashboard", api.dashboard)
}

func (api *statisticsApi) dashboard(ctx echo.Context) error {
	dash, err := api.opts.StatisticsSvc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *statisticsApi) query(ctx echo.Context) error {
	filter := new(statistics.Filter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}

	rpt, err := api.opts.StatisticsSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying statistics")
	}
	return ctx.JSON(http.StatusOK, rpt)
}
