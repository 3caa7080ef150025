package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/notification"
)

type notificationApi struct {
	opts *Options
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := notificationApi{opts: opts}

	ng := g.Group("/notifications", jwt)
	ng.GET("/mine", api.queryMine, studentMiddleware())
	ng.PUT("/:id/read", api.markRead)
	ng.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *notificationApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	notifications, err := api.opts.NotificationSvc.QueryForStudent(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifications == nil {
		notifications = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifications)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ntf, err := api.opts.NotificationSvc.MarkRead(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ntf)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	if err := api.opts.NotificationSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
