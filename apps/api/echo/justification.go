package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/justification"
)

type justificationApi struct {
	opts *Options
}

func registerJustificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := justificationApi{opts: opts}

	jg := g.Group("/justifications", jwt)
	jg.POST("", api.create, studentMiddleware())
	jg.GET("", api.query, adminMiddleware())
	jg.GET("/mine", api.queryMine, studentMiddleware())
	jg.GET("/:id", api.retrieve, adminMiddleware())
	jg.PUT("/:id/decision", api.decide, adminMiddleware())
	jg.PUT("/:id/comment", api.updateComment, adminMiddleware())
	jg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *justificationApi) create(ctx echo.Context) error {
	var data justification.NewJustification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJustification")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	jst, err := api.opts.JustificationSvc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, jst)
}

func (api *justificationApi) query(ctx echo.Context) error {
	filter := new(justification.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	justifications, err := api.opts.JustificationSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying justifications")
	}
	if justifications == nil {
		justifications = []justification.Justification{}
	}
	return ctx.JSON(http.StatusOK, justifications)
}

func (api *justificationApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	justifications, err := api.opts.JustificationSvc.QueryForStudent(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying justifications")
	}
	if justifications == nil {
		justifications = []justification.Justification{}
	}
	return ctx.JSON(http.StatusOK, justifications)
}

func (api *justificationApi) retrieve(ctx echo.Context) error {
	jst, err := api.opts.JustificationSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, jst)
}

func (api *justificationApi) decide(ctx echo.Context) error {
	var data justification.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	jst, err := api.opts.JustificationSvc.Decide(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, jst)
}

func (api *justificationApi) updateComment(ctx echo.Context) error {
	var data UpdateCommentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCommentRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	jst, err := api.opts.JustificationSvc.UpdateComment(ctx.Request().Context(), ctx.Param("id"), data.AdminComment)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, jst)
}

func (api *justificationApi) destroy(ctx echo.Context) error {
	if _, err := api.opts.JustificationSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.opts.JustificationSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting justification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type UpdateCommentRequest struct {
	AdminComment string `json:"admin_comment" validate:"required"`
}

func (ur *UpdateCommentRequest) Validate(validate *validator.Validate) error {
	ur.AdminComment = core.CleanString(ur.AdminComment)
	return validate.Struct(ur)
}
