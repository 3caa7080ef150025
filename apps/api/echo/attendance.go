package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceApi struct {
	opts *Options
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{opts: opts}

	ag := g.Group("/attendance", jwt)
	ag.POST("/roll-call", api.submitRollCall, teacherMiddleware())
	ag.POST("", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/mine", api.queryMine, studentMiddleware())
	ag.PUT("/:id", api.editStatus, teacherMiddleware())
	ag.POST("/lock", api.lockDay, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *attendanceApi) submitRollCall(ctx echo.Context) error {
	var data attendance.RollCall
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RollCall")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	res, err := api.opts.AttendanceSvc.SubmitRollCall(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	rec, err := api.opts.AttendanceSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	records, err := api.opts.AttendanceSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	records, err := api.opts.AttendanceSvc.QueryForStudent(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) editStatus(ctx echo.Context) error {
	var data EditStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditStatusRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.opts.AttendanceSvc.EditStatus(ctx.Request().Context(), ctx.Param("id"), data.Status, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) lockDay(ctx echo.Context) error {
	var data LockDayRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LockDayRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	locked, err := api.opts.AttendanceSvc.LockDay(ctx.Request().Context(), data.CourseID, data.Date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LockDayResponse{Locked: locked})
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if _, err := api.opts.AttendanceSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.opts.AttendanceSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	EditStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}

	LockDayRequest struct {
		CourseID string    `json:"course_id" validate:"required"`
		Date     time.Time `json:"date" validate:"required"`
	}

	LockDayResponse struct {
		Locked int `json:"locked"`
	}
)

func (er *EditStatusRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(er)
}

func (lr *LockDayRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}
