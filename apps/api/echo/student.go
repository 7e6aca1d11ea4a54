package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/report"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

var errStudentNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	svc        student.Service
	paymentSvc payment.Service
	reportSvc  report.Service
	validate   *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.Service,
	paymentSvc payment.Service,
	reportSvc report.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:        svc,
		paymentSvc: paymentSvc,
		reportSvc:  reportSvc,
		validate:   validate,
	}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create, officeMiddleware())
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	// detail endpoints
	dg := sg.Group("/:id", ctxStudentMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, officeMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.GET("/payments", api.payments)
	dg.GET("/balance", api.balance)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	st, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}

	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	st, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(st, api.validate); err != nil {
		return err
	}

	st, err := api.svc.Update(st.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}

	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	st, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(st.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// payments lists the payment history of a student, most recent first.
func (api *studentApi) payments(ctx echo.Context) error {
	st, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	payments, err := api.paymentSvc.QueryForStudent(st.ID)
	if err != nil {
		return errors.Wrap(err, "querying student payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

// balance returns the student's outstanding dues per fee head.
func (api *studentApi) balance(ctx echo.Context) error {
	st, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}

	bal, err := api.reportSvc.StudentBalance(st.ID)
	if err != nil {
		return errors.Wrap(err, "computing student balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

func ctxStudentMiddleware(svc student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if st, err := svc.GetByID(ctx.Param("id")); err == nil {
				ctx.Set("object", st)
				return next(ctx)
			} else if errors.Cause(err) != student.ErrNotFound {
				return errors.Wrap(err, "finding student by ID")
			}
			return errHttpNotFound
		}
	}
}
