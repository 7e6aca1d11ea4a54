package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core/payment"
)

var errPaymentNotFoundInCtx = errors.New("payment object not found in echo.Context")

type paymentApi struct {
	svc      payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc payment.Service, validate *validator.Validate) {
	api := paymentApi{
		svc:      svc,
		validate: validate,
	}

	pg := g.Group("/payments", jwt)
	pg.POST("", api.create, officeMiddleware())
	pg.GET("", api.query)
	pg.DELETE("", api.destroyMultiple, adminMiddleware())

	// detail endpoints
	dg := pg.Group("/:id", ctxPaymentMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, officeMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.Create(data, claims.Username)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}

	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) query(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}
	// resolved via student lookup, not bound from the query string
	filter.BusStop = ctx.QueryParam("bus_stop")
	ordering := new(Ordering)
	ordering.Bind(ctx)

	payments, err := api.svc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get("object").(payment.Payment)
	if !ok {
		return errors.Wrap(errPaymentNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) update(ctx echo.Context) error {
	p, ok := ctx.Get("object").(payment.Payment)
	if !ok {
		return errors.Wrap(errPaymentNotFoundInCtx, "retrieving object from context")
	}

	var data payment.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(p.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating payment")
	}

	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	p, ok := ctx.Get("object").(payment.Payment)
	if !ok {
		return errors.Wrap(errPaymentNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(p.ID); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *paymentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting payments")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func ctxPaymentMiddleware(svc payment.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if p, err := svc.GetByID(ctx.Param("id")); err == nil {
				ctx.Set("object", p)
				return next(ctx)
			} else if errors.Cause(err) != payment.ErrNotFound {
				return errors.Wrap(err, "finding payment by ID")
			}
			return errHttpNotFound
		}
	}
}
