package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core/fees"
)

type feesApi struct {
	svc      fees.Service
	validate *validator.Validate
}

func registerFeesAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc fees.Service, validate *validator.Validate) {
	api := feesApi{
		svc:      svc,
		validate: validate,
	}

	fg := g.Group("/fees", jwt)
	fg.GET("/config", api.retrieveConfig)
	fg.PUT("/config", api.updateConfig, adminMiddleware())
}

// Handlers

func (api *feesApi) retrieveConfig(ctx echo.Context) error {
	cfg, err := api.svc.Get()
	if err != nil {
		return errors.Wrap(err, "getting fee config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (api *feesApi) updateConfig(ctx echo.Context) error {
	var data fees.UpdateConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateConfig")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cfg, err := api.svc.Update(data)
	if err != nil {
		return errors.Wrap(err, "updating fee config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}
