package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/report"
)

var (
	formatParam = "format"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type reportApi struct {
	svc report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt)
	rg.GET("/balances", api.balances)
	rg.GET("/classes", api.byClass)
	rg.GET("/stops", api.byStop)
	rg.GET("/sections", api.bySection)
	rg.GET("/months", api.byMonth)
}

// Handlers

func (api *reportApi) balances(ctx echo.Context) error {
	rows, err := api.svc.Balances()
	if err != nil {
		return errors.Wrap(err, "building balance report")
	}
	return respondReport(ctx, report.BalanceTable(rows), rows)
}

func (api *reportApi) byClass(ctx echo.Context) error {
	rows, err := api.svc.ByClass()
	if err != nil {
		return errors.Wrap(err, "building class report")
	}
	return respondReport(ctx, report.GroupTable("class-dues", "class", rows), rows)
}

func (api *reportApi) byStop(ctx echo.Context) error {
	rows, err := api.svc.ByStop()
	if err != nil {
		return errors.Wrap(err, "building bus stop report")
	}
	return respondReport(ctx, report.GroupTable("stop-dues", "bus_stop", rows), rows)
}

func (api *reportApi) bySection(ctx echo.Context) error {
	rows, err := api.svc.BySection()
	if err != nil {
		return errors.Wrap(err, "building section report")
	}
	return respondReport(ctx, report.GroupTable("section-dues", "section", rows), rows)
}

func (api *reportApi) byMonth(ctx echo.Context) error {
	rows, err := api.svc.ByMonth()
	if err != nil {
		return errors.Wrap(err, "building monthly report")
	}
	return respondReport(ctx, report.MonthTable(rows), rows)
}

// respondReport renders the report as JSON unless a `format` of csv or xlsx
// is requested, in which case the tabular form is sent as a file download.
func respondReport(ctx echo.Context, table report.Table, rows interface{}) error {
	switch ctx.QueryParam(formatParam) {
	case "csv":
		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			return errors.Wrap(err, "rendering csv")
		}
		setAttachmentHeader(ctx, table.Name+".csv")
		return ctx.Blob(http.StatusOK, contentTypeCSV, buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := table.WriteXLSX(&buf); err != nil {
			return errors.Wrap(err, "rendering xlsx")
		}
		setAttachmentHeader(ctx, table.Name+".xlsx")
		return ctx.Blob(http.StatusOK, contentTypeXLSX, buf.Bytes())
	case "":
		return ctx.JSON(http.StatusOK, rows)
	default:
		return core.NewValidationError(nil, core.FieldError{Field: formatParam, Error: "must be one of csv, xlsx"})
	}
}

func setAttachmentHeader(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}
