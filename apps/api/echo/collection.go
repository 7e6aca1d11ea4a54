package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/user"
)

var errEntryNotFoundInCtx = errors.New("collection entry object not found in echo.Context")

type collectionApi struct {
	svc      collection.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerCollectionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc collection.Service,
	userSvc user.Service,
	validate *validator.Validate,
) {
	api := collectionApi{
		svc:      svc,
		userSvc:  userSvc,
		validate: validate,
	}

	cg := g.Group("/collections", jwt, collectionMiddleware())

	// teacher -> section head handovers
	tg := cg.Group("/teachers")
	tg.POST("", api.createTeacherEntry)
	tg.GET("", api.queryTeacherEntries)
	tg.DELETE("", api.destroyTeacherEntries)
	tg.GET("/ledger", api.teacherLedger)

	tdg := tg.Group("/:id", ctxTeacherEntryMiddleware(api.svc))
	tdg.GET("", api.retrieveTeacherEntry)
	tdg.PUT("", api.updateTeacherEntry)
	tdg.DELETE("", api.destroyTeacherEntry)

	// section head -> office handovers
	sg := cg.Group("/sections")
	sg.POST("", api.createSectionEntry)
	sg.GET("", api.querySectionEntries)
	sg.DELETE("", api.destroySectionEntries, officeMiddleware())
	sg.GET("/ledger", api.sectionLedger)

	sdg := sg.Group("/:id", ctxSectionEntryMiddleware(api.svc))
	sdg.GET("", api.retrieveSectionEntry)
	sdg.PUT("", api.updateSectionEntry, officeMiddleware())
	sdg.DELETE("", api.destroySectionEntry, officeMiddleware())
}

// Teacher entry handlers

func (api *collectionApi) createTeacherEntry(ctx echo.Context) error {
	var data collection.NewTeacherEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacherEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entry, err := api.svc.CreateTeacherEntry(data, actor)
	if err != nil {
		if errors.Cause(err) == collection.ErrSectionForbidden {
			return errHttpForbidden
		}
		return errors.Wrap(err, "creating teacher entry")
	}

	return ctx.JSON(http.StatusCreated, entry)
}

func (api *collectionApi) queryTeacherEntries(ctx echo.Context) error {
	filter := new(collection.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []collection.TeacherEntry{})
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entries, err := api.svc.QueryTeacherEntries(filter, actor)
	if err != nil {
		return errors.Wrap(err, "querying teacher entries")
	}
	if entries == nil {
		entries = []collection.TeacherEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *collectionApi) retrieveTeacherEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(collection.TeacherEntry)
	if !ok {
		return errors.Wrap(errEntryNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *collectionApi) updateTeacherEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(collection.TeacherEntry)
	if !ok {
		return errors.Wrap(errEntryNotFoundInCtx, "retrieving object from context")
	}

	var data collection.UpdateEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entry, err = api.svc.UpdateTeacherEntry(entry.ID, data, actor)
	if err != nil {
		if errors.Cause(err) == collection.ErrSectionForbidden {
			return errHttpForbidden
		}
		return errors.Wrap(err, "updating teacher entry")
	}

	return ctx.JSON(http.StatusOK, entry)
}

func (api *collectionApi) destroyTeacherEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(collection.TeacherEntry)
	if !ok {
		return errors.Wrap(errEntryNotFoundInCtx, "retrieving object from context")
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteTeacherEntries(actor, entry.ID); err != nil {
		if errors.Cause(err) == collection.ErrSectionForbidden {
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting teacher entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *collectionApi) destroyTeacherEntries(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteTeacherEntries(actor, query.IDs...); err != nil {
		if errors.Cause(err) == collection.ErrSectionForbidden {
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting teacher entries")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// teacherLedger reconciles a section's teacher handovers against what the
// students of those classes actually paid.
func (api *collectionApi) teacherLedger(ctx echo.Context) error {
	sec, err := bindSection(ctx)
	if err != nil {
		return err
	}

	rows, err := api.svc.TeacherLedger(sec)
	if err != nil {
		return errors.Wrap(err, "building teacher ledger")
	}
	if rows == nil {
		rows = []collection.TeacherLedgerRow{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

// Section entry handlers

func (api *collectionApi) createSectionEntry(ctx echo.Context) error {
	var data collection.NewSectionEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSectionEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entry, err := api.svc.CreateSectionEntry(data, actor)
	if err != nil {
		if errors.Cause(err) == collection.ErrSectionForbidden {
			return errHttpForbidden
		}
		return errors.Wrap(err, "creating section entry")
	}

	return ctx.JSON(http.StatusCreated, entry)
}

func (api *collectionApi) querySectionEntries(ctx echo.Context) error {
	filter := new(collection.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []collection.SectionEntry{})
	}

	entries, err := api.svc.QuerySectionEntries(filter)
	if err != nil {
		return errors.Wrap(err, "querying section entries")
	}
	if entries == nil {
		entries = []collection.SectionEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *collectionApi) retrieveSectionEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(collection.SectionEntry)
	if !ok {
		return errors.Wrap(errEntryNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *collectionApi) updateSectionEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(collection.SectionEntry)
	if !ok {
		return errors.Wrap(errEntryNotFoundInCtx, "retrieving object from context")
	}

	var data collection.UpdateEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	entry, err := api.svc.UpdateSectionEntry(entry.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating section entry")
	}

	return ctx.JSON(http.StatusOK, entry)
}

func (api *collectionApi) destroySectionEntry(ctx echo.Context) error {
	entry, ok := ctx.Get("object").(collection.SectionEntry)
	if !ok {
		return errors.Wrap(errEntryNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.DeleteSectionEntries(entry.ID); err != nil {
		return errors.Wrap(err, "deleting section entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *collectionApi) destroySectionEntries(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteSectionEntries(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting section entries")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// sectionLedger reconciles all four sections' office handovers against the
// teacher handovers recorded for them.
func (api *collectionApi) sectionLedger(ctx echo.Context) error {
	rows, err := api.svc.SectionLedger()
	if err != nil {
		return errors.Wrap(err, "building section ledger")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func bindSection(ctx echo.Context) (collection.Section, error) {
	sec := collection.Section(core.CleanString(ctx.QueryParam("section"), true /* lower */))
	for _, s := range collection.Sections {
		if sec == s {
			return sec, nil
		}
	}
	return "", core.NewValidationError(nil, core.FieldError{Field: "section", Error: "must be one of lp, up, hs, hss"})
}

func ctxTeacherEntryMiddleware(svc collection.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if entry, err := svc.GetTeacherEntryByID(ctx.Param("id")); err == nil {
				ctx.Set("object", entry)
				return next(ctx)
			} else if errors.Cause(err) != collection.ErrNotFound {
				return errors.Wrap(err, "finding teacher entry by ID")
			}
			return errHttpNotFound
		}
	}
}

func ctxSectionEntryMiddleware(svc collection.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if entry, err := svc.GetSectionEntryByID(ctx.Param("id")); err == nil {
				ctx.Set("object", entry)
				return next(ctx)
			} else if errors.Cause(err) != collection.ErrNotFound {
				return errors.Wrap(err, "finding section entry by ID")
			}
			return errHttpNotFound
		}
	}
}
