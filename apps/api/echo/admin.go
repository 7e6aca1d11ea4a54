package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
	"github.com/vipinkoroth/sarvodaya/core/user"
)

type adminApi struct {
	studentSvc    student.Service
	paymentSvc    payment.Service
	collectionSvc collection.Service
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	studentSvc student.Service,
	paymentSvc payment.Service,
	collectionSvc collection.Service,
) {
	api := adminApi{
		studentSvc:    studentSvc,
		paymentSvc:    paymentSvc,
		collectionSvc: collectionSvc,
	}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.DELETE("/data", api.clearData)
}

// ClearDataResponse reports per dataset how many records were removed, or
// why removal failed. Datasets are cleared independently: a failure in one
// does not roll back the others.
type ClearDataResponse struct {
	Cleared map[string]int    `json:"cleared"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// clearData wipes students, payments and collection entries. Users and the
// fee configuration survive so the school can start a fresh year without
// re-creating accounts.
func (api *adminApi) clearData(ctx echo.Context) error {
	resp := ClearDataResponse{
		Cleared: make(map[string]int),
		Errors:  make(map[string]string),
	}

	resp.clear("payments", func() (int, error) {
		payments, err := api.paymentSvc.Query(nil, nil)
		if err != nil {
			return 0, errors.Wrap(err, "querying payments")
		}
		ids := make([]string, 0, len(payments))
		for _, p := range payments {
			ids = append(ids, p.ID)
		}
		if len(ids) == 0 {
			return 0, nil
		}
		return len(ids), api.paymentSvc.Delete(ids...)
	})

	resp.clear("students", func() (int, error) {
		students, err := api.studentSvc.Query(nil, nil)
		if err != nil {
			return 0, errors.Wrap(err, "querying students")
		}
		ids := make([]string, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}
		if len(ids) == 0 {
			return 0, nil
		}
		return len(ids), api.studentSvc.Delete(ids...)
	})

	// the admin claim was checked by the route middleware; an admin actor
	// passes every section scope check
	actor := user.User{Roles: []string{user.RoleAdmin}}

	resp.clear("teacher_entries", func() (int, error) {
		entries, err := api.collectionSvc.QueryTeacherEntries(nil, actor)
		if err != nil {
			return 0, errors.Wrap(err, "querying teacher entries")
		}
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if len(ids) == 0 {
			return 0, nil
		}
		return len(ids), api.collectionSvc.DeleteTeacherEntries(actor, ids...)
	})

	resp.clear("section_entries", func() (int, error) {
		entries, err := api.collectionSvc.QuerySectionEntries(nil)
		if err != nil {
			return 0, errors.Wrap(err, "querying section entries")
		}
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if len(ids) == 0 {
			return 0, nil
		}
		return len(ids), api.collectionSvc.DeleteSectionEntries(ids...)
	})

	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (r *ClearDataResponse) clear(dataset string, fn func() (int, error)) {
	n, err := fn()
	if err != nil {
		r.Errors[dataset] = err.Error()
		return
	}
	r.Cleared[dataset] = n
}
