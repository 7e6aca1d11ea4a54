package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/vipinkoroth/sarvodaya/apps/api/echo"
	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/user"
	testutil "github.com/vipinkoroth/sarvodaya/tests"
)

func Test_adminApi_clearData(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.in", "", []string{user.RoleAdmin}, true)
	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	config := fees.Config{
		DevelopmentFees: map[string]int{"5": 4000},
		BusStops:        map[string]int{"Market Square": 900},
	}
	if _, err := feesRepo.SaveConfig(context.Background(), config); err != nil {
		t.Fatalf("SaveConfig(): %v", err)
	}

	anu := testutil.CreateStudent(t, studentRepo, "A100", "Anu Thomas", "5", "A", "Market Square", 0)
	binu := testutil.CreateStudent(t, studentRepo, "A101", "Binu George", "5", "A", "", 0)
	testutil.CreatePayment(t, paymentRepo, anu, 1000, 400, 0, "", "clerk")
	testutil.CreatePayment(t, paymentRepo, binu, 4000, 0, 0, "", "clerk")
	testutil.CreateTeacherEntry(t, collectionRepo, "5-A", collection.SectionUP, "uphead", collection.CategoryBusFee, 400, "uphead")
	testutil.CreateSectionEntry(t, collectionRepo, collection.SectionUP, collection.CategoryBusFee, 400, "uphead")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, clerk), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/data", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Admin wipes the year", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/data", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp echoapi.ClearDataResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		want := map[string]int{"payments": 2, "students": 2, "teacher_entries": 1, "section_entries": 1}
		for dataset, n := range want {
			if resp.Cleared[dataset] != n {
				t.Errorf("Cleared[%q] = %d; want %d", dataset, resp.Cleared[dataset], n)
			}
		}
		if resp.Errors != nil {
			t.Errorf("Errors = %v; want none", resp.Errors)
		}

		ctx := context.Background()
		if students, _ := studentRepo.QueryStudents(ctx, nil, nil); len(students) != 0 {
			t.Errorf("students survived the wipe: %d", len(students))
		}
		if payments, _ := paymentRepo.QueryPayments(ctx, nil, nil); len(payments) != 0 {
			t.Errorf("payments survived the wipe: %d", len(payments))
		}

		// accounts and the fee configuration stay put
		if users, _ := usrRepo.QueryUsers(ctx, nil, nil); len(users) != 2 {
			t.Errorf("len(users) = %d; want 2", len(users))
		}
		conf, err := feesRepo.GetConfig(ctx)
		if err != nil {
			t.Fatalf("GetConfig(): %v", err)
		}
		if conf.DevelopmentFees["5"] != 4000 {
			t.Errorf("fee config did not survive the wipe: %+v", conf)
		}
	})

	t.Run("Idempotent on an empty school", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/data", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp echoapi.ClearDataResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		for dataset, n := range resp.Cleared {
			if n != 0 {
				t.Errorf("Cleared[%q] = %d; want 0", dataset, n)
			}
		}
	})
}
