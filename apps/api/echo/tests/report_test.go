package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/report"
	"github.com/vipinkoroth/sarvodaya/core/user"
	testutil "github.com/vipinkoroth/sarvodaya/tests"
)

func seedReportData(t *testing.T) {
	t.Helper()

	if _, err := feesSvc.Update(fees.UpdateConfig{
		DevelopmentFees: map[string]int{"5": 4000, "6": 5000},
		BusStops:        map[string]int{"Market Square": 900},
	}); err != nil {
		t.Fatalf("feesSvc.Update(): %v", err)
	}

	anu := testutil.CreateStudent(t, studentRepo, "A100", "Anu Thomas", "5", "A", "Market Square", 0)
	binu := testutil.CreateStudent(t, studentRepo, "A101", "Binu Joseph", "5", "A", "", 0)
	chinnu := testutil.CreateStudent(t, studentRepo, "A102", "Chinnu Mathew", "6", "B", "Market Square", 100)

	testutil.CreatePayment(t, paymentRepo, anu, 1000, 400, 0, "", "clerk")
	testutil.CreatePayment(t, paymentRepo, binu, 4000, 0, 0, "", "clerk")
	testutil.CreatePayment(t, paymentRepo, chinnu, 2500, 0, 250, "sports day", "clerk")
}

func Test_reportApi_byClass(t *testing.T) {
	resetDB(t)
	seedReportData(t)

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/reports/classes", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}

	var rows []report.GroupSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d; want 2", len(rows))
	}
	r5 := rows[0]
	if r5.Key != "5-A" {
		t.Fatalf("rows[0].Key = %q; want %q", r5.Key, "5-A")
	}
	if r5.Students != 2 {
		t.Errorf("Students = %d; want 2", r5.Students)
	}
	if r5.DevelopmentTotal != 8000 || r5.DevelopmentPaid != 5000 || r5.DevelopmentRemaining != 3000 {
		t.Errorf("development rollup = %+v", r5)
	}
	if r5.BusTotal != 900 || r5.BusPaid != 400 || r5.BusRemaining != 500 {
		t.Errorf("bus rollup = %+v", r5)
	}
}

func Test_reportApi_byMonth(t *testing.T) {
	resetDB(t)
	seedReportData(t)

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/reports/months", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}

	var rows []report.MonthSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d; want 1", len(rows))
	}
	now := time.Now().UTC()
	if want := fmt.Sprintf("%d-%02d", now.Year(), int(now.Month())); rows[0].Month != want {
		t.Errorf("Month = %q; want %q", rows[0].Month, want)
	}
	if rows[0].Payments != 3 || rows[0].Total != 8150 {
		t.Errorf("month rollup = %+v", rows[0])
	}
	if rows[0].DevelopmentFee != 7500 || rows[0].BusFee != 400 || rows[0].SpecialFee != 250 {
		t.Errorf("month split = %+v", rows[0])
	}
}

func Test_reportApi_formats(t *testing.T) {
	resetDB(t)
	seedReportData(t)

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)
	token := getToken(t, clerk)

	t.Run("csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/classes?format=csv", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Content-Type = %q; want text/csv", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "class-dues.csv") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		if len(lines) != 3 { // header + 2 classes
			t.Fatalf("len(lines) = %d; want 3:\n%s", len(lines), rec.Body.String())
		}
		if !strings.HasPrefix(lines[0], "class,students,") {
			t.Errorf("header = %q", lines[0])
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/stops?format=xlsx", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "stop-dues.xlsx") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
			t.Error("body is not a zip archive")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/classes?format=pdf", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func Test_reportApi_bySection(t *testing.T) {
	resetDB(t)
	seedReportData(t)

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/reports/sections", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}

	var rows []report.GroupSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	// classes 5 and 6 are both UP; a single section row
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d; want 1", len(rows))
	}
	if rows[0].Key != "up" {
		t.Errorf("Key = %q; want %q", rows[0].Key, "up")
	}
	if rows[0].Students != 3 {
		t.Errorf("Students = %d; want 3", rows[0].Students)
	}
}

func Test_reportApi_balances(t *testing.T) {
	resetDB(t)
	seedReportData(t)

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/reports/balances", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}

	var rows []report.BalanceRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d; want 3", len(rows))
	}

	// ordered by class key, then admission number
	wantOrder := []string{"A100", "A101", "A102"}
	for i, admissionNo := range wantOrder {
		if rows[i].AdmissionNo != admissionNo {
			t.Errorf("rows[%d].AdmissionNo = %q; want %q", i, rows[i].AdmissionNo, admissionNo)
		}
	}

	anu := rows[0]
	if anu.DevelopmentRemaining != 3000 || anu.BusRemaining != 500 || anu.TotalRemaining != 3500 {
		t.Errorf("anu = %+v", anu)
	}

	// fully paid up, no bus
	binu := rows[1]
	if binu.DevelopmentRemaining != 0 || binu.BusTotal != 0 || binu.TotalRemaining != 0 {
		t.Errorf("binu = %+v", binu)
	}

	// discounted bus fee, special fee reported but not owed
	chinnu := rows[2]
	if chinnu.BusTotal != 800 || chinnu.SpecialPaid != 250 || chinnu.TotalRemaining != 3300 {
		t.Errorf("chinnu = %+v", chinnu)
	}

	// exports carry the student identity columns
	req, rec = newAuthRequest(http.MethodGet, "/v1/reports/balances?format=csv", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv: code = %v; want %v", rec.Code, http.StatusOK)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "student-dues.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if body := rec.Body.String(); !strings.HasPrefix(body, "admission_no,name,class,bus_stop,") {
		t.Errorf("csv header = %q", strings.SplitN(body, "\n", 2)[0])
	}
}
