package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/user"
	testutil "github.com/vipinkoroth/sarvodaya/tests"
)

func Test_feesApi_config(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.in", "", []string{user.RoleAdmin}, true)
	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	// unset config reads as empty maps, not an error
	req, rec := newAuthRequest(http.MethodGet, "/v1/fees/config", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("initial get: code = %v; want %v", rec.Code, http.StatusOK)
	}
	var cfg fees.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(cfg.DevelopmentFees) != 0 || len(cfg.BusStops) != 0 {
		t.Errorf("unset config not empty: %+v", cfg)
	}

	update := fees.UpdateConfig{
		DevelopmentFees: map[string]int{"5": 13000, "12-B": 15000},
		BusStops:        map[string]int{"Market Square": 900},
	}

	// only admin may change the fee structure
	req, rec = newAuthRequest(http.MethodPut, "/v1/fees/config", getToken(t, clerk), marchallObj(t, update))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/fees/config", getToken(t, admin), marchallObj(t, update))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update: code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}

	// negative amounts rejected
	req, rec = newAuthRequest(http.MethodPut, "/v1/fees/config", getToken(t, admin),
		marchallObj(t, fees.UpdateConfig{BusStops: map[string]int{"Temple Road": -1}}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative fee: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// round-trip
	req, rec = newAuthRequest(http.MethodGet, "/v1/fees/config", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if cfg.DevelopmentFees["12-B"] != 15000 || cfg.BusStops["Market Square"] != 900 {
		t.Errorf("config round-trip mismatch: %+v", cfg)
	}
}
