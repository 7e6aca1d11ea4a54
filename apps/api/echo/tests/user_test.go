package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/vipinkoroth/sarvodaya/apps/api/echo"
	"github.com/vipinkoroth/sarvodaya/core/user"
	emailsvc "github.com/vipinkoroth/sarvodaya/services/email"
	testutil "github.com/vipinkoroth/sarvodaya/tests"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "S3kr3tPa$$", []string{user.RoleClerk}, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.in", "S3kr3tPa$$", []string{user.RoleTeacher}, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Username: "this field is required", Password: "this field is required"}),
		},
		{
			name: "bad credentials", body: marchallObj(t, echoapi.LoginRequest{Username: "clerk", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "ghost", Password: "S3kr3tPa$$"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echoapi.LoginRequest{Username: "ndog", Password: "S3kr3tPa$$"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "login by username", body: marchallObj(t, echoapi.LoginRequest{Username: "clerk", Password: "S3kr3tPa$$"}),
			wantCode: http.StatusOK,
		},
		{
			name: "login by email", body: marchallObj(t, echoapi.LoginRequest{Username: clerk.Email, Password: "S3kr3tPa$$"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB(t)

	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.in", "", []string{user.RoleAdmin}, true)
	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)
	lpHead := testutil.CreateUser(t, usrRepo, "LP Head", "lphead", "lphead@test.in", "", []string{user.RoleSectionLP}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.in", "", []string{user.RoleTeacher}, true)

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, clerk), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, admin, clerk, lpHead, teacher)},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: empty},
		{name: "search=cler", path: path("cler"), token: adminToken, wantData: marchallList(t, clerk)},
		{name: "role (unknown)", path: path("", "lol"), token: adminToken, wantData: empty},
		{name: "role=sarvodaya:", path: path("", user.RoleSection), token: adminToken, wantData: marchallList(t, lpHead)},
		{
			name: "role=clerk:,teacher:", path: path("", user.RoleClerk, user.RoleTeacher),
			token: adminToken, wantData: marchallList(t, clerk, teacher),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	resetDB(t)

	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.in", "", []string{user.RoleTeacher}, false)
	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   clerk.ID,
			Audience:  "Sarvodaya",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		IsClerk:      clerk.IsClerk(),
		Roles:        clerk.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, clerk), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.in", "", []string{user.RoleAdmin}, true)
	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "", []string{user.RoleClerk}, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, clerk), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
			body: marchallObj(t, user.NewUser{
				Name: "New Head", Username: "uphead", Email: "uphead@test.in",
				Password: "G00d Passw0rd!", PasswordConfirm: "G00d Passw0rd!", Roles: []string{user.RoleSectionUP},
			}),
		},
		{
			name: "Section head created", token: getToken(t, admin), wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "New Head", Username: "uphead", Email: "uphead@test.in",
				Password: "G00d Passw0rd!", PasswordConfirm: "G00d Passw0rd!", Roles: []string{user.RoleSectionUP},
			}),
		},
		{
			name: "Duplicate username rejected", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Other", Username: "uphead", Email: "other@test.in",
				Password: "G00d Passw0rd!", PasswordConfirm: "G00d Passw0rd!", Roles: []string{user.RoleTeacher},
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.ID == "" {
					t.Error("failed! empty user ID")
				}
				if respData.SectionScope() != "up" {
					t.Errorf("SectionScope() = %q; want %q", respData.SectionScope(), "up")
				}
				return
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	resetDB(t)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	clerk := testutil.CreateUser(t, usrRepo, "Clerk", "clerk", "clerk@test.in", "0ldPa$$word", []string{user.RoleClerk}, true)
	successData := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	// request a reset
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, echoapi.PasswordResetRequest{Email: clerk.Email}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: successData}, rec)

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	if want := (mail.Address{Name: clerk.Name, Address: clerk.Email}); msg.To[0] != want {
		t.Errorf("To = %v; want %v", msg.To[0], want)
	}

	// dig the uid & token out of the mail body
	re := regexp.MustCompile(`/password-reset/(?P<uid>[^/\s]+)/(?P<token>[^/\s]+)`)
	match := re.FindStringSubmatch(msg.TextContent)
	if match == nil {
		t.Fatalf("no reset link in body: %q", msg.TextContent)
	}
	uid, token := match[1], match[2]

	// confirm with a bad token
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", marchallObj(t, user.ResetUserPassword{
		UID: uid, Token: "b4d-t0k3n", Password: "N3w Passw0rd!", PasswordConfirm: "N3w Passw0rd!",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad token: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// confirm with the real token
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", marchallObj(t, user.ResetUserPassword{
		UID: uid, Token: token, Password: "N3w Passw0rd!", PasswordConfirm: "N3w Passw0rd!",
	}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
	}, rec)

	// old password no longer works
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, echoapi.LoginRequest{Username: "clerk", Password: "0ldPa$$word"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("old password: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// new one does
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, echoapi.LoginRequest{Username: "clerk", Password: "N3w Passw0rd!"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("new password: code = %v; want %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}
}
