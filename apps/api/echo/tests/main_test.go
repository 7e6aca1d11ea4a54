package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/vipinkoroth/sarvodaya/apps/api/echo"
	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/report"
	"github.com/vipinkoroth/sarvodaya/core/student"
	"github.com/vipinkoroth/sarvodaya/core/user"
	emailsvc "github.com/vipinkoroth/sarvodaya/services/email"
	smssvc "github.com/vipinkoroth/sarvodaya/services/sms"
	inmemdb "github.com/vipinkoroth/sarvodaya/storage/database/inmem"
)

var (
	conf *core.Config
	app  Server

	usrRepo        user.Repository
	studentRepo    student.Repository
	paymentRepo    payment.Repository
	feesRepo       fees.Repository
	collectionRepo collection.Repository

	studentSvc student.Service
	paymentSvc payment.Service
	feesSvc    fees.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.TestMode = true
	conf.Debug = false // assert on production-shaped error payloads

	db, err := inmemdb.Open()
	if err != nil {
		log.Fatalf("inmemdb.Open(): %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	studentRepo = inmemdb.NewStudentRepository(db)
	paymentRepo = inmemdb.NewPaymentRepository(db)
	feesRepo = inmemdb.NewFeesRepository(db)
	collectionRepo = inmemdb.NewCollectionRepository(db)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	collection.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, testLogger{})

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	smsSvc := smssvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	studentSvc = student.NewService(studentRepo)
	paymentSvc = payment.NewService(paymentRepo, studentSvc, smsSvc, conf)
	feesSvc = fees.NewService(feesRepo)
	reportSvc := report.NewService(studentSvc, paymentSvc, feesSvc)
	collectionSvc := collection.NewService(collectionRepo, paymentSvc)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        testLogger{},
			Validate:      validate,
			Translator:    translator,
			UserSvc:       usrSvc,
			StudentSvc:    studentSvc,
			PaymentSvc:    paymentSvc,
			FeesSvc:       feesSvc,
			ReportSvc:     reportSvc,
			CollectionSvc: collectionSvc,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// resetDB wipes all stored records so each test starts from a clean slate.
func resetDB(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	users, _ := usrRepo.QueryUsers(ctx, nil, nil)
	for _, usr := range users {
		if _, err := usrRepo.DeleteUsersByID(ctx, []string{usr.ID}); err != nil {
			t.Fatalf("resetDB(): %v", err)
		}
	}
	students, _ := studentRepo.QueryStudents(ctx, nil, nil)
	for _, st := range students {
		if _, err := studentRepo.DeleteStudentsByID(ctx, []string{st.ID}); err != nil {
			t.Fatalf("resetDB(): %v", err)
		}
	}
	payments, _ := paymentRepo.QueryPayments(ctx, nil, nil)
	for _, p := range payments {
		if _, err := paymentRepo.DeletePaymentsByID(ctx, []string{p.ID}); err != nil {
			t.Fatalf("resetDB(): %v", err)
		}
	}
	tEntries, _ := collectionRepo.QueryTeacherEntries(ctx, nil, nil)
	for _, e := range tEntries {
		if _, err := collectionRepo.DeleteTeacherEntriesByID(ctx, []string{e.ID}); err != nil {
			t.Fatalf("resetDB(): %v", err)
		}
	}
	sEntries, _ := collectionRepo.QuerySectionEntries(ctx, nil, nil)
	for _, e := range sEntries {
		if _, err := collectionRepo.DeleteSectionEntriesByID(ctx, []string{e.ID}); err != nil {
			t.Fatalf("resetDB(): %v", err)
		}
	}
	if _, err := feesRepo.SaveConfig(ctx, fees.Config{}); err != nil {
		t.Fatalf("resetDB(): %v", err)
	}
}

// testLogger drops everything; API tests assert on responses, not logs.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ObjectsAreEqual(len(l1), len(l2)) && assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
