package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/kipimo/apps/api/echo"
	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
	emailsvc "github.com/trezcool/kipimo/services/email"
	gradersvc "github.com/trezcool/kipimo/services/grader"
	logsvc "github.com/trezcool/kipimo/services/logger"
	inmemkv "github.com/trezcool/kipimo/storage/kv/inmem"
	testutil "github.com/trezcool/kipimo/tests"
)

type testApp struct {
	server echoapi.Server
	conf   *core.Config
	attSvc attempt.Service
	grader *gradersvc.DummyService
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", 0))
	logger.Enable(false)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	attempt.RegisterValidators(validate, translator)

	attSvc := attempt.NewService(inmemkv.New(), logger)
	grader := gradersvc.NewDummyService(testutil.SampleTest())

	server := echoapi.NewServer(
		&echoapi.Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			AttemptSvc:     attSvc,
			Fetcher:        grader,
			Submitter:      grader,
			MailSvc:        emailsvc.NewConsoleServiceMock(conf),
		},
	)
	return &testApp{server: server, conf: conf, attSvc: attSvc, grader: grader}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	deviceID string
	wantCode int
	wantData []byte
}

func newRequest(method, path, token, deviceID string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if deviceID != "" {
		req.Header.Set("X-Device-Id", deviceID)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (app *testApp) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newRequest(method, tt.path, tt.token, tt.deviceID, tt.body)
	app.server.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, app *testApp, username, email string) string {
	t.Helper()
	token, err := echoapi.GenerateToken(
		&echoapi.Claims{Username: username, Email: email},
		[]byte(app.conf.SecretKey),
	)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("%s %s code = %d, want %d (body: %s)", tt.method, tt.path, rec.Code, tt.wantCode, rec.Body.String())
		return
	}
	if tt.wantData != nil {
		testutil.JSONBytesEqual(t, tt.wantData, rec.Body.Bytes())
	}
}
