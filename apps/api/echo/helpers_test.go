package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	. "github.com/trezcool/lumina/apps/api/echo"
	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/ai"
	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/attendance"
	"github.com/trezcool/lumina/core/certificate"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/dashboard"
	"github.com/trezcool/lumina/core/quiz"
	"github.com/trezcool/lumina/core/session"
	"github.com/trezcool/lumina/core/user"
	emailsvc "github.com/trezcool/lumina/services/email"
	genaisvc "github.com/trezcool/lumina/services/genai"
	"github.com/trezcool/lumina/storage/database/inmem"
	"github.com/trezcool/lumina/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type env struct {
	app       Server
	usrRepo   user.Repository
	store     *session.Store
	mailer    *testutil.Mailer
	publisher *testutil.Publisher
	usrSvc    user.Service
	userMail  interface{ SentMessages() []core.EmailMessage }
}

type envOption func(*setupOpts)

type setupOpts struct {
	gen ai.Generator
}

func withGenerator(gen ai.Generator) envOption {
	return func(o *setupOpts) { o.gen = gen }
}

// setup wires a server over a fresh in-memory DB.
func setup(t *testing.T, opts ...envOption) *env {
	o := setupOpts{gen: genaisvc.NewStub()}
	for _, opt := range opts {
		opt(&o)
	}

	db := inmemdb.Open()
	logger := testutil.Logger{}
	mailer := new(testutil.Mailer)
	publisher := new(testutil.Publisher)

	usrRepo := inmemdb.NewUserRepository(db)
	userMail := emailsvc.NewConsoleServiceMock(logger)
	usrSvc := user.NewServiceMock(usrRepo, userMail, logger)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	certSvc := certificate.NewService(inmemdb.NewCertificateRepository(db), publisher, logger)
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), courseSvc, mailer, publisher, logger)
	assessSvc := assessment.NewService(inmemdb.NewAssessmentRepository(db), courseSvc)
	aiSvc := ai.NewService(o.gen, logger)
	dashSvc := dashboard.NewService(usrSvc, courseSvc, attSvc, assessSvc)

	store := session.NewStore(
		courseSvc,
		session.RecordResults(courseSvc, assessSvc, logger),
		quiz.WithTick(time.Hour),
	)
	t.Cleanup(store.CloseAll)

	app := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		Sessions:       store,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		CertificateSvc: certSvc,
		AttendanceSvc:  attSvc,
		AssessmentSvc:  assessSvc,
		AISvc:          aiSvc,
		DashboardSvc:   dashSvc,
	})
	return &env{
		app:       app,
		usrRepo:   usrRepo,
		store:     store,
		mailer:    mailer,
		publisher: publisher,
		usrSvc:    usrSvc,
		userMail:  userMail,
	}
}

// serve runs one request against the app.
func (e *env) serve(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	e.app.ServeHTTP(rec, req)
	return rec
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
	token, err := GenerateToken(GetUserClaims(usr, false))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, e *env, tests []httpTest) {
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			e.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
