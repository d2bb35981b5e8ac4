package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/courseflow/backend/apps/api/echo"
	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/ingest"
	"github.com/courseflow/backend/services/pdftext"
	testutil "github.com/courseflow/backend/tests"
)

const llmResponse = `Course Name: PHYS 210 - Classical Mechanics
Instructor: Dr. Emmy Noether

Quizzes:
- 2024-03-08: Quiz 1 - 5%

Midterm:
- 2024-03-20: Midterm Exam - 35%

Final:
- 2024-05-02: Final Exam - 60%
`

type fakeLLM struct {
	resp string
	err  error
}

func (f fakeLLM) Extract(context.Context, string) (string, error) {
	return f.resp, f.err
}

type testApp struct {
	srv     *echoapi.Server
	ledger  *course.Ledger
	logger  *testutil.Logger
	uploads string
}

// recordingMirror remembers every course pushed to it.
type recordingMirror struct {
	mu      sync.Mutex
	pushed  []course.Course
	removed []int
	resets  int
	err     error
}

func (m *recordingMirror) PushCourse(_ context.Context, c course.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, c)
	return m.err
}

func (m *recordingMirror) RemoveCourse(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, id)
	return m.err
}

func (m *recordingMirror) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return m.err
}

// last returns the most recently pushed course.
func (m *recordingMirror) last(t *testing.T) course.Course {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.pushed)
	return m.pushed[len(m.pushed)-1]
}

func setup(t *testing.T, llm ingest.Extractor) testApp {
	t.Helper()
	return setupWithMirror(t, llm, nil)
}

func setupWithMirror(t *testing.T, llm ingest.Extractor, mirror course.Mirror) testApp {
	t.Helper()
	ledger, logger := testutil.NewLedger(t)
	validate, translator := testutil.NewValidator()
	now := func() time.Time { return testutil.Now }

	conf := &core.Config{Env: "test", TestMode: true}
	conf.Server.DisableReqLogs = true
	conf.Server.BodyLimit = "1M"
	conf.Uploads.Dir = t.TempDir()
	conf.Calendar.UpcomingDays = 30

	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Ledger:     ledger,
		Intake:     ingest.NewService(pdftext.Extractor{}, llm, ledger, mirror, logger, ingest.WithClock(now)),
		Mirror:     mirror,
		Validate:   validate,
		Translator: translator,
		Now:        now,
	})
	return testApp{srv: srv, ledger: ledger, logger: logger, uploads: conf.Uploads.Dir}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func newUploadRequest(t *testing.T, field, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, httptest.NewRecorder()
}

func (app testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.srv.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
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
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newRequest(method, tt.path, tt.body)
			checkCodeAndData(t, tt, app.do(req, rec))
		})
	}
}
