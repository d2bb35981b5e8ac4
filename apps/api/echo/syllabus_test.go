package echoapi_test

import (
	"net/http"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/courseflow/backend/apps/api/echo"
	"github.com/courseflow/backend/core/ingest"
)

type rateLimited struct{}

func (rateLimited) Error() string     { return "429 Too Many Requests" }
func (rateLimited) RateLimited() bool { return true }

func Test_syllabusApi_analyzeText(t *testing.T) {
	app := setup(t, fakeLLM{resp: llmResponse})

	req, rec := newRequest(http.MethodPost, "/analyze-text", []byte(`{"text": "PHYS 210 syllabus, spring 2024."}`))
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got echoapi.IntakeResponse
	decode(t, rec, &got)
	assert.True(t, got.Success)
	assert.Equal(t, llmResponse, got.ExtractedInfo)
	assert.Equal(t, "Classical Mechanics", got.ParsedData.CourseName)
	assert.Equal(t, 1, got.CourseID)
	assert.Equal(t, 3, got.AssessmentCount)
	require.NotNil(t, got.Course)
	assert.Equal(t, "Dr. Emmy Noether", got.Course.Instructor)

	// same course again
	req, rec = newRequest(http.MethodPost, "/analyze-text", []byte(`{"text": "PHYS 210 syllabus, second copy."}`))
	app.do(req, rec)
	require.Equal(t, http.StatusConflict, rec.Code)
	var dup echoapi.IntakeResponse
	decode(t, rec, &dup)
	assert.False(t, dup.Success)
	assert.Equal(t, 1, dup.CourseID)
	assert.NotEmpty(t, dup.Error)
	assert.Len(t, app.ledger.Courses(), 1)
}

func Test_syllabusApi_analyzeText_errors(t *testing.T) {
	runHTTPTests(t, setup(t, fakeLLM{resp: llmResponse}), []httpTest{
		{
			name: "missing text", method: http.MethodPost, path: "/analyze-text", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"text": "this field is required"}`),
		},
		{
			name: "blank text", method: http.MethodPost, path: "/analyze-text", body: []byte(`{"text": "   "}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"text": "this field cannot be blank"}`),
		},
		{
			name: "too short", method: http.MethodPost, path: "/analyze-text", body: []byte(`{"text": "CS 101"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"text": "Please provide the syllabus text."}`),
		},
		{
			name: "bad json", method: http.MethodPost, path: "/analyze-text", body: []byte(`{"text": `),
			wantCode: http.StatusBadRequest,
		},
	})

	rateLimitedApp := setup(t, fakeLLM{err: rateLimited{}})
	req, rec := newRequest(http.MethodPost, "/analyze-text", []byte(`{"text": "PHYS 210 syllabus, spring 2024."}`))
	rateLimitedApp.do(req, rec)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var herr httpErr
	decode(t, rec, &herr)
	assert.Equal(t, (&ingest.UpstreamError{Err: rateLimited{}, RateLimited: true}).Message(), herr.Error)
	assert.Len(t, rateLimitedApp.logger.Entries("WARN"), 1)

	failingApp := setup(t, fakeLLM{err: errors.New("connection reset")})
	req, rec = newRequest(http.MethodPost, "/analyze-text", []byte(`{"text": "PHYS 210 syllabus, spring 2024."}`))
	failingApp.do(req, rec)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, failingApp.ledger.Courses())
}

func Test_syllabusApi_upload(t *testing.T) {
	app := setup(t, fakeLLM{resp: llmResponse})

	req, rec := newUploadRequest(t, "syllabus", "syllabus.txt", []byte("PHYS 210 Classical Mechanics\nMidterm March 20, 35%\n"))
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got echoapi.IntakeResponse
	decode(t, rec, &got)
	assert.True(t, got.Success)
	assert.Equal(t, 3, got.AssessmentCount)

	entries, err := os.ReadDir(app.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploads are removed after processing")
}

func Test_syllabusApi_upload_errors(t *testing.T) {
	app := setup(t, fakeLLM{resp: llmResponse})

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		wantCode int
		wantErr  string
	}{
		{name: "no file", wantCode: http.StatusBadRequest},
		{name: "wrong field", field: "file", filename: "syllabus.txt", content: []byte("text"), wantCode: http.StatusBadRequest},
		{name: "unsupported type", field: "syllabus", filename: "syllabus.docx", content: []byte("PK..."), wantCode: http.StatusBadRequest},
		{
			name: "unreadable pdf", field: "syllabus", filename: "scan.pdf", content: []byte("%PDF-1.4 garbage"),
			wantCode: http.StatusUnprocessableEntity, wantErr: ingest.UnreadableMessage(),
		},
		{
			name: "empty text file", field: "syllabus", filename: "empty.txt", content: []byte("  \n"),
			wantCode: http.StatusUnprocessableEntity, wantErr: ingest.UnreadableMessage(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, tt.field, tt.filename, tt.content)
			app.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				var herr httpErr
				decode(t, rec, &herr)
				assert.Equal(t, tt.wantErr, herr.Error)
			}
		})
	}

	entries, err := os.ReadDir(app.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, app.ledger.Courses())
}
