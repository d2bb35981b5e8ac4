package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/courseflow/backend/apps/api/echo"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/syllabus"
	testutil "github.com/courseflow/backend/tests"
)

func createPhysics(t *testing.T, app testApp) course.Course {
	return testutil.CreateCourse(t, app.ledger, "Physics",
		testutil.Candidate("Quiz 1", syllabus.TypeQuiz, "2024-03-08", 10),
		testutil.Candidate("Midterm", syllabus.TypeMidterm, "2024-03-20", 40),
		testutil.Candidate("Final Exam", syllabus.TypeFinal, "2024-05-02", 50),
	)
}

func TestHome(t *testing.T) {
	app := setup(t, fakeLLM{})
	req, rec := newRequest(http.MethodGet, "/")
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to CourseFlow API!", rec.Body.String())
}

func Test_courseApi_query(t *testing.T) {
	app := setup(t, fakeLLM{})
	runHTTPTests(t, app, []httpTest{
		{name: "empty", path: "/api/courses", wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	physics := createPhysics(t, app)
	history := testutil.CreateCourse(t, app.ledger, "History")
	runHTTPTests(t, app, []httpTest{
		{
			name: "summaries", path: "/api/courses/", wantCode: http.StatusOK,
			wantData: marchallObj(t, []course.Summary{physics.Summary(), history.Summary()}),
		},
	})
}

func Test_courseApi_retrieve(t *testing.T) {
	app := setup(t, fakeLLM{})
	physics := createPhysics(t, app)

	runHTTPTests(t, app, []httpTest{
		{name: "unknown", path: "/api/courses/99", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found"})},
		{name: "bad id", path: "/api/courses/abc", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "method not allowed", method: http.MethodPatch, path: "/api/courses/1", wantCode: http.StatusMethodNotAllowed},
	})

	req, rec := newRequest(http.MethodGet, "/api/courses/1")
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		course.Course
		GradeSummary course.GradeSummary `json:"gradeSummary"`
	}
	decode(t, rec, &got)
	assert.Equal(t, physics.Name, got.Name)
	assert.Len(t, got.Assessments, 3)
	assert.Equal(t, 3, got.GradeSummary.TotalAssessments)
	assert.Equal(t, course.ProjectionNoGoal, got.GradeSummary.Projection)
}

func Test_courseApi_updateGoal(t *testing.T) {
	app := setup(t, fakeLLM{})
	createPhysics(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name: "missing", method: http.MethodPut, path: "/api/courses/1", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"goalGrade": "this field is required"}`),
		},
		{
			name: "too high", method: http.MethodPut, path: "/api/courses/1", body: []byte(`{"goalGrade": 120}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"goalGrade": "goalGrade must be 100 or less"}`),
		},
		{
			name: "unknown course", method: http.MethodPut, path: "/api/courses/42", body: []byte(`{"goalGrade": 80}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found"}),
		},
		{name: "ok", method: http.MethodPut, path: "/api/courses/1", body: []byte(`{"goalGrade": 85}`), wantCode: http.StatusOK},
		{name: "zero", method: http.MethodPut, path: "/api/courses/1", body: []byte(`{"goalGrade": 0}`), wantCode: http.StatusOK},
	})

	c, err := app.ledger.CourseByID(1)
	require.NoError(t, err)
	require.NotNil(t, c.GoalGrade)
	assert.Equal(t, 0.0, *c.GoalGrade)
}

func Test_courseApi_grades(t *testing.T) {
	app := setup(t, fakeLLM{})
	createPhysics(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name: "set", method: http.MethodPost, path: "/api/courses/1/assessments/1/grade", body: []byte(`{"grade": 92.5}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MessageResponse{Message: "Grade updated successfully", CourseID: 1, AssessmentID: 1, Grade: testutil.Float(92.5)}),
		},
		{
			name: "negative", method: http.MethodPost, path: "/api/courses/1/assessments/2/grade", body: []byte(`{"grade": -1}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"grade": "grade must be 0 or greater"}`),
		},
		{
			name: "missing", method: http.MethodPost, path: "/api/courses/1/assessments/2/grade", body: []byte(`{"grade": null}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"grade": "this field is required"}`),
		},
		{
			name: "unknown assessment", method: http.MethodPost, path: "/api/courses/1/assessments/99/grade", body: []byte(`{"grade": 50}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Assessment not found"}),
		},
		{
			name: "set midterm", method: http.MethodPost, path: "/api/courses/1/assessments/2/grade", body: []byte(`{"grade": 70}`),
			wantCode: http.StatusOK,
		},
		{
			name: "clear", method: http.MethodDelete, path: "/api/courses/1/assessments/2/grade",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MessageResponse{Message: "Grade deleted successfully", CourseID: 1, AssessmentID: 2}),
		},
	})

	assessments, err := app.ledger.Assessments(1)
	require.NoError(t, err)
	assert.Equal(t, 92.5, *assessments[0].Grade)
	assert.Nil(t, assessments[1].Grade)
}

func Test_courseApi_assessments(t *testing.T) {
	app := setup(t, fakeLLM{})
	createPhysics(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name: "invalid", method: http.MethodPost, path: "/api/courses/1/assessments",
			body:     []byte(`{"title": "  ", "type": "exam"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"title": "this field cannot be blank", "type": "type must be one of quiz, assignment, midterm, final"}`),
		},
		{
			name: "unknown course", method: http.MethodPost, path: "/api/courses/9/assessments",
			body: []byte(`{"title": "Lab 1", "type": "assignment"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "create", method: http.MethodPost, path: "/api/courses/1/assessments",
			body: []byte(`{"title": "Lab 1", "type": "assignment", "weight": 10, "dueDate": "2024-04-01"}`), wantCode: http.StatusCreated,
		},
		{
			name: "delete", method: http.MethodDelete, path: "/api/courses/1/assessments/1", wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MessageResponse{Message: "Assessment deleted successfully", CourseID: 1, AssessmentID: 1}),
		},
		{name: "delete again", method: http.MethodDelete, path: "/api/courses/1/assessments/1", wantCode: http.StatusNotFound},
	})

	req, rec := newRequest(http.MethodGet, "/api/courses/1/assessments")
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	var got []course.Assessment
	decode(t, rec, &got)
	require.Len(t, got, 3)
	assert.Equal(t, "Lab 1", got[2].Title)
	assert.Equal(t, 4, got[2].ID)
	assert.Equal(t, "2024-04-01", *got[2].DueDate)
}

func Test_courseApi_requiredGrade(t *testing.T) {
	app := setup(t, fakeLLM{})
	createPhysics(t, app)
	ctx := context.Background()
	_, err := app.ledger.UpdateGoalGrade(ctx, 1, testutil.Float(80))
	require.NoError(t, err)
	_, err = app.ledger.UpdateAssessmentGrade(ctx, 1, 1, testutil.Float(90))
	require.NoError(t, err)

	req, rec := newRequest(http.MethodGet, "/api/courses/1/required-grade")
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		CourseID   int    `json:"courseId"`
		CourseName string `json:"courseName"`
		course.GradeSummary
	}
	decode(t, rec, &got)
	assert.Equal(t, 1, got.CourseID)
	assert.Equal(t, "Physics", got.CourseName)
	assert.Equal(t, course.ProjectionRequired, got.Projection)
	require.Len(t, got.RequiredGrades, 2)
	// (80*100 - 90*10) / 90
	assert.InDelta(t, 78.888, got.RequiredGrades[0].RequiredGrade, 0.001)
}

func Test_courseApi_destroy(t *testing.T) {
	app := setup(t, fakeLLM{})
	createPhysics(t, app)
	testutil.CreateCourse(t, app.ledger, "History")

	runHTTPTests(t, app, []httpTest{
		{
			name: "delete", method: http.MethodDelete, path: "/api/courses/1", wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MessageResponse{Message: "Course deleted successfully", CourseID: 1}),
		},
		{name: "gone", path: "/api/courses/1", wantCode: http.StatusNotFound},
		{name: "other kept", path: "/api/courses/2", wantCode: http.StatusOK},
		{
			name: "clear all", method: http.MethodDelete, path: "/api/clear-all", wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MessageResponse{Message: "All courses cleared successfully"}),
		},
		{name: "empty", path: "/api/courses", wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	// ids start over after a clear
	assert.Equal(t, 1, testutil.CreateCourse(t, app.ledger, "Chemistry").ID)
}
