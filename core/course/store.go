package course

import "context"

// Document is the persisted form of the ledger.
type Document struct {
	Courses          []Course     `json:"courses"`
	Assessments      []Assessment `json:"assessments"`
	NextCourseID     int          `json:"nextCourseId"`
	NextAssessmentID int          `json:"nextAssessmentId"`
}

// Store loads and saves the whole ledger document at once.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// Mirror copies ledger changes to a secondary grade tracker.
type Mirror interface {
	PushCourse(ctx context.Context, c Course) error
	RemoveCourse(ctx context.Context, courseID int) error
	Reset(ctx context.Context) error
}

// NopMirror is used when mirroring is disabled.
type NopMirror struct{}

var _ Mirror = NopMirror{}

func (NopMirror) PushCourse(context.Context, Course) error { return nil }
func (NopMirror) RemoveCourse(context.Context, int) error  { return nil }
func (NopMirror) Reset(context.Context) error              { return nil }
