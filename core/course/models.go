package course

import (
	"time"

	"github.com/courseflow/backend/core/syllabus"
)

// AssessmentType is shared with the parser, which produces typed candidates.
type AssessmentType = syllabus.AssessmentType

const (
	TypeQuiz       = syllabus.TypeQuiz
	TypeAssignment = syllabus.TypeAssignment
	TypeMidterm    = syllabus.TypeMidterm
	TypeFinal      = syllabus.TypeFinal

	DefaultCourseName = "Unnamed Course"
	DefaultInstructor = "Not specified"
)

type Course struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Instructor  string       `json:"instructor"`
	Color       string       `json:"color"`
	GoalGrade   *float64     `json:"goalGrade"`
	Assessments []Assessment `json:"assessments"`
	OfficeHours []string     `json:"officeHours"`
	Textbooks   []string     `json:"textbooks"`
	OtherInfo   []string     `json:"otherInfo"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Summary is the list view of a course.
func (c Course) Summary() Summary {
	return Summary{
		ID:              c.ID,
		Name:            c.Name,
		Instructor:      c.Instructor,
		Color:           c.Color,
		GoalGrade:       c.GoalGrade,
		AssessmentCount: len(c.Assessments),
	}
}

func (c Course) clone() Course {
	cp := c
	cp.GoalGrade = cloneFloat(c.GoalGrade)
	cp.Assessments = make([]Assessment, len(c.Assessments))
	for i, a := range c.Assessments {
		cp.Assessments[i] = a.clone()
	}
	cp.OfficeHours = append([]string(nil), c.OfficeHours...)
	cp.Textbooks = append([]string(nil), c.Textbooks...)
	cp.OtherInfo = append([]string(nil), c.OtherInfo...)
	return cp
}

func (c Course) assessmentIndex(id int) int {
	for i, a := range c.Assessments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

type Summary struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Instructor      string   `json:"instructor"`
	Color           string   `json:"color"`
	GoalGrade       *float64 `json:"goalGrade"`
	AssessmentCount int      `json:"assessmentCount"`
}

type Assessment struct {
	ID          int            `json:"id"`
	CourseID    int            `json:"courseId"`
	Title       string         `json:"title"`
	Type        AssessmentType `json:"type"`
	DueDate     *string        `json:"dueDate"` // YYYY-MM-DD
	Weight      *float64       `json:"weight"`
	Grade       *float64       `json:"grade"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (a Assessment) clone() Assessment {
	cp := a
	cp.Weight = cloneFloat(a.Weight)
	cp.Grade = cloneFloat(a.Grade)
	if a.DueDate != nil {
		d := *a.DueDate
		cp.DueDate = &d
	}
	return cp
}

// NewAssessment contains information needed to add an assessment by hand.
type NewAssessment struct {
	Title       string         `json:"title" validate:"required,notblank,max=200"`
	Type        AssessmentType `json:"type" validate:"required,assessmenttype"`
	DueDate     *string        `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Weight      *float64       `json:"weight" validate:"omitempty,gt=0,lte=100"`
	Grade       *float64       `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Description string         `json:"description" validate:"max=2000"`
}

// SaveResult reports the outcome of storing a parsed syllabus.
// A duplicate course name is a reported failure: Success is false and Course is the existing course.
type SaveResult struct {
	Success         bool    `json:"success"`
	CourseID        int     `json:"courseId,omitempty"`
	Course          *Course `json:"course,omitempty"`
	AssessmentCount int     `json:"assessmentCount"`
	Error           string  `json:"error,omitempty"`
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
