package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/courseflow/backend/core/course"
)

type (
	courseRow struct {
		ID          int            `db:"id"`
		Name        string         `db:"name"`
		Instructor  string         `db:"instructor"`
		Color       string         `db:"color"`
		GoalGrade   null.Float64   `db:"goal_grade"`
		OfficeHours pq.StringArray `db:"office_hours"`
		Textbooks   pq.StringArray `db:"textbooks"`
		OtherInfo   pq.StringArray `db:"other_info"`
		CreatedAt   time.Time      `db:"created_at"`
	}

	assessmentRow struct {
		ID          int          `db:"id"`
		CourseID    int          `db:"course_id"`
		Title       string       `db:"title"`
		Type        string       `db:"type"`
		DueDate     null.String  `db:"due_date"`
		Weight      null.Float64 `db:"weight"`
		Grade       null.Float64 `db:"grade"`
		Description string       `db:"description"`
		CreatedAt   time.Time    `db:"created_at"`
	}

	countersRow struct {
		NextCourseID     int `db:"next_course_id"`
		NextAssessmentID int `db:"next_assessment_id"`
	}
)

const (
	insertCourse = `INSERT INTO courses (id, name, instructor, color, goal_grade, office_hours, textbooks, other_info, created_at)
		VALUES (:id, :name, :instructor, :color, :goal_grade, :office_hours, :textbooks, :other_info, :created_at)`
	insertAssessment = `INSERT INTO assessments (id, course_id, title, type, due_date, weight, grade, description, created_at)
		VALUES (:id, :course_id, :title, :type, :due_date, :weight, :grade, :description, :created_at)`
	upsertCounters = `INSERT INTO ledger_counters (id, next_course_id, next_assessment_id)
		VALUES (1, :next_course_id, :next_assessment_id)
		ON CONFLICT (id) DO UPDATE SET next_course_id = EXCLUDED.next_course_id, next_assessment_id = EXCLUDED.next_assessment_id`
)

// courseStore keeps the ledger document in postgres. Every save rewrites the tables in one transaction.
type courseStore struct {
	db *sqlx.DB
}

var _ course.Store = (*courseStore)(nil)

func NewCourseStore(db *sqlx.DB) *courseStore {
	return &courseStore{db: db}
}

func (s courseStore) Load(ctx context.Context) (course.Document, error) {
	var courses []courseRow
	if err := s.db.SelectContext(ctx, &courses, `SELECT * FROM courses ORDER BY id`); err != nil {
		return course.Document{}, errors.Wrap(err, "selecting courses")
	}
	var assessments []assessmentRow
	if err := s.db.SelectContext(ctx, &assessments, `SELECT * FROM assessments ORDER BY id`); err != nil {
		return course.Document{}, errors.Wrap(err, "selecting assessments")
	}
	counters := countersRow{NextCourseID: 1, NextAssessmentID: 1}
	err := s.db.GetContext(ctx, &counters, `SELECT next_course_id, next_assessment_id FROM ledger_counters WHERE id = 1`)
	if err != nil && errors.Cause(err) != sql.ErrNoRows {
		return course.Document{}, errors.Wrap(err, "selecting counters")
	}
	return toDocument(courses, assessments, counters), nil
}

func (s courseStore) Save(ctx context.Context, doc course.Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM assessments`); err != nil {
		return errors.Wrap(err, "clearing assessments")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
		return errors.Wrap(err, "clearing courses")
	}

	courses, assessments, counters := fromDocument(doc)
	if len(courses) > 0 {
		if _, err = tx.NamedExecContext(ctx, insertCourse, courses); err != nil {
			return errors.Wrap(err, "inserting courses")
		}
	}
	if len(assessments) > 0 {
		if _, err = tx.NamedExecContext(ctx, insertAssessment, assessments); err != nil {
			return errors.Wrap(err, "inserting assessments")
		}
	}
	if _, err = tx.NamedExecContext(ctx, upsertCounters, counters); err != nil {
		return errors.Wrap(err, "saving counters")
	}
	return errors.Wrap(tx.Commit(), "committing ledger")
}

func toDocument(courses []courseRow, assessments []assessmentRow, counters countersRow) course.Document {
	doc := course.Document{
		Courses:          make([]course.Course, 0, len(courses)),
		Assessments:      make([]course.Assessment, 0, len(assessments)),
		NextCourseID:     counters.NextCourseID,
		NextAssessmentID: counters.NextAssessmentID,
	}
	for _, r := range courses {
		doc.Courses = append(doc.Courses, course.Course{
			ID:          r.ID,
			Name:        r.Name,
			Instructor:  r.Instructor,
			Color:       r.Color,
			GoalGrade:   r.GoalGrade.Ptr(),
			Assessments: []course.Assessment{},
			OfficeHours: []string(r.OfficeHours),
			Textbooks:   []string(r.Textbooks),
			OtherInfo:   []string(r.OtherInfo),
			CreatedAt:   r.CreatedAt.UTC(),
		})
	}
	for _, r := range assessments {
		doc.Assessments = append(doc.Assessments, course.Assessment{
			ID:          r.ID,
			CourseID:    r.CourseID,
			Title:       r.Title,
			Type:        course.AssessmentType(r.Type),
			DueDate:     r.DueDate.Ptr(),
			Weight:      r.Weight.Ptr(),
			Grade:       r.Grade.Ptr(),
			Description: r.Description,
			CreatedAt:   r.CreatedAt.UTC(),
		})
	}
	return doc
}

func fromDocument(doc course.Document) ([]courseRow, []assessmentRow, countersRow) {
	courses := make([]courseRow, 0, len(doc.Courses))
	for _, c := range doc.Courses {
		courses = append(courses, courseRow{
			ID:          c.ID,
			Name:        c.Name,
			Instructor:  c.Instructor,
			Color:       c.Color,
			GoalGrade:   null.Float64FromPtr(c.GoalGrade),
			OfficeHours: nonNil(c.OfficeHours),
			Textbooks:   nonNil(c.Textbooks),
			OtherInfo:   nonNil(c.OtherInfo),
			CreatedAt:   c.CreatedAt,
		})
	}

	assessments := make([]assessmentRow, 0, len(doc.Assessments))
	for _, a := range doc.Assessments {
		assessments = append(assessments, assessmentRow{
			ID:          a.ID,
			CourseID:    a.CourseID,
			Title:       a.Title,
			Type:        string(a.Type),
			DueDate:     null.StringFromPtr(a.DueDate),
			Weight:      null.Float64FromPtr(a.Weight),
			Grade:       null.Float64FromPtr(a.Grade),
			Description: a.Description,
			CreatedAt:   a.CreatedAt,
		})
	}
	return courses, assessments, countersRow{NextCourseID: doc.NextCourseID, NextAssessmentID: doc.NextAssessmentID}
}

func nonNil(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return s
}
