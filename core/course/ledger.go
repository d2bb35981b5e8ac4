package course

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/syllabus"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
)

type Option func(*Ledger)

// WithRand sets the source used to pick course colours.
func WithRand(rnd *rand.Rand) Option {
	return func(l *Ledger) { l.rnd = rnd }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger keeps courses and their assessments in memory and writes the whole document to its Store
// after every change. Mutations are serialized; a failed write is logged and the change is kept.
type Ledger struct {
	mu     sync.RWMutex
	store  Store
	logger core.Logger
	rnd    *rand.Rand
	now    func() time.Time

	courses          []Course
	nextCourseID     int
	nextAssessmentID int
}

// Open loads the ledger from store. It never fails: an unreadable document gives an empty ledger.
func Open(ctx context.Context, store Store, logger core.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:            store,
		logger:           logger,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
		now:              time.Now,
		courses:          []Course{},
		nextCourseID:     1,
		nextAssessmentID: 1,
	}
	for _, opt := range opts {
		opt(l)
	}

	doc, err := store.Load(ctx)
	if err != nil {
		logger.Error("could not load ledger, starting empty", errors.Wrap(err, "loading ledger document"))
		return l
	}
	l.restore(doc)

	if FixDuplicateColors(l.rnd, l.courses) {
		logger.Info("reassigned duplicate course colors")
		l.persist(ctx)
	}
	return l
}

// restore rebuilds the in-memory state. The flat assessment list wins over the per-course lists
// when it is present, since older documents only kept the per-course copies.
func (l *Ledger) restore(doc Document) {
	byCourse := make(map[int][]Assessment, len(doc.Courses))
	for _, a := range doc.Assessments {
		byCourse[a.CourseID] = append(byCourse[a.CourseID], a.clone())
	}

	var maxCourseID, maxAssessmentID int
	l.courses = make([]Course, 0, len(doc.Courses))
	for _, c := range doc.Courses {
		c = c.clone()
		if len(doc.Assessments) > 0 {
			c.Assessments = byCourse[c.ID]
		}
		if c.Assessments == nil {
			c.Assessments = []Assessment{}
		}
		for _, a := range c.Assessments {
			if a.ID > maxAssessmentID {
				maxAssessmentID = a.ID
			}
		}
		if c.ID > maxCourseID {
			maxCourseID = c.ID
		}
		l.courses = append(l.courses, c)
	}

	l.nextCourseID = maxInt(doc.NextCourseID, maxCourseID+1)
	l.nextAssessmentID = maxInt(doc.NextAssessmentID, maxAssessmentID+1)
}

// snapshot returns the persisted form of the ledger. The flat list is ordered by id, which is
// creation order since ids only grow until the ledger is cleared.
func (l *Ledger) snapshot() Document {
	doc := Document{
		Courses:          make([]Course, 0, len(l.courses)),
		Assessments:      []Assessment{},
		NextCourseID:     l.nextCourseID,
		NextAssessmentID: l.nextAssessmentID,
	}
	for _, c := range l.courses {
		doc.Courses = append(doc.Courses, c.clone())
		for _, a := range c.Assessments {
			doc.Assessments = append(doc.Assessments, a.clone())
		}
	}
	sort.SliceStable(doc.Assessments, func(i, j int) bool { return doc.Assessments[i].ID < doc.Assessments[j].ID })
	return doc
}

func (l *Ledger) persist(ctx context.Context) {
	if err := l.store.Save(ctx, l.snapshot()); err != nil {
		l.logger.Error("could not persist ledger", errors.Wrap(err, "saving ledger document"))
	}
}

// SaveSyllabus stores a parsed syllabus as a new course. A course with the same name
// (ignoring case and surrounding spaces) is never duplicated.
func (l *Ledger) SaveSyllabus(ctx context.Context, parsed syllabus.ParsedSyllabus) SaveResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := core.CleanString(parsed.CourseName)
	if name == "" {
		name = DefaultCourseName
	}
	instructor := core.CleanString(parsed.Instructor)
	if instructor == "" {
		instructor = DefaultInstructor
	}

	key := foldName(name)
	for _, c := range l.courses {
		if foldName(c.Name) == key {
			existing := c.clone()
			return SaveResult{
				Success:         false,
				CourseID:        c.ID,
				Course:          &existing,
				AssessmentCount: len(c.Assessments),
				Error:           fmt.Sprintf("A course named %q already exists", c.Name),
			}
		}
	}

	now := l.now()
	c := Course{
		ID:          l.nextCourseID,
		Name:        name,
		Instructor:  instructor,
		Color:       GenerateColor(l.rnd, l.usedColors()),
		Assessments: []Assessment{},
		OfficeHours: append([]string(nil), parsed.OfficeHours...),
		Textbooks:   append([]string(nil), parsed.Textbooks...),
		OtherInfo:   append([]string(nil), parsed.OtherInfo...),
		CreatedAt:   now,
	}
	l.nextCourseID++

	for _, cand := range parsed.Candidates() {
		a := Assessment{
			ID:          l.nextAssessmentID,
			CourseID:    c.ID,
			Title:       cand.Name,
			Type:        cand.Type,
			Weight:      cloneFloat(cand.Weight),
			Description: cand.Description,
			CreatedAt:   now,
		}
		if cand.Date != nil {
			d := *cand.Date
			a.DueDate = &d
		}
		c.Assessments = append(c.Assessments, a)
		l.nextAssessmentID++
	}

	l.courses = append(l.courses, c)
	l.persist(ctx)

	saved := c.clone()
	return SaveResult{Success: true, CourseID: c.ID, Course: &saved, AssessmentCount: len(c.Assessments)}
}

func (l *Ledger) Courses() []Course {
	l.mu.RLock()
	defer l.mu.RUnlock()

	courses := make([]Course, len(l.courses))
	for i, c := range l.courses {
		courses[i] = c.clone()
	}
	return courses
}

func (l *Ledger) CourseByID(id int) (Course, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.courseIndex(id)
	if idx < 0 {
		return Course{}, ErrCourseNotFound
	}
	return l.courses[idx].clone(), nil
}

func (l *Ledger) Assessments(courseID int) ([]Assessment, error) {
	c, err := l.CourseByID(courseID)
	if err != nil {
		return nil, err
	}
	return c.Assessments, nil
}

// UpdateGoalGrade sets (or clears, with nil) the goal grade of a course.
func (l *Ledger) UpdateGoalGrade(ctx context.Context, courseID int, goal *float64) (Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.courseIndex(courseID)
	if idx < 0 {
		return Course{}, ErrCourseNotFound
	}
	l.courses[idx].GoalGrade = cloneFloat(goal)
	l.persist(ctx)
	return l.courses[idx].clone(), nil
}

// UpdateAssessmentGrade sets the grade of an assessment; nil removes the grade.
func (l *Ledger) UpdateAssessmentGrade(ctx context.Context, courseID, assessmentID int, grade *float64) (Assessment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cIdx, aIdx, err := l.assessmentIndex(courseID, assessmentID)
	if err != nil {
		return Assessment{}, err
	}
	a := &l.courses[cIdx].Assessments[aIdx]
	a.Grade = cloneFloat(grade)
	l.persist(ctx)
	return a.clone(), nil
}

// AddAssessment adds a manually entered assessment to a course.
func (l *Ledger) AddAssessment(ctx context.Context, courseID int, na NewAssessment) (Assessment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.courseIndex(courseID)
	if idx < 0 {
		return Assessment{}, ErrCourseNotFound
	}

	a := Assessment{
		ID:          l.nextAssessmentID,
		CourseID:    courseID,
		Title:       core.CleanString(na.Title),
		Type:        na.Type,
		Weight:      cloneFloat(na.Weight),
		Grade:       cloneFloat(na.Grade),
		Description: core.CleanString(na.Description),
		CreatedAt:   l.now(),
	}
	if na.DueDate != nil {
		d := *na.DueDate
		a.DueDate = &d
	}
	l.nextAssessmentID++
	l.courses[idx].Assessments = append(l.courses[idx].Assessments, a)
	l.persist(ctx)
	return a.clone(), nil
}

// DeleteCourse removes a course and its assessments. Remaining ids are not renumbered.
func (l *Ledger) DeleteCourse(ctx context.Context, courseID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.courseIndex(courseID)
	if idx < 0 {
		return ErrCourseNotFound
	}
	l.courses = append(l.courses[:idx], l.courses[idx+1:]...)
	l.persist(ctx)
	return nil
}

func (l *Ledger) DeleteAssessment(ctx context.Context, courseID, assessmentID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cIdx, aIdx, err := l.assessmentIndex(courseID, assessmentID)
	if err != nil {
		return err
	}
	assessments := l.courses[cIdx].Assessments
	l.courses[cIdx].Assessments = append(assessments[:aIdx], assessments[aIdx+1:]...)
	l.persist(ctx)
	return nil
}

// ClearAll removes every course and resets the id counters, so ids start again at 1.
func (l *Ledger) ClearAll(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.courses = []Course{}
	l.nextCourseID = 1
	l.nextAssessmentID = 1
	l.persist(ctx)
}

func (l *Ledger) Summary(courseID int) (GradeSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.courseIndex(courseID)
	if idx < 0 {
		return GradeSummary{}, ErrCourseNotFound
	}
	c := l.courses[idx]
	return CalculateSummary(c.GoalGrade, c.Assessments), nil
}

func (l *Ledger) courseIndex(id int) int {
	for i, c := range l.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) assessmentIndex(courseID, assessmentID int) (int, int, error) {
	cIdx := l.courseIndex(courseID)
	if cIdx < 0 {
		return -1, -1, ErrCourseNotFound
	}
	aIdx := l.courses[cIdx].assessmentIndex(assessmentID)
	if aIdx < 0 {
		return -1, -1, ErrAssessmentNotFound
	}
	return cIdx, aIdx, nil
}

func (l *Ledger) usedColors() map[string]bool {
	used := make(map[string]bool, len(l.courses))
	for _, c := range l.courses {
		used[c.Color] = true
	}
	return used
}

func foldName(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
