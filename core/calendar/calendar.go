package calendar

import (
	"regexp"
	"sort"
	"time"

	"github.com/courseflow/backend/core/course"
)

const dateLayout = "2006-01-02"

var nonAlphaNumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Event is a dated assessment as shown on a calendar.
type Event struct {
	ID           string                `json:"id"`
	CourseID     int                   `json:"courseId"`
	AssessmentID int                   `json:"assessmentId"`
	Title        string                `json:"title"`
	Course       string                `json:"course"`
	Type         course.AssessmentType `json:"type"`
	Weight       *float64              `json:"weight"`
	Grade        *float64              `json:"grade"`
	Date         string                `json:"date"`
	Color        string                `json:"color"`
	Instructor   string                `json:"instructor"`

	due time.Time
}

// Events lists every assessment with a valid due date, earliest first.
func Events(courses []course.Course) []Event {
	events := make([]Event, 0)
	for _, c := range courses {
		for _, a := range c.Assessments {
			due, ok := dueDate(a)
			if !ok {
				continue
			}
			events = append(events, Event{
				ID:           eventID(c.ID, a.ID),
				CourseID:     c.ID,
				AssessmentID: a.ID,
				Title:        a.Title,
				Course:       c.Name,
				Type:         a.Type,
				Weight:       a.Weight,
				Grade:        a.Grade,
				Date:         *a.DueDate,
				Color:        c.Color,
				Instructor:   c.Instructor,
				due:          due,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].due.Before(events[j].due) })
	return events
}

// Upcoming lists events due from today through `days` days after now.
func Upcoming(courses []course.Course, now time.Time, days int) []Event {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := today.AddDate(0, 0, days)

	upcoming := make([]Event, 0)
	for _, e := range Events(courses) {
		if !e.due.Before(today) && !e.due.After(until) {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming
}

func ByMonth(courses []course.Course, year int, month time.Month) []Event {
	events := make([]Event, 0)
	for _, e := range Events(courses) {
		if e.due.Year() == year && e.due.Month() == month {
			events = append(events, e)
		}
	}
	return events
}

// Filename is the download name of a course calendar.
func Filename(courseName string) string {
	return nonAlphaNumRe.ReplaceAllString(courseName, "_") + "_calendar.ics"
}

// AllCoursesFilename is the download name of the combined calendar.
const AllCoursesFilename = "all_courses_calendar.ics"

func dueDate(a course.Assessment) (time.Time, bool) {
	if a.DueDate == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, *a.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
