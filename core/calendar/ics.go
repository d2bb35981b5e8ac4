package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/courseflow/backend/core/course"
)

const (
	productID     = "-//CourseFlow//Academic Calendar//EN"
	eventDuration = time.Hour
	uidDomain     = "courseflow"
)

// CourseICS renders the dated assessments of c as an iCalendar document.
func CourseICS(c course.Course, now time.Time) []byte {
	cal := newCalendar(c.Name, "Academic calendar for "+c.Name)
	for _, a := range c.Assessments {
		addEvent(cal, c, a, fmt.Sprintf("%s (%s)", a.Title, a.Type), now)
	}
	return []byte(cal.Serialize())
}

// AllCoursesICS renders the dated assessments of every course in one iCalendar document.
func AllCoursesICS(courses []course.Course, now time.Time) []byte {
	cal := newCalendar("All Courses", "Academic calendar for all courses")
	for _, c := range courses {
		for _, a := range c.Assessments {
			addEvent(cal, c, a, a.Title+" - "+c.Name, now)
		}
	}
	return []byte(cal.Serialize())
}

func newCalendar(name, desc string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(name)
	cal.SetXWRCalDesc(desc)
	return cal
}

func addEvent(cal *ics.Calendar, c course.Course, a course.Assessment, summary string, now time.Time) {
	start, ok := dueDate(a)
	if !ok {
		return
	}
	event := cal.AddEvent(fmt.Sprintf("%d-%d@%s", c.ID, a.ID, uidDomain))
	event.SetDtStampTime(now.UTC())
	event.SetStartAt(start)
	event.SetEndAt(start.Add(eventDuration))
	event.SetSummary(summary)
	event.SetDescription(eventDescription(c, a))
	event.SetLocation(c.Name)
	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetProperty(ics.ComponentPropertySequence, "0")
}

func eventDescription(c course.Course, a course.Assessment) string {
	weight := "Not specified"
	if a.Weight != nil {
		weight = strconv.FormatFloat(*a.Weight, 'f', -1, 64) + "%"
	}
	return strings.Join([]string{
		"Course: " + c.Name,
		"Instructor: " + c.Instructor,
		"Weight: " + weight,
		"Type: " + string(a.Type),
	}, "\n")
}

func eventID(courseID, assessmentID int) string {
	return strconv.Itoa(courseID) + "-" + strconv.Itoa(assessmentID)
}
