package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/calendar"
	"github.com/courseflow/backend/core/course"
)

const maxUpcomingDays = 366

type calendarApi struct {
	ledger       *course.Ledger
	upcomingDays int
	now          func() time.Time
}

type eventsResponse struct {
	AllEvents      []calendar.Event `json:"allEvents"`
	UpcomingEvents []calendar.Event `json:"upcomingEvents"`
}

func registerCalendarAPI(g *echo.Group, deps ServerDeps) {
	api := calendarApi{
		ledger:       deps.Ledger,
		upcomingDays: deps.Conf.Calendar.UpcomingDays,
		now:          deps.Now,
	}

	cg := g.Group("/calendar")
	cg.GET("/events", api.events)
	cg.GET("/events/:year/:month", api.monthEvents)
	cg.GET("/download/:courseId", api.downloadCourse)
	cg.GET("/download-all", api.downloadAll)
}

// Handlers

func (api *calendarApi) events(ctx echo.Context) error {
	days := api.upcomingDays
	if v := ctx.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxUpcomingDays {
			return core.NewValidationError(
				errors.New("invalid days"),
				core.FieldError{Field: "days", Error: fmt.Sprintf("days must be a number between 0 and %d", maxUpcomingDays)},
			)
		}
		days = n
	}

	courses := api.ledger.Courses()
	return ctx.JSON(http.StatusOK, eventsResponse{
		AllEvents:      calendar.Events(courses),
		UpcomingEvents: calendar.Upcoming(courses, api.now(), days),
	})
}

func (api *calendarApi) monthEvents(ctx echo.Context) error {
	year, yErr := strconv.Atoi(ctx.Param("year"))
	month, mErr := strconv.Atoi(ctx.Param("month"))
	if yErr != nil || mErr != nil || year < 1 || month < 1 || month > 12 {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, calendar.ByMonth(api.ledger.Courses(), year, time.Month(month)))
}

func (api *calendarApi) downloadCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "courseId")
	if err != nil {
		return err
	}
	c, err := api.ledger.CourseByID(id)
	if err != nil {
		return errors.Wrap(err, "retrieving course")
	}
	return attachICS(ctx, calendar.Filename(c.Name), calendar.CourseICS(c, api.now()))
}

func (api *calendarApi) downloadAll(ctx echo.Context) error {
	return attachICS(ctx, calendar.AllCoursesFilename, calendar.AllCoursesICS(api.ledger.Courses(), api.now()))
}

func attachICS(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}
