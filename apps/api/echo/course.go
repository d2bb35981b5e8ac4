package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
)

type courseApi struct {
	ledger   *course.Ledger
	mirror   course.Mirror
	logger   core.Logger
	validate *validator.Validate
}

type (
	courseDetail struct {
		course.Course
		GradeSummary course.GradeSummary `json:"gradeSummary"`
	}

	requiredGradeResponse struct {
		CourseID   int    `json:"courseId"`
		CourseName string `json:"courseName"`
		course.GradeSummary
	}
)

func registerCourseAPI(g *echo.Group, deps ServerDeps) {
	api := courseApi{
		ledger:   deps.Ledger,
		mirror:   deps.Mirror,
		logger:   deps.Logger,
		validate: deps.Validate,
	}

	g.DELETE("/clear-all", api.clearAll)

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.updateGoal)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/required-grade", api.requiredGrade)

	ag := cg.Group("/:id/assessments")
	ag.GET("", api.queryAssessments)
	ag.POST("", api.createAssessment)
	ag.DELETE("/:aid", api.destroyAssessment)
	ag.POST("/:aid/grade", api.setGrade)
	ag.DELETE("/:aid/grade", api.clearGrade)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses := api.ledger.Courses()
	summaries := make([]course.Summary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, c.Summary())
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.ledger.CourseByID(id)
	if err != nil {
		return errors.Wrap(err, "retrieving course")
	}
	return ctx.JSON(http.StatusOK, courseDetail{Course: c, GradeSummary: course.CalculateSummary(c.GoalGrade, c.Assessments)})
}

func (api *courseApi) updateGoal(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data GoalGradeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GoalGradeRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	c, err := api.ledger.UpdateGoalGrade(ctx.Request().Context(), id, data.GoalGrade)
	if err != nil {
		return errors.Wrap(err, "updating goal grade")
	}
	api.push(ctx, c)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Goal grade updated successfully", Course: c})
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.ledger.DeleteCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if err = api.mirror.RemoveCourse(ctx.Request().Context(), id); err != nil {
		api.logger.Error("could not remove mirrored course", id, errors.Wrap(err, "removing course"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Course deleted successfully", CourseID: id})
}

func (api *courseApi) requiredGrade(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.ledger.CourseByID(id)
	if err != nil {
		return errors.Wrap(err, "retrieving course")
	}
	return ctx.JSON(http.StatusOK, requiredGradeResponse{
		CourseID:     c.ID,
		CourseName:   c.Name,
		GradeSummary: course.CalculateSummary(c.GoalGrade, c.Assessments),
	})
}

func (api *courseApi) clearAll(ctx echo.Context) error {
	api.ledger.ClearAll(ctx.Request().Context())
	if err := api.mirror.Reset(ctx.Request().Context()); err != nil {
		api.logger.Error("could not reset mirror", errors.Wrap(err, "resetting mirror"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "All courses cleared successfully"})
}

func (api *courseApi) queryAssessments(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	assessments, err := api.ledger.Assessments(id)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *courseApi) createAssessment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data course.NewAssessment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.ledger.AddAssessment(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "adding assessment")
	}
	api.sync(ctx, id)
	return ctx.JSON(http.StatusCreated, a)
}

func (api *courseApi) destroyAssessment(ctx echo.Context) error {
	id, aid, err := assessmentParams(ctx)
	if err != nil {
		return err
	}
	if err = api.ledger.DeleteAssessment(ctx.Request().Context(), id, aid); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	api.sync(ctx, id)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Assessment deleted successfully", CourseID: id, AssessmentID: aid})
}

func (api *courseApi) setGrade(ctx echo.Context) error {
	id, aid, err := assessmentParams(ctx)
	if err != nil {
		return err
	}
	var data GradeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	a, err := api.ledger.UpdateAssessmentGrade(ctx.Request().Context(), id, aid, data.Grade)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	api.sync(ctx, id)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Grade updated successfully", CourseID: id, AssessmentID: aid, Grade: a.Grade})
}

func (api *courseApi) clearGrade(ctx echo.Context) error {
	id, aid, err := assessmentParams(ctx)
	if err != nil {
		return err
	}
	if _, err = api.ledger.UpdateAssessmentGrade(ctx.Request().Context(), id, aid, nil); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	api.sync(ctx, id)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Grade deleted successfully", CourseID: id, AssessmentID: aid})
}

// sync pushes the current state of a course after one of its assessments changed.
func (api *courseApi) sync(ctx echo.Context, courseID int) {
	c, err := api.ledger.CourseByID(courseID)
	if err != nil {
		api.logger.Error("could not mirror course", courseID, errors.Wrap(err, "retrieving course"))
		return
	}
	api.push(ctx, c)
}

// push failures never fail the request: the ledger write is already committed.
func (api *courseApi) push(ctx echo.Context, c course.Course) {
	if err := api.mirror.PushCourse(ctx.Request().Context(), c); err != nil {
		api.logger.Error("could not mirror course", c, errors.Wrap(err, "pushing course"))
	}
}

func assessmentParams(ctx echo.Context) (int, int, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return 0, 0, err
	}
	aid, err := intParam(ctx, "aid")
	if err != nil {
		return 0, 0, err
	}
	return id, aid, nil
}
