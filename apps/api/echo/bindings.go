package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

type (
	GoalGradeRequest struct {
		GoalGrade *float64 `json:"goalGrade" validate:"required,gte=0,lte=100"`
	}

	GradeRequest struct {
		Grade *float64 `json:"grade" validate:"required,gte=0,lte=100"`
	}

	AnalyzeTextRequest struct {
		Text string `json:"text" validate:"required,notblank"`
	}

	MessageResponse struct {
		Message      string      `json:"message"`
		CourseID     int         `json:"courseId,omitempty"`
		AssessmentID int         `json:"assessmentId,omitempty"`
		Grade        *float64    `json:"grade,omitempty"`
		Course       interface{} `json:"course,omitempty"`
	}
)

// intParam reads a positive integer path parameter. Anything else is a missing resource.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
