package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/ingest"
	"github.com/courseflow/backend/core/syllabus"
)

const uploadField = "syllabus"

var allowedUploads = map[string]bool{".pdf": true, ".txt": true}

type syllabusApi struct {
	intake     *ingest.Service
	logger     core.Logger
	validate   *validator.Validate
	uploadsDir string
}

// IntakeResponse is returned by both intake paths. A duplicate course is answered with
// 409, Success false and the existing course.
type IntakeResponse struct {
	Success         bool                    `json:"success"`
	ExtractedInfo   string                  `json:"extractedInfo"`
	ParsedData      syllabus.ParsedSyllabus `json:"parsedData"`
	CourseID        int                     `json:"courseId,omitempty"`
	Course          *course.Course          `json:"course,omitempty"`
	AssessmentCount int                     `json:"assessmentCount"`
	Error           string                  `json:"error,omitempty"`
}

func registerSyllabusAPI(g *echo.Group, deps ServerDeps) {
	api := syllabusApi{
		intake:     deps.Intake,
		logger:     deps.Logger,
		validate:   deps.Validate,
		uploadsDir: deps.Conf.Uploads.Dir,
	}

	g.POST("/upload", api.upload)
	g.POST("/analyze-text", api.analyzeText)
}

// Handlers

func (api *syllabusApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "reading upload"), core.FieldError{Field: uploadField, Error: "No file uploaded"})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedUploads[ext] {
		return core.NewValidationError(
			errors.New("unsupported file type"),
			core.FieldError{Field: uploadField, Error: "Only PDF and plain text files are supported"},
		)
	}

	path, err := api.store(fh, ext)
	if err != nil {
		return errors.Wrap(err, "storing upload")
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			api.logger.Warn("could not remove upload", path, err)
		}
	}()

	res, err := api.intake.ProcessFile(ctx.Request().Context(), path)
	if err != nil {
		return errors.Wrap(err, "processing upload")
	}
	return respondIntake(ctx, res)
}

func (api *syllabusApi) analyzeText(ctx echo.Context) error {
	var data AnalyzeTextRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalyzeTextRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	res, err := api.intake.ProcessText(ctx.Request().Context(), data.Text)
	if err != nil {
		return errors.Wrap(err, "processing text")
	}
	return respondIntake(ctx, res)
}

// store copies the upload under a generated name, so client file names never reach the filesystem.
func (api *syllabusApi) store(fh *multipart.FileHeader, ext string) (string, error) {
	if err := os.MkdirAll(api.uploadsDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating uploads dir")
	}
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	path := filepath.Join(api.uploadsDir, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "writing upload file")
	}
	if err = dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "closing upload file")
	}
	return path, nil
}

func respondIntake(ctx echo.Context, res ingest.Result) error {
	resp := IntakeResponse{
		Success:         res.Save.Success,
		ExtractedInfo:   res.RawResponse,
		ParsedData:      res.Parsed,
		CourseID:        res.Save.CourseID,
		Course:          res.Save.Course,
		AssessmentCount: res.Save.AssessmentCount,
		Error:           res.Save.Error,
	}
	if !res.Save.Success {
		return ctx.JSON(http.StatusConflict, resp)
	}
	return ctx.JSON(http.StatusOK, resp)
}
