package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/syllabus"
)

// MinTextLength is the shortest syllabus text worth sending for analysis.
const MinTextLength = 10

// TextExtractor reads the text content of an uploaded document.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Extractor turns a prompt into the structured syllabus response.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one intake. Save reports a duplicate course as a non-successful save.
type Result struct {
	RawResponse string                  `json:"extractedInfo"`
	Parsed      syllabus.ParsedSyllabus `json:"parsed"`
	Save        course.SaveResult       `json:"save"`
}

type Option func(*Service)

// WithRules replaces the default parsing heuristics.
func WithRules(rules *syllabus.Rules) Option {
	return func(s *Service) { s.rules = rules }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	docs   TextExtractor
	llm    Extractor
	ledger *course.Ledger
	mirror course.Mirror
	logger core.Logger
	rules  *syllabus.Rules
	now    func() time.Time
}

func NewService(docs TextExtractor, llm Extractor, ledger *course.Ledger, mirror course.Mirror, logger core.Logger, opts ...Option) *Service {
	if mirror == nil {
		mirror = course.NopMirror{}
	}
	s := &Service{
		docs:   docs,
		llm:    llm,
		ledger: ledger,
		mirror: mirror,
		logger: logger,
		rules:  syllabus.DefaultRules(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessFile extracts the text of the document at path and runs it through the pipeline.
// Any extraction failure is reported as ErrDocumentUnreadable.
func (s *Service) ProcessFile(ctx context.Context, path string) (Result, error) {
	text, err := s.docs.ExtractText(ctx, path)
	if err != nil {
		s.logger.Warn("could not extract document text", filepath.Base(path), err)
		return Result{}, errors.Wrapf(ErrDocumentUnreadable, "%s: %v", filepath.Base(path), err)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return Result{}, errors.Wrapf(ErrDocumentUnreadable, "%s: no usable text", filepath.Base(path))
	}
	return s.analyze(ctx, text)
}

// ProcessText runs manually entered syllabus text through the pipeline.
func (s *Service) ProcessText(ctx context.Context, text string) (Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return Result{}, core.NewValidationError(
			errors.New("syllabus text is too short"),
			core.FieldError{Field: "text", Error: "Please provide the syllabus text."},
		)
	}
	return s.analyze(ctx, text)
}

func (s *Service) analyze(ctx context.Context, text string) (Result, error) {
	prompt, err := buildPrompt(text, s.now().Year())
	if err != nil {
		return Result{}, err
	}

	raw, err := s.llm.Extract(ctx, prompt)
	if err != nil {
		return Result{}, newUpstreamError("analyzing syllabus", err)
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, newUpstreamError("analyzing syllabus", errors.New("empty response"))
	}

	parsed := s.rules.Parse(raw)
	res := Result{RawResponse: raw, Parsed: parsed, Save: s.ledger.SaveSyllabus(ctx, parsed)}

	if res.Save.Success && res.Save.Course != nil {
		if err := s.mirror.PushCourse(ctx, *res.Save.Course); err != nil {
			s.logger.Error("could not mirror course", res.Save.CourseID, errors.Wrap(err, "pushing course"))
		}
	}
	return res, nil
}
