package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/syllabus"
	"github.com/courseflow/backend/storage/database/inmem"
)

// Now is the fixed clock used by test ledgers.
var Now = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// Logger is a core.Logger that records every message.
type Logger struct {
	mu      sync.Mutex
	entries []string
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := level + ": " + msg
	for _, arg := range args {
		entry += fmt.Sprintf(" | %v", arg)
	}
	l.entries = append(l.entries, entry)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

// Entries returns the recorded entries of the given level ("" for all).
func (l *Logger) Entries(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if level == "" || strings.HasPrefix(e, level+": ") {
			out = append(out, e)
		}
	}
	return out
}

// NewLedger opens a ledger on a fresh in-memory store with a fixed clock and seeded colours.
func NewLedger(t *testing.T, docs ...course.Document) (*course.Ledger, *Logger) {
	t.Helper()
	logger := &Logger{}
	ledger := course.Open(
		context.Background(),
		inmemdb.NewCourseStore(docs...),
		logger,
		course.WithRand(rand.New(rand.NewSource(1))),
		course.WithClock(func() time.Time { return Now }),
	)
	return ledger, logger
}

// CreateCourse stores a course named name holding the given candidates.
func CreateCourse(t *testing.T, ledger *course.Ledger, name string, candidates ...syllabus.Candidate) course.Course {
	t.Helper()
	parsed := syllabus.ParsedSyllabus{CourseName: name, Instructor: "Dr. Test"}
	for _, c := range candidates {
		switch c.Type {
		case syllabus.TypeMidterm:
			cp := c
			parsed.Midterm = &cp
		case syllabus.TypeFinal:
			cp := c
			parsed.Final = &cp
		case syllabus.TypeAssignment:
			parsed.Assignments = append(parsed.Assignments, c)
		default:
			c.Type = syllabus.TypeQuiz
			parsed.Quizzes = append(parsed.Quizzes, c)
		}
	}
	res := ledger.SaveSyllabus(context.Background(), parsed)
	if !res.Success {
		t.Fatalf("CreateCourse() failed: %s", res.Error)
	}
	return *res.Course
}

// Candidate builds a syllabus candidate; date may be "".
func Candidate(name string, typ syllabus.AssessmentType, date string, weight float64) syllabus.Candidate {
	c := syllabus.Candidate{Name: name, Type: typ, Description: name}
	if date != "" {
		c.Date = &date
	}
	if weight > 0 {
		c.Weight = &weight
	}
	return c
}

func Float(f float64) *float64 { return &f }
func String(s string) *string  { return &s }

// NewValidator returns a validator with every custom tag and english translations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	return validate, translator
}
