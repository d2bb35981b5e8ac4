package syllabus

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Header maps a section label (matched case-insensitively at the start of a line) to a section.
type Header struct {
	Label   string
	Section Section
}

// Rules holds the keyword lists that drive normalization and item rejection.
// The zero value is not usable; start from DefaultRules and tweak the lists before first use.
type Rules struct {
	CourseNameLabels []string
	InstructorLabels []string
	Headers          []Header
	BulletMarkers    []string

	// TopicKeywords reject candidates that name lecture topics instead of graded work.
	TopicKeywords []string
	// DeadlinePhrases and FillerPhrases are removed from assessment names.
	DeadlinePhrases []string
	FillerPhrases   []string
	// Placeholders are words that mark template placeholders like "[location]".
	Placeholders []string
	// DateConnectors are removed together with a date or time they introduce ("on 3/15", "at 2 PM").
	DateConnectors []string

	MaxNameWords        int
	MaxProjectNameWords int
	MaxFallbackLength   int

	// FallbackTitles name single-slot assessments whose name cleaned down to nothing.
	FallbackTitles map[AssessmentType]string

	once        sync.Once
	topicRe     *regexp.Regexp
	phraseRe    *regexp.Regexp
	placeholdRe *regexp.Regexp
	connectRe   *regexp.Regexp
}

func DefaultRules() *Rules {
	return &Rules{
		CourseNameLabels: []string{"Course Name:", "Course Title:"},
		InstructorLabels: []string{"Instructor Name:", "Instructor:", "Professor:"},
		Headers: []Header{
			{Label: "Quizzes:", Section: SectionQuizzes},
			{Label: "Assignments:", Section: SectionAssignments},
			{Label: "Midterm Exam:", Section: SectionMidterm},
			{Label: "Midterm:", Section: SectionMidterm},
			{Label: "Final Exam:", Section: SectionFinal},
			{Label: "Final:", Section: SectionFinal},
			{Label: "Office Hours:", Section: SectionOfficeHours},
			{Label: "Required Textbooks:", Section: SectionTextbooks},
			{Label: "Textbooks:", Section: SectionTextbooks},
			{Label: "Other Key Information:", Section: SectionOtherInfo},
			{Label: "Other Important Information:", Section: SectionOtherInfo},
			{Label: "Other Information:", Section: SectionOtherInfo},
			{Label: "Other Info:", Section: SectionOtherInfo},
		},
		BulletMarkers: []string{"-", "•", "* "},
		TopicKeywords: []string{
			"loops", "loop", "if-statements", "if statements", "conditionals", "variables",
			"inheritance", "polymorphism", "encapsulation", "recursion", "functions", "arrays",
			"pointers", "classes", "objects", "data types", "program flow", "control flow",
			"operators", "syntax",
		},
		DeadlinePhrases: []string{
			"due on", "due by", "due", "submission date", "submission", "deadline", "exam date", "date",
		},
		FillerPhrases: []string{
			"not specified", "to be announced", "to be determined", "tbd", "tba", "n/a",
			"description", "regarding",
		},
		Placeholders:        []string{"date", "description", "location", "time", "weight", "percentage", "if available"},
		DateConnectors:      []string{"on", "at", "by", "from", "until"},
		MaxNameWords:        4,
		MaxProjectNameWords: 6,
		MaxFallbackLength:   80,
		FallbackTitles: map[AssessmentType]string{
			TypeMidterm: "Midterm",
			TypeFinal:   "Final Exam",
		},
	}
}

var defaultRules = DefaultRules()

func (r *Rules) compile() {
	r.once.Do(func() {
		r.topicRe = wordsRegexp(r.TopicKeywords, `\b(?:`, `)\b`)
		r.phraseRe = wordsRegexp(append(append([]string{}, r.DeadlinePhrases...), r.FillerPhrases...), `\b(?:`, `)\b:?`)
		r.placeholdRe = wordsRegexp(r.Placeholders, `\[[^\]]*\b(?:`, `)\b[^\]]*\]`)
		r.connectRe = wordsRegexp(r.DateConnectors, `\b(?:`, `)\s*`+dateMark)
	})
}

// wordsRegexp builds a case-insensitive alternation, longest phrase first.
func wordsRegexp(words []string, prefix, suffix string) *regexp.Regexp {
	sorted := append([]string{}, words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	alts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		alts = append(alts, strings.Join(strings.Fields(regexp.QuoteMeta(w)), `\s+`))
	}
	if len(alts) == 0 {
		return regexp.MustCompile(`[^\s\S]`) // never matches
	}
	return regexp.MustCompile(`(?i)` + prefix + strings.Join(alts, "|") + suffix)
}
