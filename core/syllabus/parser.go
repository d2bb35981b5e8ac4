package syllabus

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Section is the part of an extraction response the parser is currently reading.
type Section int

const (
	SectionNone Section = iota
	SectionQuizzes
	SectionAssignments
	SectionMidterm
	SectionFinal
	SectionOfficeHours
	SectionTextbooks
	SectionOtherInfo
)

var sectionNames = [...]string{"none", "quizzes", "assignments", "midterm", "final", "officeHours", "textbooks", "otherInfo"}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return "unknown"
	}
	return sectionNames[s]
}

// AssessmentType returns the type of the candidates collected in s.
func (s Section) AssessmentType() (AssessmentType, bool) {
	switch s {
	case SectionQuizzes:
		return TypeQuiz, true
	case SectionAssignments:
		return TypeAssignment, true
	case SectionMidterm:
		return TypeMidterm, true
	case SectionFinal:
		return TypeFinal, true
	}
	return "", false
}

// State is the parser state carried from one line to the next.
type State struct {
	Section Section
	// itemIndent is the indentation of the first bullet in the section, -1 until seen.
	itemIndent int
}

func NewState() State {
	return State{Section: SectionNone, itemIndent: -1}
}

type DeltaKind int

const (
	DeltaNone DeltaKind = iota
	DeltaCourseName
	DeltaInstructor
	DeltaCandidate
	DeltaNote
)

// Delta is the change a single line makes to a ParsedSyllabus.
type Delta struct {
	Kind      DeltaKind
	Section   Section
	Value     string
	Candidate *Candidate
}

var (
	datedItemRe       = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}):\s*(.+?)\s*-\s*([^\s%]+)\s*%`)
	weightedItemRe    = regexp.MustCompile(`^(.+?)\s*-\s*([^\s%]+)\s*%`)
	assessmentWordRe  = regexp.MustCompile(`(?i)\b(?:project\s+proposal|group\s+project|assignment\s*#?\s*\d+|quiz\s*#?\s*\d+|lab\s*#?\s*\d+|homework\s*#?\s*\d+|hw\s*#?\s*\d+|midterm(?:\s+exam)?(?:\s*#?\s*\d+)?|final(?:\s+(?:exam|project))?|project(?:\s*#?\s*\d+)?)\b`)
	isoDateRe         = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	longDateRe        = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	percentRe         = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	weightClauseRe    = regexp.MustCompile(`-\s*([^%\-]+?)\s*%`)
	projectWordRe     = regexp.MustCompile(`(?i)project`)
	longDateLayouts   = []string{"January 2 2006", "Jan 2 2006"}
	isoDateLayout     = "2006-01-02"
	headerDecorations = "#*[> \t"
	labelValueCutset  = "*[]\"'“”‘’` \t"
)

// Parse turns an extraction response into a ParsedSyllabus using the default rules.
func Parse(response string) ParsedSyllabus {
	return defaultRules.Parse(response)
}

// ParseItem parses one bullet item using the default rules.
func ParseItem(item string, typ AssessmentType) (*Candidate, bool) {
	return defaultRules.ParseItem(item, typ)
}

func (r *Rules) Parse(response string) ParsedSyllabus {
	var (
		parsed ParsedSyllabus
		delta  Delta
	)
	state := NewState()
	for _, line := range strings.Split(response, "\n") {
		state, delta = r.Step(state, line)
		parsed.Apply(delta)
	}
	return parsed
}

// Step reads one line. It is pure: the same state and line always give the same result.
func (r *Rules) Step(state State, line string) (State, Delta) {
	line = strings.TrimRight(line, " \t\r")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return state, Delta{}
	}

	if value, ok := matchLabel(trimmed, r.CourseNameLabels); ok {
		return state, Delta{Kind: DeltaCourseName, Value: CleanCourseName(value)}
	}
	if value, ok := matchLabel(trimmed, r.InstructorLabels); ok {
		return state, Delta{Kind: DeltaInstructor, Value: collapseSpaces(strings.Trim(value, labelValueCutset))}
	}
	for _, h := range r.Headers {
		rest, ok := matchLabel(trimmed, []string{h.Label})
		if !ok {
			continue
		}
		next := State{Section: h.Section, itemIndent: -1}
		// content on the header line itself ("Midterm: 2024-03-01: Midterm - 25%")
		if rest = strings.Trim(rest, labelValueCutset); rest != "" {
			return next, r.itemDelta(h.Section, rest)
		}
		return next, Delta{}
	}

	item, indent, ok := r.bullet(line)
	if !ok {
		return state, Delta{}
	}
	if state.itemIndent < 0 {
		state.itemIndent = indent
	} else if indent > state.itemIndent {
		if _, isAssessment := state.Section.AssessmentType(); isAssessment {
			return state, Delta{} // sub-bullet describing the previous item
		}
	}
	return state, r.itemDelta(state.Section, item)
}

func (r *Rules) itemDelta(section Section, item string) Delta {
	switch section {
	case SectionQuizzes, SectionAssignments, SectionMidterm, SectionFinal:
		typ, _ := section.AssessmentType()
		c, ok := r.ParseItem(item, typ)
		if !ok {
			return Delta{}
		}
		return Delta{Kind: DeltaCandidate, Section: section, Candidate: c}
	case SectionOfficeHours, SectionTextbooks, SectionOtherInfo:
		if strings.Trim(item, "-*_= \t") == "" {
			return Delta{} // horizontal rule
		}
		return Delta{Kind: DeltaNote, Section: section, Value: item}
	}
	return Delta{}
}

// Apply merges d into p. Midterm and final keep the first accepted candidate.
func (p *ParsedSyllabus) Apply(d Delta) {
	switch d.Kind {
	case DeltaCourseName:
		p.CourseName = d.Value
	case DeltaInstructor:
		p.Instructor = d.Value
	case DeltaCandidate:
		switch d.Section {
		case SectionQuizzes:
			p.Quizzes = append(p.Quizzes, *d.Candidate)
		case SectionAssignments:
			p.Assignments = append(p.Assignments, *d.Candidate)
		case SectionMidterm:
			if p.Midterm == nil {
				c := *d.Candidate
				p.Midterm = &c
			}
		case SectionFinal:
			if p.Final == nil {
				c := *d.Candidate
				p.Final = &c
			}
		}
	case DeltaNote:
		switch d.Section {
		case SectionOfficeHours:
			p.OfficeHours = append(p.OfficeHours, d.Value)
		case SectionTextbooks:
			p.Textbooks = append(p.Textbooks, d.Value)
		case SectionOtherInfo:
			p.OtherInfo = append(p.OtherInfo, d.Value)
		}
	}
}

// ParseItem recognizes a single bullet item as an assessment of type typ.
// It returns false when the item is a topic, too wordy, has a bad weight or no usable name.
func (r *Rules) ParseItem(item string, typ AssessmentType) (*Candidate, bool) {
	r.compile()

	item = strings.TrimSpace(item)
	if item == "" {
		return nil, false
	}

	var (
		name      string
		date      *string
		weightStr string
	)
	if m := datedItemRe.FindStringSubmatch(item); m != nil {
		date, name, weightStr = validDate(m[1]), m[2], m[3]
	} else if m = weightedItemRe.FindStringSubmatch(item); m != nil {
		name, date, weightStr = m[1], findDate(m[1]), m[2]
	} else if kw := assessmentWordRe.FindString(item); kw != "" {
		name, date, weightStr = kw, findDate(item), weightClause(item)
	} else if utf8.RuneCountInString(item) <= r.MaxFallbackLength {
		name, date, weightStr = item, findDate(item), weightClause(item)
	} else {
		return nil, false
	}

	var weight *float64
	if weightStr != "" {
		w, err := strconv.ParseFloat(weightStr, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, false
		}
		weight = &w
	}

	name = r.CleanAssessmentName(name)
	if name == "" {
		name = r.FallbackTitles[typ]
	}
	if name == "" || r.topicRe.MatchString(name) {
		return nil, false
	}
	maxWords := r.MaxNameWords
	if projectWordRe.MatchString(name) {
		maxWords = r.MaxProjectNameWords
	}
	if len(strings.Fields(name)) > maxWords {
		return nil, false
	}

	return &Candidate{
		Name:        name,
		Type:        typ,
		Date:        date,
		Weight:      weight,
		Description: item,
	}, true
}

// matchLabel reports whether line starts with one of labels (ignoring case and markdown decoration)
// and returns the text after the label.
func matchLabel(line string, labels []string) (string, bool) {
	s := strings.TrimLeft(line, headerDecorations)
	for _, label := range labels {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			return s[len(label):], true
		}
	}
	return "", false
}

// bullet returns the text of a bullet line and its indentation.
func (r *Rules) bullet(line string) (string, int, bool) {
	content := strings.TrimLeft(line, " \t")
	indent := 0
	for _, ch := range line[:len(line)-len(content)] {
		if ch == '\t' {
			indent += 4
		} else {
			indent++
		}
	}
	for _, marker := range r.BulletMarkers {
		if strings.HasPrefix(content, marker) {
			return strings.TrimSpace(content[len(marker):]), indent, true
		}
	}
	return "", 0, false
}

// weightClause returns the weight text of an item: a number before "%" or, failing that,
// whatever follows the last dash before "%" ("Not specified%"), which then fails the numeric check.
func weightClause(item string) string {
	if m := percentRe.FindStringSubmatch(item); m != nil {
		return m[1]
	}
	if m := weightClauseRe.FindStringSubmatch(item); m != nil {
		return m[1]
	}
	return ""
}

func findDate(s string) *string {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if d := validDate(m[1]); d != nil {
			return d
		}
	}
	if m := longDateRe.FindStringSubmatch(s); m != nil {
		value := m[1] + " " + m[2] + " " + m[3]
		for _, layout := range longDateLayouts {
			if t, err := time.Parse(layout, titleMonth(value)); err == nil {
				d := t.Format(isoDateLayout)
				return &d
			}
		}
	}
	return nil
}

// titleMonth capitalizes the month so time.Parse accepts "march 5 2024" and "SEPT 5 2024".
func titleMonth(s string) string {
	parts := strings.SplitN(s, " ", 2)
	month := strings.ToLower(parts[0])
	if month == "sept" {
		month = "sep"
	}
	month = strings.ToUpper(month[:1]) + month[1:]
	if len(parts) == 1 {
		return month
	}
	return month + " " + parts[1]
}

func validDate(s string) *string {
	if _, err := time.Parse(isoDateLayout, s); err != nil {
		return nil
	}
	return &s
}
