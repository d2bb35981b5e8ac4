package syllabus

import (
	"regexp"
	"strings"
)

const (
	courseNameCutset = "*#[]\"'“”‘’`-–—:;,.|_ \t"
	itemEdgeCutset   = "-–—:;,.*•|_ \t"
	quoteCutset      = "\"'“”‘’`"

	// dateMark stands in for a removed date until its connector word is stripped
	dateMark = "\x00"
)

var (
	courseCodePrefixRes = []*regexp.Regexp{
		regexp.MustCompile(`^\(\s*[A-Za-z]{2,4}\s?\d{3,4}[A-Za-z]?\s*\)\s*[-–—:]?\s*`),
		regexp.MustCompile(`^[A-Za-z]{2,4}\s?\d{3,4}[A-Za-z]?\s*[-–—:]\s*`),
	}

	// order matters: clock times go first, then month names before weekday+day
	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}(?:\s*[ap]\.?m\b\.?)?`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s*[ap]m\b`),
		regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?\b(?:,?\s*\d{4}\b)?`),
		regexp.MustCompile(`(?i)\b(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)\.?,?\s+\d{1,2}(?:st|nd|rd|th)?\b`),
		regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b,?`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
	}
	bracketedYearRe   = regexp.MustCompile(`[(\[]\s*(?:19|20)\d{2}\s*[)\]]`)
	upperCourseCodeRe = regexp.MustCompile(`\b[A-Z]{2,4}\s?\d{3,4}[A-Z]?\b`)
	emptyBracketsRe   = regexp.MustCompile(`[(\[][\s\-–—:;,.]*[)\]]`)
)

// CleanCourseName removes a leading course code and decoration from a course name.
// When nothing is left the trimmed input is returned.
func CleanCourseName(raw string) string {
	trimmed := strings.TrimSpace(raw)

	s := trimmed
	for _, re := range courseCodePrefixRes {
		s = re.ReplaceAllString(s, "")
	}
	s = collapseSpaces(strings.Trim(s, courseNameCutset))
	if s == "" {
		return trimmed
	}
	return s
}

// CleanAssessmentName strips dates, codes, deadline wording and filler from an assessment name.
// It may return "", callers decide what to do with an empty name.
func CleanAssessmentName(raw string) string {
	return defaultRules.CleanAssessmentName(raw)
}

// CleanAssessmentName is CleanAssessmentName using r's phrase lists.
// Cleaning is repeated until the name stops changing, so cleaning a cleaned name is a no-op.
func (r *Rules) CleanAssessmentName(raw string) string {
	r.compile()

	s := raw
	// every changing pass shortens s, so this always converges before the bound
	for i := 0; i <= len(raw); i++ {
		next := r.cleanAssessmentPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func (r *Rules) cleanAssessmentPass(s string) string {
	s = strings.TrimSpace(s)
	for _, re := range dateRes {
		s = re.ReplaceAllString(s, dateMark)
	}
	s = r.connectRe.ReplaceAllString(s, dateMark)
	s = strings.ReplaceAll(s, dateMark, " ")
	s = bracketedYearRe.ReplaceAllString(s, " ")
	s = upperCourseCodeRe.ReplaceAllString(s, " ")
	s = r.placeholdRe.ReplaceAllString(s, " ")
	s = r.phraseRe.ReplaceAllString(s, " ")
	s = emptyBracketsRe.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	s = strings.Trim(s, itemEdgeCutset)
	s = strings.Trim(s, quoteCutset)
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
