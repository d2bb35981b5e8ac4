package ingest

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

var promptTmpl = template.Must(template.New("syllabus").Parse(`You are an expert at analyzing academic syllabi. Extract and organize the following information from this syllabus text:

{{.Text}}

Please organize the information in this exact format:

Course Name: [the actual course name/title]
Instructor: [instructor's name(s)]

Quizzes:
- [YYYY-MM-DD]: [Quiz name/number] - [weight percentage]%
    - [description if available]

Assignments:
- [YYYY-MM-DD]: [Assignment name/number] - [weight percentage]%
    - [description if available]

Midterm:
- [YYYY-MM-DD]: [Midterm name] - [weight percentage]%
    - [length, format and location if available]

Final:
- [YYYY-MM-DD]: [Final name] - [weight percentage]%
    - [length, format and location if available]

Office Hours:
- [day of the week], [time], [room/location]

Textbooks:
- [Title of textbook] by [Author(s)] - [ISBN if available]

Other Key Information:
- [Any other important details or notes]

Only list graded work under Quizzes, Assignments, Midterm and Final, never lecture topics.
Write dates as YYYY-MM-DD{{if .Year}} (assume {{.Year}} when the year is missing){{end}}.
If any information is not available, skip that line.
Extract actual course names, not generic "Course #1".
Ensure that the other key information does not repeat things that are already under a section.
`))

type promptData struct {
	Text string
	Year int
}

func buildPrompt(text string, year int) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, promptData{Text: text, Year: year}); err != nil {
		return "", errors.Wrap(err, "rendering prompt")
	}
	return buf.String(), nil
}
