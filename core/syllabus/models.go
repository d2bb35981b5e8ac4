package syllabus

// AssessmentType is the kind of graded work an assessment represents.
type AssessmentType string

const (
	TypeQuiz       AssessmentType = "quiz"
	TypeAssignment AssessmentType = "assignment"
	TypeMidterm    AssessmentType = "midterm"
	TypeFinal      AssessmentType = "final"
)

var AllAssessmentTypes = []AssessmentType{TypeQuiz, TypeAssignment, TypeMidterm, TypeFinal}

func (t AssessmentType) IsValid() bool {
	for _, at := range AllAssessmentTypes {
		if t == at {
			return true
		}
	}
	return false
}

// Candidate is an assessment recognized in an extraction response, before it is stored.
type Candidate struct {
	Name        string         `json:"name"`
	Type        AssessmentType `json:"type"`
	Date        *string        `json:"date"` // YYYY-MM-DD
	Weight      *float64       `json:"weight"`
	Description string         `json:"description"`
}

// ParsedSyllabus is the structured form of an extraction response.
type ParsedSyllabus struct {
	CourseName  string      `json:"courseName"`
	Instructor  string      `json:"instructor"`
	Quizzes     []Candidate `json:"quizzes"`
	Assignments []Candidate `json:"assignments"`
	Midterm     *Candidate  `json:"midterm"`
	Final       *Candidate  `json:"final"`
	OfficeHours []string    `json:"officeHours"`
	Textbooks   []string    `json:"textbooks"`
	OtherInfo   []string    `json:"otherInfo"`
}

// Candidates returns every candidate in storage order: quizzes, assignments, midterm, final.
func (p ParsedSyllabus) Candidates() []Candidate {
	all := make([]Candidate, 0, len(p.Quizzes)+len(p.Assignments)+2)
	all = append(all, p.Quizzes...)
	all = append(all, p.Assignments...)
	if p.Midterm != nil {
		all = append(all, *p.Midterm)
	}
	if p.Final != nil {
		all = append(all, *p.Final)
	}
	return all
}
