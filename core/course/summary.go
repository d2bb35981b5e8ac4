package course

// Projection tells how a course stands against its goal grade.
type Projection string

const (
	ProjectionNoGoal     Projection = "no_goal"
	ProjectionComplete   Projection = "complete"
	ProjectionGoalMet    Projection = "goal_met"
	ProjectionRequired   Projection = "required"
	ProjectionInfeasible Projection = "infeasible"
)

const (
	msgNoGoal     = "Set a goal grade to see what you need on the remaining assessments."
	msgComplete   = "There are no remaining weighted assessments."
	msgGoalMet    = "You have already reached or exceeded your goal grade!"
	msgRequired   = "Average grade needed on each remaining assessment to reach your goal."
	msgInfeasible = "It is not possible to reach your goal grade with the remaining assessments."
)

type RequiredGrade struct {
	AssessmentID  int            `json:"assessmentId"`
	Title         string         `json:"title"`
	Type          AssessmentType `json:"type"`
	Weight        float64        `json:"weight"`
	RequiredGrade float64        `json:"requiredGrade"`
}

type GradeSummary struct {
	CurrentGrade       *float64        `json:"currentGrade"`
	GoalGrade          *float64        `json:"goalGrade"`
	GradedAssessments  int             `json:"gradedAssessments"`
	TotalAssessments   int             `json:"totalAssessments"`
	RequiredGrades     []RequiredGrade `json:"requiredGrades"`
	AverageGradeNeeded *float64        `json:"averageGradeNeeded"`
	Projection         Projection      `json:"projection"`
	Message            string          `json:"message"`
}

// CalculateSummary computes the current weighted grade and the grades needed to reach goal.
//
// Only assessments with a weight take part in the grade math. The counts cover every assessment.
// currentGrade is the weighted mean of graded work only; it is nil until something is graded.
// Required grades spread the missing score uniformly over the ungraded assessments:
//
//	requiredScore = goal*totalWeight - gradedScore
//	averageGradeNeeded = requiredScore / remainingWeight
//
// and are only emitted when requiredScore > gradedScore and averageGradeNeeded <= 100.
func CalculateSummary(goal *float64, assessments []Assessment) GradeSummary {
	summary := GradeSummary{
		GoalGrade:        cloneFloat(goal),
		TotalAssessments: len(assessments),
		RequiredGrades:   []RequiredGrade{},
	}

	var (
		graded, ungraded                       []Assessment
		totalWeight, gradedWeight, gradedScore float64
		remainingWeight                        float64
	)
	for _, a := range assessments {
		if a.Grade != nil {
			summary.GradedAssessments++
		}
		if a.Weight == nil {
			continue
		}
		totalWeight += *a.Weight
		if a.Grade != nil {
			graded = append(graded, a)
			gradedWeight += *a.Weight
			gradedScore += *a.Grade * *a.Weight
		} else {
			ungraded = append(ungraded, a)
			remainingWeight += *a.Weight
		}
	}

	if len(graded) > 0 {
		var current float64
		if gradedWeight > 0 {
			current = gradedScore / gradedWeight
		}
		summary.CurrentGrade = &current
	}

	switch {
	case goal == nil:
		summary.Projection, summary.Message = ProjectionNoGoal, msgNoGoal
		return summary
	case len(ungraded) == 0 || remainingWeight <= 0:
		summary.Projection, summary.Message = ProjectionComplete, msgComplete
		return summary
	}

	requiredScore := *goal*totalWeight - gradedScore
	if requiredScore <= gradedScore {
		summary.Projection, summary.Message = ProjectionGoalMet, msgGoalMet
		return summary
	}

	avg := requiredScore / remainingWeight
	summary.AverageGradeNeeded = &avg
	if avg > 100 {
		summary.Projection, summary.Message = ProjectionInfeasible, msgInfeasible
		return summary
	}

	for _, a := range ungraded {
		summary.RequiredGrades = append(summary.RequiredGrades, RequiredGrade{
			AssessmentID:  a.ID,
			Title:         a.Title,
			Type:          a.Type,
			Weight:        *a.Weight,
			RequiredGrade: avg,
		})
	}
	summary.Projection, summary.Message = ProjectionRequired, msgRequired
	return summary
}
