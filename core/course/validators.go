package course

import (
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/courseflow/backend/core"
)

var (
	assessmentTypeTag  = "assessmenttype"
	assessmentTypeText = "{0} must be one of quiz, assignment, midterm, final"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(assessmentTypeTag, assessmentTypeValidation)
	core.RegisterCustomTranslation(validate, translator, assessmentTypeTag, assessmentTypeText)
}

func assessmentTypeValidation(fl validator.FieldLevel) bool {
	fld := fl.Field()
	if fld.Kind() != reflect.String {
		return false
	}
	return AssessmentType(fld.String()).IsValid()
}

// Validate validates the NewAssessment fields.
func (na *NewAssessment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}
