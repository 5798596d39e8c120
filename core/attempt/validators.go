package attempt

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kipimo/core"
)

// Question kinds. The ledger stores answers as opaque sequences; the kind
// only matters here, where answers are produced and their shape is checked.
const (
	KindSingleChoice   = "single"
	KindMultipleChoice = "multiple"
	KindMatching       = "matching"
)

var (
	answerShapeTag  = "answershape"
	answerShapeText = "answer values do not match the question kind"

	matchingPairSep = "="
)

// AnswerInput is the tagged variant carrying one answer event. Values is a
// single option id for single choice, several for multiple choice, and
// "requirement=option" pairs for matching questions.
type AnswerInput struct {
	TestQuestionID int      `json:"testQuestionId" validate:"required"`
	Kind           string   `json:"kind" validate:"required,oneof=single multiple matching"`
	Values         []string `json:"values" validate:"required"`
}

func (ai *AnswerInput) Validate(validate *validator.Validate) error {
	for i, v := range ai.Values {
		ai.Values[i] = core.CleanString(v)
	}
	return validate.Struct(ai)
}

// RegisterValidators hooks the answer shape checks into the shared validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(answerInputStructValidation, AnswerInput{})
	core.RegisterCustomTranslation(validate, translator, answerShapeTag, answerShapeText)
}

func answerInputStructValidation(sl validator.StructLevel) {
	ai := sl.Current().Interface().(AnswerInput)

	switch ai.Kind {
	case KindSingleChoice:
		if len(ai.Values) != 1 {
			sl.ReportError(ai.Values, "values", "Values", answerShapeTag, "")
		}
	case KindMultipleChoice:
		if len(ai.Values) == 0 {
			sl.ReportError(ai.Values, "values", "Values", answerShapeTag, "")
		}
	case KindMatching:
		if len(ai.Values) == 0 {
			sl.ReportError(ai.Values, "values", "Values", answerShapeTag, "")
			return
		}
		for _, v := range ai.Values {
			left, right, ok := cutPair(v)
			if !ok || left == "" || right == "" {
				sl.ReportError(ai.Values, "values", "Values", answerShapeTag, "")
				return
			}
		}
	}
}

func cutPair(v string) (string, string, bool) {
	idx := strings.Index(v, matchingPairSep)
	if idx < 0 {
		return "", "", false
	}
	return v[:idx], v[idx+len(matchingPairSep):], true
}
