package types

import "github.com/m-mizutani/goerr/v2"

// AssessmentMethod tags how an assessment was scored
type AssessmentMethod string

const (
	AssessmentMethodQualitative  AssessmentMethod = "qual"
	AssessmentMethodQuantitative AssessmentMethod = "quant"
)

// IsValid checks if the assessment method is valid
func (m AssessmentMethod) IsValid() bool {
	switch m {
	case AssessmentMethodQualitative, AssessmentMethodQuantitative:
		return true
	default:
		return false
	}
}

func (m AssessmentMethod) String() string {
	return string(m)
}

// ParseAssessmentMethod parses a string into an AssessmentMethod. Empty input yields qual.
func ParseAssessmentMethod(s string) (AssessmentMethod, error) {
	if s == "" {
		return AssessmentMethodQualitative, nil
	}
	m := AssessmentMethod(s)
	if !m.IsValid() {
		return "", goerr.New("invalid assessment method", goerr.V("method", s))
	}
	return m, nil
}
