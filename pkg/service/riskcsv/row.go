package riskcsv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidRow is returned when a risk row fails schema validation
var ErrInvalidRow = goerr.New("invalid risk row")

// Row is one validated risk record taken from CSV input
type Row struct {
	Line               int      `csv:"-"`
	Title              string   `csv:"title" validate:"required,max=500"`
	Description        string   `csv:"description"`
	Cause              string   `csv:"cause"`
	Consequence        string   `csv:"consequence"`
	OwnerEmail         string   `csv:"ownerEmail" validate:"omitempty,email"`
	Taxonomy           []string `csv:"taxonomy"`
	InherentLikelihood *int     `csv:"inherentLikelihood" validate:"required,min=1,max=5"`
	InherentImpact     *int     `csv:"inherentImpact" validate:"required,min=1,max=5"`
	ResidualLikelihood *int     `csv:"residualLikelihood" validate:"omitempty,min=1,max=5"`
	ResidualImpact     *int     `csv:"residualImpact" validate:"omitempty,min=1,max=5"`
	Status             string   `csv:"status" validate:"max=64"`
	Tags               []string `csv:"tags"`
	KeyRisk            *bool    `csv:"keyRisk"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("csv")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateRow checks a row against the risk import schema
func ValidateRow(row *Row) error {
	if msg := validateRow(row); msg != "" {
		return goerr.Wrap(ErrInvalidRow, msg, goerr.V("title", row.Title), goerr.V("line", row.Line))
	}
	return nil
}

// validateRow returns a human readable reason, or "" when the row is valid
func validateRow(row *Row) string {
	err := validate.Struct(row)
	if err == nil {
		return ""
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid e-mail address", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// Column identifiers after header normalization
const (
	colTitle              = "title"
	colDescription        = "description"
	colCause              = "cause"
	colConsequence        = "consequence"
	colOwnerEmail         = "owneremail"
	colTaxonomy           = "taxonomy"
	colInherentLikelihood = "inherentlikelihood"
	colInherentImpact     = "inherentimpact"
	colResidualLikelihood = "residuallikelihood"
	colResidualImpact     = "residualimpact"
	colStatus             = "status"
	colTags               = "tags"
	colKeyRisk            = "keyrisk"
)

var columnAliases = map[string]string{
	"owner":      colOwnerEmail,
	"email":      colOwnerEmail,
	"category":   colTaxonomy,
	"likelihood": colInherentLikelihood,
	"impact":     colInherentImpact,
}

// normalizeColumn folds a header cell so that "Inherent Likelihood", "inherent_likelihood"
// and "inherentLikelihood" name the same column.
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
	if alias, ok := columnAliases[name]; ok {
		return alias
	}
	return name
}

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true}
)

// parseBool resolves permissive boolean tokens. Unrecognized tokens are absent, not an error.
func parseBool(s string) *bool {
	token := strings.ToLower(strings.TrimSpace(s))
	var v bool
	switch {
	case truthy[token]:
		v = true
	case falsy[token]:
		v = false
	default:
		return nil
	}
	return &v
}
