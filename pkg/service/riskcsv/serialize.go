package riskcsv

import (
	"strconv"
	"strings"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// ExportHeader is the fixed column order of Serialize
var ExportHeader = []string{
	"title",
	"description",
	"cause",
	"consequence",
	"taxonomy",
	"inherentLikelihood",
	"inherentImpact",
	"residualLikelihood",
	"residualImpact",
	"residualScore",
	"appetiteBreached",
	"status",
	"tags",
	"keyRisk",
}

// ListJoiner joins array values on export
const ListJoiner = "; "

// Serialize writes risks as CSV with ExportHeader as the first line. Lines end with "\n".
func Serialize(risks []*model.Risk) string {
	var b strings.Builder
	writeRecord(&b, ExportHeader)

	for _, r := range risks {
		writeRecord(&b, []string{
			Escape(r.Title),
			Escape(r.Description),
			Escape(r.Cause),
			Escape(r.Consequence),
			EscapeList(r.Taxonomy),
			strconv.Itoa(r.InherentLikelihood),
			strconv.Itoa(r.InherentImpact),
			optionalInt(r.ResidualLikelihood),
			optionalInt(r.ResidualImpact),
			optionalInt(r.ResidualScore),
			strconv.FormatBool(r.AppetiteBreached),
			Escape(r.Status),
			EscapeList(r.Tags),
			strconv.FormatBool(r.KeyRisk),
		})
	}

	return b.String()
}

// writeRecord writes already escaped cells as one line
func writeRecord(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c)
	}
	b.WriteByte('\n')
}

// Escape quotes a value when it contains a comma, quote, CR or LF, doubling embedded quotes
func Escape(v string) string {
	if !strings.ContainsAny(v, ",\"\r\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// EscapeList joins tokens with ListJoiner, quoting each token on its own when it contains a
// list separator, comma, quote, CR or LF. Parse reads the cell back as the same tokens.
func EscapeList(tokens []string) string {
	cells := make([]string, len(tokens))
	for i, t := range tokens {
		if strings.ContainsAny(t, DefaultListSeparators+"\"\r\n") {
			cells[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
		} else {
			cells[i] = t
		}
	}
	return strings.Join(cells, ListJoiner)
}

func optionalInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
