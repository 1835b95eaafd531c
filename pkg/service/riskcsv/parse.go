// Package riskcsv converts between CSV text and risk records. Parsing collects one error per
// malformed row and never aborts the batch.
package riskcsv

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// DefaultListSeparators split taxonomy and tags cells into tokens
const DefaultListSeparators = ",;"

type options struct {
	listSeparators string
}

// Option configures Parse
type Option func(*options)

// WithListSeparators sets the characters that split taxonomy and tags cells
func WithListSeparators(seps string) Option {
	return func(o *options) {
		if seps != "" {
			o.listSeparators = seps
		}
	}
}

// ParseResult holds the valid rows and the per-line errors of one parse
type ParseResult struct {
	Rows   []*Row
	Errors []model.RowError
}

// segment is a run of cell text that was either inside or outside double quotes
type segment struct {
	text   string
	quoted bool
}

// field is one cell of a record. List separators split only its unquoted segments.
type field struct {
	value    string
	segments []segment
}

type record struct {
	line   int
	fields []field
	err    string
}

// Parse reads CSV text whose first non-empty line is the header. Line numbers are 1-based
// physical line numbers of the input.
func Parse(text string, opts ...Option) *ParseResult {
	o := &options{listSeparators: DefaultListSeparators}
	for _, opt := range opts {
		opt(o)
	}

	result := &ParseResult{
		Rows:   []*Row{},
		Errors: []model.RowError{},
	}

	records := splitRecords(text)
	if len(records) == 0 {
		return result
	}

	header := make([]string, len(records[0].fields))
	for i, f := range records[0].fields {
		header[i] = normalizeColumn(f.value)
	}

	for _, rec := range records[1:] {
		if rec.err != "" {
			result.Errors = append(result.Errors, model.RowError{Line: rec.line, Message: rec.err})
			continue
		}

		row, msg := coerceRow(header, rec, o)
		if msg == "" {
			msg = validateRow(row)
		}
		if msg != "" {
			result.Errors = append(result.Errors, model.RowError{Line: rec.line, Message: msg})
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

// errUnclosedQuote is reported for a line whose quoted cell never closes
const errUnclosedQuote = "unclosed quote"

// splitRecords breaks text into trimmed non-empty lines and splits each into fields. A line
// ending inside a quote that opened at the start of a cell or list token continues onto the
// following lines, provided the quote closes and the joined record is no wider than the header.
// Otherwise the line alone is reported with errUnclosedQuote and parsing resumes on the next line.
func splitRecords(text string) []record {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(strings.TrimSuffix(lines[i], "\r"))
	}

	var records []record
	width := 0

	for idx := 0; idx < len(lines); idx++ {
		if lines[idx] == "" {
			continue
		}

		fields, open, aligned := splitLine(lines[idx])
		if open && !aligned {
			records = append(records, record{line: idx + 1, fields: fields, err: errUnclosedQuote})
			continue
		}
		if open {
			merged, end, ok := joinQuoted(lines, idx, width)
			if !ok {
				records = append(records, record{line: idx + 1, fields: fields, err: errUnclosedQuote})
				continue
			}
			fields = merged
			records = append(records, record{line: idx + 1, fields: fields})
			idx = end
		} else {
			records = append(records, record{line: idx + 1, fields: fields})
		}

		if width == 0 {
			width = len(fields)
		}
	}

	return records
}

// joinQuoted appends the lines after start to an open quoted cell until the quote closes. It
// returns the joined fields and the index of the last consumed line. A width of 0 means no limit.
func joinQuoted(lines []string, start, width int) ([]field, int, bool) {
	var b strings.Builder
	b.WriteString(lines[start])

	for j := start + 1; j < len(lines); j++ {
		b.WriteByte('\n')
		b.WriteString(lines[j])

		fields, open, _ := splitLine(b.String())
		if open {
			continue
		}
		if width > 0 && len(fields) > width {
			return nil, 0, false
		}
		return fields, j, true
	}

	return nil, 0, false
}

// splitLine splits one record on commas. Double quotes toggle the quoted state anywhere in a
// cell, and a doubled quote inside a quoted section is one literal quote. The second result
// reports an unclosed quote, and the third whether that quote opened at the start of a cell or
// right after a ';' list separator.
func splitLine(line string) ([]field, bool, bool) {
	var fields []field
	var segs []segment
	var cur strings.Builder
	inQuotes := false
	aligned := false

	fieldPrefix := func() string {
		var p strings.Builder
		for _, sg := range segs {
			p.WriteString(sg.text)
		}
		p.WriteString(cur.String())
		return strings.TrimSpace(p.String())
	}

	flushSegment := func() {
		if cur.Len() > 0 {
			segs = append(segs, segment{text: cur.String(), quoted: inQuotes})
		}
		cur.Reset()
	}
	endField := func() {
		flushSegment()
		var v strings.Builder
		for _, sg := range segs {
			v.WriteString(sg.text)
		}
		fields = append(fields, field{value: strings.TrimSpace(v.String()), segments: segs})
		segs = nil
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			i++
		case c == '"':
			if !inQuotes {
				prefix := fieldPrefix()
				aligned = prefix == "" || strings.HasSuffix(prefix, ";")
			}
			flushSegment()
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			endField()
		default:
			cur.WriteRune(c)
		}
	}
	endField()

	return fields, inQuotes, inQuotes && aligned
}

// coerceRow maps cells onto a Row by header position. A non-empty message reports a cell that
// could not be coerced.
func coerceRow(header []string, rec record, o *options) (*Row, string) {
	row := &Row{Line: rec.line}

	for i, col := range header {
		if i >= len(rec.fields) {
			break
		}
		f := rec.fields[i]

		var msg string
		switch col {
		case colTitle:
			row.Title = f.value
		case colDescription:
			row.Description = f.value
		case colCause:
			row.Cause = f.value
		case colConsequence:
			row.Consequence = f.value
		case colOwnerEmail:
			row.OwnerEmail = f.value
		case colStatus:
			row.Status = f.value
		case colTaxonomy:
			row.Taxonomy = splitList(f, o.listSeparators)
		case colTags:
			row.Tags = splitList(f, o.listSeparators)
		case colKeyRisk:
			row.KeyRisk = parseBool(f.value)
		case colInherentLikelihood:
			row.InherentLikelihood, msg = parseLevel("inherentLikelihood", f.value)
		case colInherentImpact:
			row.InherentImpact, msg = parseLevel("inherentImpact", f.value)
		case colResidualLikelihood:
			row.ResidualLikelihood, msg = parseLevel("residualLikelihood", f.value)
		case colResidualImpact:
			row.ResidualImpact, msg = parseLevel("residualImpact", f.value)
		}
		if msg != "" {
			return nil, msg
		}
	}

	return row, ""
}

// splitList returns trimmed non-empty tokens. Separators inside quoted segments are literal,
// so a fully quoted cell is one token.
func splitList(f field, seps string) []string {
	tokens := []string{}
	if f.value == "" {
		return tokens
	}

	var cur strings.Builder
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			tokens = append(tokens, t)
		}
		cur.Reset()
	}

	for _, sg := range f.segments {
		if sg.quoted {
			cur.WriteString(sg.text)
			continue
		}
		for _, r := range sg.text {
			if strings.ContainsRune(seps, r) {
				flush()
				continue
			}
			cur.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// parseLevel parses a numeric cell. Empty means absent.
func parseLevel(column, s string) (*int, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ""
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Sprintf("%s must be a number, got %q", column, s)
	}
	if v != math.Trunc(v) {
		return nil, fmt.Sprintf("%s must be a whole number, got %q", column, s)
	}

	n := int(v)
	return &n, ""
}
