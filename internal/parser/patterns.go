package parser

import (
	"regexp"

	apperrors "bank-statement-ledger/pkg/errors"
)

// Field identifies which transaction field a capture group maps to.
type Field int

const (
	// FieldDate is the transaction date string
	FieldDate Field = iota
	// FieldCode is a bank transaction/reference code
	FieldCode
	// FieldDescription is the free-text description
	FieldDescription
	// FieldAmount is the transaction amount string
	FieldAmount
	// FieldType is the CR/DR direction marker
	FieldType
	// FieldNarration is trailing narration text
	FieldNarration
	// FieldIgnored is a captured group with no transaction meaning,
	// such as a trailing balance column
	FieldIgnored
)

// Pattern pairs a compiled line regex with the positional field layout
// of its capture groups. The layout, not the group count, decides which
// fields a match carries; groups absent from the layout stay empty.
type Pattern struct {
	re     *regexp.Regexp
	fields []Field
}

// PatternSpec is the configuration form of a Pattern.
type PatternSpec struct {
	Expr   string  `json:"expr" mapstructure:"expr"`
	Fields []Field `json:"fields" mapstructure:"fields"`
}

// Compile validates and compiles the spec. Expressions are compiled
// as written: case-insensitivity is scoped inside the patterns that
// want it, because blanket (?i) would let uppercase code classes like
// [A-Z0-9]{6,} swallow capitalized description words.
func (ps PatternSpec) Compile() (*Pattern, error) {
	re, err := regexp.Compile(ps.Expr)
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidPattern, 0, ps.Expr, err)
	}
	if re.NumSubexp() != len(ps.Fields) {
		return nil, apperrors.ParseError(apperrors.CodeInvalidPattern, 0, ps.Expr, nil).
			WithContext("groups", re.NumSubexp()).
			WithContext("fields", len(ps.Fields))
	}
	return &Pattern{re: re, fields: ps.Fields}, nil
}

// Field layouts shared by the default patterns.
var (
	layoutDateDescAmtType     = []Field{FieldDate, FieldDescription, FieldAmount, FieldType}
	layoutDateDescAmtTypeNarr = []Field{FieldDate, FieldDescription, FieldAmount, FieldType, FieldNarration}
	layoutDateCodeDescAmtType = []Field{FieldDate, FieldCode, FieldDescription, FieldAmount, FieldType, FieldNarration}
	layoutDateDescTypeAmt     = []Field{FieldDate, FieldDescription, FieldType, FieldAmount, FieldNarration}
	layoutDateDescAmtTypeBal  = []Field{FieldDate, FieldDescription, FieldAmount, FieldType, FieldIgnored}
)

// DefaultPatternSpecs returns the built-in pattern families keyed by
// bank profile name. Within a family, patterns are tried in order and
// the first match wins; the "generic" family is always appended as the
// fallback for every bank. Direction markers and channel prefixes
// match any case; the code classes stay uppercase-only so capitalized
// description words are not mistaken for reference codes.
func DefaultPatternSpecs() map[string][]PatternSpec {
	return map[string][]PatternSpec{
		"hdfc": {
			// DD/MM/YYYY Code Description Amount CR/DR Narration
			{Expr: `^(\d{1,2}/\d{1,2}/\d{4})\s+([A-Z0-9/-]{4,})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))\s*(.*)$`, Fields: layoutDateCodeDescAmtType},
			// DD/MM/YYYY Description Amount CR/DR Narration
			{Expr: `^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))\s*(.*)$`, Fields: layoutDateDescAmtTypeNarr},
		},
		"sbi": {
			// DD-MM-YYYY Description CHQ nnnn Amount CR/DR Narration
			{Expr: `^(\d{1,2}-\d{1,2}-\d{4})\s+(.*?)\s+((?i:CHQ)\s+\d+)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))\s*(.*)$`,
				Fields: []Field{FieldDate, FieldDescription, FieldCode, FieldAmount, FieldType, FieldNarration}},
			// DD-MM-YYYY Description Amount CR/DR Narration
			{Expr: `^(\d{1,2}-\d{1,2}-\d{2,4})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))\s*(.*)$`, Fields: layoutDateDescAmtTypeNarr},
		},
		"icici": {
			// DD/MM/YYYY Description Amount Cr/Dr Balance
			{Expr: `^(\d{1,2}/\d{1,2}/\d{4})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:Cr|Dr))\s+([\d,]+\.?\d{0,2})$`, Fields: layoutDateDescAmtTypeBal},
			// DD/MM/YYYY UPI/... Amount Cr/Dr
			{Expr: `^(\d{1,2}/\d{1,2}/\d{4})\s+((?i:UPI)/.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:Cr|Dr))$`, Fields: layoutDateDescAmtType},
		},
		"axis": {
			// DD/MM/YYYY Description Amount CR/DR
			{Expr: `^(\d{1,2}/\d{1,2}/\d{4})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))$`, Fields: layoutDateDescAmtType},
			// DD/MM/YYYY NEFT|IMPS|RTGS ... Amount CR/DR
			{Expr: `^(\d{1,2}/\d{1,2}/\d{4})\s+((?i:NEFT|IMPS|RTGS).*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))$`, Fields: layoutDateDescAmtType},
		},
		"generic": {
			// Date Code Description Amount Type Narration
			{Expr: `^(\d{1,2}[/-]\d{1,2}[/-]\d{4})\s+([A-Z0-9]{6,})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))\s*(.*)$`, Fields: layoutDateCodeDescAmtType},
			// Date Description Amount Type Narration
			{Expr: `^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(.*?)\s+([\d,]+\.?\d{0,2})\s+((?i:CR|DR))\s*(.*)$`, Fields: layoutDateDescAmtTypeNarr},
			// Date Description Type Amount Narration
			{Expr: `^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(.*?)\s+((?i:CR|DR))\s+([\d,]+\.?\d{0,2})\s*(.*)$`, Fields: layoutDateDescTypeAmt},
		},
	}
}

// compilePatternSpecs compiles a family map, returning patterns keyed by
// bank name.
func compilePatternSpecs(specs map[string][]PatternSpec) (map[string][]*Pattern, error) {
	compiled := make(map[string][]*Pattern, len(specs))
	for bank, bankSpecs := range specs {
		for _, spec := range bankSpecs {
			p, err := spec.Compile()
			if err != nil {
				return nil, err
			}
			compiled[bank] = append(compiled[bank], p)
		}
	}
	return compiled, nil
}
