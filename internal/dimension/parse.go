package dimension

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultMinValue is the smallest value kept; smaller numbers are usually
// wall thicknesses or OCR noise.
const DefaultMinValue = 0.5

var (
	numberPattern      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	commaNumberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// ParseOptions controls how numbers are read from recognized text.
type ParseOptions struct {
	// MinValue discards values less than or equal to it.
	MinValue float64 `yaml:"min_value" json:"min_value"`

	// CommaDecimal treats a comma between digits as a decimal separator,
	// so "4,50" reads as 4.5 instead of 4 and 50.
	CommaDecimal bool `yaml:"comma_decimal" json:"comma_decimal"`
}

// DefaultParseOptions returns the options used for dot-decimal plans.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MinValue: DefaultMinValue}
}

// Parse scans text for decimal numbers and returns those above MinValue.
//
// Values keep their order of appearance and duplicates are preserved. Text
// with no qualifying numbers yields an empty, non-nil slice.
func Parse(text string, opts ParseOptions) []float64 {
	pattern := numberPattern
	if opts.CommaDecimal {
		pattern = commaNumberPattern
	}

	values := []float64{}
	for _, token := range pattern.FindAllString(text, -1) {
		if opts.CommaDecimal {
			token = strings.Replace(token, ",", ".", 1)
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		if v > opts.MinValue {
			values = append(values, v)
		}
	}
	return values
}
