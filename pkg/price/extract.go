// Package price turns noisy listing text into a numeric price.
package price

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Patterns are tried in order. Explicit currency markers before the number
// win over markers after it, which win over a bare "Price:" label.
var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:₹|\bRs\.?|\bINR)\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)([\d,]+(?:\.\d{1,2})?)\s*(?:Rs|INR)\b`),
	regexp.MustCompile(`(?i)\bPrice:\s*([\d,]+(?:\.\d{1,2})?)`),
}

const (
	MinPlausible = 49.0
	MaxPlausible = 10_000_000.0
)

// Rule reports whether a parsed value may be a genuine price.
type Rule func(v float64) bool

// Plausible accepts values in the open range (MinPlausible, MaxPlausible).
func Plausible(v float64) bool {
	return v > MinPlausible && v < MaxPlausible
}

// ExcludeYears rejects values equal to any of the given calendar years.
func ExcludeYears(years ...int) Rule {
	return func(v float64) bool {
		for _, y := range years {
			if v == float64(y) {
				return false
			}
		}
		return true
	}
}

// AdjacentYears returns the year of now and the years either side of it.
func AdjacentYears(now time.Time) []int {
	y := now.Year()
	return []int{y - 1, y, y + 1}
}

// ExcludeAdjacentYears rejects the years around clock's current time, read
// on every call so long-running processes follow the calendar.
func ExcludeAdjacentYears(clock func() time.Time) Rule {
	return func(v float64) bool {
		return ExcludeYears(AdjacentYears(clock())...)(v)
	}
}

type Extractor struct {
	patterns []*regexp.Regexp
	rules    []Rule
}

// NewExtractor builds an extractor with the plausibility range plus any extra rules.
func NewExtractor(extra ...Rule) *Extractor {
	return &Extractor{
		patterns: defaultPatterns,
		rules:    append([]Rule{Plausible}, extra...),
	}
}

// NewPageExtractor is the variant used when inspecting whole pages, where
// copyright and release years show up next to currency words.
func NewPageExtractor(clock func() time.Time) *Extractor {
	return NewExtractor(ExcludeAdjacentYears(clock))
}

var generic = NewExtractor()

// Extract runs the generic extractor.
func Extract(text string) float64 {
	return generic.Extract(text)
}

// Extract returns the first accepted value, scanning patterns in priority
// order and matches in order of appearance. Zero means no price was found.
func (e *Extractor) Extract(text string) float64 {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	if text == "" {
		return 0
	}
	for _, re := range e.patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			if e.accept(v) {
				return v
			}
		}
	}
	return 0
}

func (e *Extractor) accept(v float64) bool {
	for _, rule := range e.rules {
		if !rule(v) {
			return false
		}
	}
	return true
}

// Leading returns at most n characters from the start of text.
func Leading(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
