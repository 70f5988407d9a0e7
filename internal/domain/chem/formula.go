// Package chem extracts molecular formulas and CAS registry numbers from the
// noisy HTML and text that supplier listings carry.  Extraction is strict:
// formula candidates are validated against the closed element table, CAS
// numbers against the registry checksum, and anything invalid is reported as
// "not found" rather than a partial result.
package chem

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub/superscript transforms
// ─────────────────────────────────────────────────────────────────────────────

var subscriptDigits = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
}

var superscriptDigits = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
}

// Subscript maps ASCII digits in s to their Unicode subscript code points.
// Non-digit characters pass through unchanged.
func Subscript(s string) string {
	return strings.Map(func(r rune) rune {
		if sub, ok := subscriptDigits[r]; ok {
			return sub
		}
		return r
	}, s)
}

// Superscript maps ASCII digits in s to their Unicode superscript code
// points.  Non-digit characters pass through unchanged.
func Superscript(s string) string {
	return strings.Map(func(r rune) rune {
		if sup, ok := superscriptDigits[r]; ok {
			return sup
		}
		return r
	}, s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Formula extraction
// ─────────────────────────────────────────────────────────────────────────────

var (
	// formulaSpanRe locates candidate spans: two or more element-shaped
	// tokens, each optionally followed by a literal count or a <sub>/<sup>
	// markup count.  Element validity is checked after the match, not in the
	// regex.
	formulaSpanRe = regexp.MustCompile(`(?:[A-Z][a-z]?(?:<su[bp]>[0-9]+</su[bp]>|[0-9]+)?){2,}`)

	// formulaTokenRe splits a candidate span into element+count groupings.
	formulaTokenRe = regexp.MustCompile(`([A-Z][a-z]?)(?:<(su[bp])>([0-9]+)</su[bp]>|([0-9]+))?`)
)

// FindFormulaInHTML scans html for a molecular formula written either as
// plain element+count text ("Na2SO4") or with <sub>/<sup> markup
// ("Na<sub>2</sub>SO<sub>4</sub>").
//
// A match requires at least two contiguous element+count groupings — a
// single element token is rejected as a false positive (a product-name
// fragment such as "Na" alone is not a formula).  An unknown element symbol
// anywhere in the candidate span invalidates the whole span.  On success the
// markup is stripped and digit runs are rendered as Unicode subscript
// (counts) or superscript (charges), e.g. "Na₂SO₄".
func FindFormulaInHTML(html string) (string, bool) {
	html = norm.NFC.String(html)

	for _, span := range formulaSpanRe.FindAllString(html, -1) {
		if rendered, ok := renderSpan(span); ok {
			return rendered, true
		}
	}
	return "", false
}

// renderSpan validates a candidate span and renders it.  The span is
// accepted only when the token walk consumes it completely, every element is
// in the periodic table, and at least two groupings are present.
func renderSpan(span string) (string, bool) {
	var sb strings.Builder
	groupings := 0
	consumed := 0

	for _, m := range formulaTokenRe.FindAllStringSubmatch(span, -1) {
		elem, tag, markupCount, literalCount := m[1], m[2], m[3], m[4]
		if !IsElement(elem) {
			return "", false
		}
		sb.WriteString(elem)
		switch {
		case markupCount != "":
			if tag == "sup" {
				sb.WriteString(Superscript(markupCount))
			} else {
				sb.WriteString(Subscript(markupCount))
			}
		case literalCount != "":
			sb.WriteString(Subscript(literalCount))
		}
		groupings++
		consumed += len(m[0])
	}

	if groupings < 2 || consumed != len(span) {
		return "", false
	}
	return sb.String(), true
}

// ─────────────────────────────────────────────────────────────────────────────
// CAS registry numbers
// ─────────────────────────────────────────────────────────────────────────────

// casRe matches the NNNNNNN-NN-N registry-number grammar.
var casRe = regexp.MustCompile(`\b[0-9]{2,7}-[0-9]{2}-[0-9]\b`)

// ValidateCAS reports whether cas satisfies the registry grammar and its
// checksum: the final digit must equal the weighted digit sum of the first
// two segments modulo 10, weights increasing right to left.
func ValidateCAS(cas string) bool {
	if !casRe.MatchString(cas) || casRe.FindString(cas) != cas {
		return false
	}
	parts := strings.Split(cas, "-")
	digits := parts[0] + parts[1]
	checkDigit, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}

	sum := 0
	n := len(digits)
	for i := 0; i < n; i++ {
		d, err := strconv.Atoi(string(digits[n-1-i]))
		if err != nil {
			return false
		}
		sum += d * (i + 1)
	}
	return sum%10 == checkDigit
}

// FindCAS returns the first checksum-valid CAS number in text.  Candidates
// matching the grammar but failing the checksum are skipped, not returned.
func FindCAS(text string) (string, bool) {
	for _, candidate := range casRe.FindAllString(norm.NFC.String(text), -1) {
		if ValidateCAS(candidate) {
			return candidate, true
		}
	}
	return "", false
}
