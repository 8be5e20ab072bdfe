// Package intent provides pure, stateless classification of user
// utterances into agent intents, plus spoken-number parsing.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Word tables for spoken-number parsing.
var onesWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]float64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// multiplierWords flush the current sub-total into the running total.
var multiplierWords = map[string]float64{
	"thousand": 1000,
	"grand":    1000,
	"k":        1000,
	"million":  1000000,
}

var (
	decimalRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	kSuffixRe  = regexp.MustCompile(`^(\d+(?:\.\d+)?)k$`)
	currencyRe = regexp.MustCompile(`[$%]|\b(dollars?|bucks)\b`)
	punctRe    = regexp.MustCompile(`[^\w.\s]`)
)

// hasScaleWord reports whether the text contains a spoken scale word that
// would make a bare decimal match incomplete (e.g. "12 thousand").
func hasScaleWord(text string) bool {
	for _, tok := range strings.Fields(text) {
		if _, ok := multiplierWords[tok]; ok {
			return true
		}
		if tok == "hundred" {
			return true
		}
		if kSuffixRe.MatchString(tok) {
			return true
		}
	}
	return false
}

// ParseSpokenNumber extracts a non-negative numeric value from a spoken or
// typed utterance. It strips currency words and punctuation, prefers a
// direct decimal match, and otherwise walks word tokens accumulating a
// sub-total that multiplier words flush into the running total. The second
// return value is false when nothing numeric is recognized; zero is only a
// valid result when produced by an explicit digit.
func ParseSpokenNumber(text string) (float64, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	// Commas are digit grouping, not separators: "12,000" must stay one token.
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = currencyRe.ReplaceAllString(cleaned, " ")
	cleaned = punctRe.ReplaceAllString(cleaned, " ")
	if cleaned == "" {
		return 0, false
	}

	// Direct decimal match wins when no scale word qualifies it.
	if !hasScaleWord(cleaned) {
		if m := decimalRe.FindString(cleaned); m != "" {
			v, err := strconv.ParseFloat(m, 64)
			if err == nil {
				return v, true
			}
		}
	}

	var number, current float64
	recognized := false
	sawDigit := false
	for _, tok := range strings.Fields(cleaned) {
		switch {
		case kSuffixRe.MatchString(tok):
			base, _ := strconv.ParseFloat(kSuffixRe.FindStringSubmatch(tok)[1], 64)
			number += base * 1000
			recognized = true
			sawDigit = true
		case decimalRe.MatchString(tok) && decimalRe.FindString(tok) == tok:
			v, err := strconv.ParseFloat(tok, 64)
			if err == nil {
				current += v
				recognized = true
				sawDigit = true
			}
		case tok == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
			recognized = true
		default:
			if mult, ok := multiplierWords[tok]; ok {
				if current == 0 {
					current = 1
				}
				number += current * mult
				current = 0
				recognized = true
			} else if v, ok := onesWords[tok]; ok {
				current += v
				recognized = true
			} else if v, ok := tensWords[tok]; ok {
				current += v
				recognized = true
			}
		}
	}
	number += current

	if !recognized {
		return 0, false
	}
	// Zero is only a valid parse when an explicit digit produced it.
	if number == 0 && !sawDigit {
		return 0, false
	}
	return number, true
}

// ContainsDigit reports whether the text contains at least one digit.
func ContainsDigit(text string) bool {
	return strings.ContainsAny(text, "0123456789")
}
