package enhance

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Gate rejection reasons. These never reach the user; the fallback to the
// original text is silent.
var (
	ErrTooLong           = errors.New("rewrite exceeds length ceiling")
	ErrTooManyLines      = errors.New("rewrite exceeds line ceiling")
	ErrAdviceInjected    = errors.New("rewrite introduces advice language")
	ErrNumbersFabricated = errors.New("rewrite introduces numeric tokens")
	ErrPhraseDropped     = errors.New("rewrite drops a preserve phrase")
	ErrIntentMismatch    = errors.New("rewrite adds or removes an intent-bearing phrase")
	ErrQuestionChanged   = errors.New("rewrite changes question status")
	ErrNumbersRemoved    = errors.New("normalization removes numeric tokens")
	ErrNumbersInvented   = errors.New("normalization invents undeclared numeric tokens")
)

// adviceWords may not appear in a rewrite unless already present in the
// original. This blocks the enhancer from injecting financial advice.
var adviceWords = []string{
	"should", "recommend", "suggest", "advise", "better", "best", "optimal", "ideal",
}

// advisoryPhrasings are second-person advisory constructions checked the
// same way.
var advisoryPhrasings = []string{
	"you should", "you ought", "if i were you", "i recommend", "i suggest", "i advise",
}

// intentPhrases are the literal commitment triggers whose presence must
// match on both sides of a rewrite: the enhancer may neither add nor
// silently remove one.
var intentPhrases = []string{
	"submit", "confirm", "cancel", "go back", "yes", "confirm enrollment", "confirm loan",
}

var numericTokenRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

var wordRe = map[string]*regexp.Regexp{}

func init() {
	for _, w := range adviceWords {
		wordRe[w] = regexp.MustCompile(`\b` + w + `\b`)
	}
	for _, p := range intentPhrases {
		wordRe[p] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)
	}
}

func containsWord(text, word string) bool {
	if re, ok := wordRe[word]; ok {
		return re.MatchString(text)
	}
	return strings.Contains(text, word)
}

// ShouldSkip reports whether the text must not be sent to the backend at
// all: error or confirmation-gated output is never eligible for rewriting.
func ShouldSkip(original string, hint models.UIStateHint) bool {
	if hint == models.UIError || hint == models.UIConfirmationRequired {
		return true
	}
	lowered := strings.ToLower(original)
	for _, phrase := range models.LoanConfirmationPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	for _, phrase := range models.EnrollmentConfirmationPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// ValidatePolish runs the full invariant battery over a candidate rewrite.
// A nil return admits the candidate; any error means fall back to the
// original.
func ValidatePolish(original, candidate string, c Constraints) error {
	origLower := strings.ToLower(original)
	candLower := strings.ToLower(candidate)

	if float64(len(candidate)) > c.maxLengthRatio()*float64(len(original)) {
		return ErrTooLong
	}
	if c.MaxLines > 0 && strings.Count(strings.TrimSpace(candidate), "\n")+1 > c.MaxLines {
		return ErrTooManyLines
	}

	for _, w := range adviceWords {
		if containsWord(candLower, w) && !containsWord(origLower, w) {
			return fmt.Errorf("%w: %q", ErrAdviceInjected, w)
		}
	}
	for _, p := range advisoryPhrasings {
		if strings.Contains(candLower, p) && !strings.Contains(origLower, p) {
			return fmt.Errorf("%w: %q", ErrAdviceInjected, p)
		}
	}

	if !c.AllowNewNumbers {
		origCount := len(numericTokenRe.FindAllString(original, -1))
		candCount := len(numericTokenRe.FindAllString(candidate, -1))
		if candCount > origCount {
			return ErrNumbersFabricated
		}
	}

	for _, phrase := range c.PreservePhrases {
		p := strings.ToLower(phrase)
		if p == "" {
			continue
		}
		if strings.Contains(origLower, p) && !strings.Contains(candLower, p) {
			return fmt.Errorf("%w: %q", ErrPhraseDropped, phrase)
		}
	}

	for _, p := range intentPhrases {
		if containsWord(origLower, p) != containsWord(candLower, p) {
			return fmt.Errorf("%w: %q", ErrIntentMismatch, p)
		}
	}

	if isQuestion(original) != isQuestion(candidate) {
		return ErrQuestionChanged
	}

	return nil
}

func isQuestion(text string) bool {
	return strings.HasSuffix(strings.TrimSpace(text), "?")
}

// ValidateNormalization checks a pre-classification number normalization:
// it may only normalize text, never remove numeric information already
// present, and any numeric token it introduces must be declared in the
// backend's number list with its spoken phrase present in the original.
func ValidateNormalization(original, normalized string, numbers []NumberSpan) error {
	origTokens := make(map[string]bool)
	for _, t := range numericTokenRe.FindAllString(original, -1) {
		origTokens[t] = true
	}
	normTokens := numericTokenRe.FindAllString(normalized, -1)

	// Every numeric token in the input must survive.
	normSet := make(map[string]bool, len(normTokens))
	for _, t := range normTokens {
		normSet[t] = true
	}
	for t := range origTokens {
		if !normSet[t] {
			return fmt.Errorf("%w: %q", ErrNumbersRemoved, t)
		}
	}

	// Every introduced token must be declared against a spoken phrase that
	// is verbatim in the input.
	declared := make(map[string]bool, len(numbers))
	origLower := strings.ToLower(original)
	for _, n := range numbers {
		if n.Original == "" || !strings.Contains(origLower, strings.ToLower(n.Original)) {
			continue
		}
		declared[formatNumber(n.Value)] = true
	}
	for _, t := range normTokens {
		if origTokens[t] || declared[t] {
			continue
		}
		return fmt.Errorf("%w: %q", ErrNumbersInvented, t)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
