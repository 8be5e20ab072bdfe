package task

import (
	"fmt"
	"math"
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/intent"
	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Step ids for the plan enrollment graph.
const (
	StepEnrollmentIntro   models.StepID = "ENROLLMENT_INTRO"
	StepContributionPct   models.StepID = "CONTRIBUTION_PCT"
	StepFundSelection     models.StepID = "FUND_SELECTION"
	StepEnrollmentRecap   models.StepID = "ENROLLMENT_RECAP"
	StepConfirmEnrollment models.StepID = "CONFIRM_ENROLLMENT"
)

// Enrollment policy constants.
const (
	MinContributionPct = 1
	MaxContributionPct = 100
	// PayPeriodsPerYear drives the per-paycheck contribution estimate.
	PayPeriodsPerYear = 26
)

// adviceWords cause a contribution answer to be rejected: the user's own
// phrasing must not be misread as asking the system to advise.
var adviceWords = []string{"suggest", "recommend", "advise"}

// Funds available for election. Selections are matched by keyword or by
// list position.
var fundOptions = []string{
	"Target Date 2055",
	"S&P 500 Index",
	"Total Bond Market",
	"Stable Value",
}

var fundKeywords = map[string]int{
	"target": 0, "date": 0,
	"index": 1, "500": 1, "s&p": 1, "sp500": 1, "stock": 1,
	"bond": 2,
	"stable": 3, "value": 3,
}

func enrollmentData(data models.CollectedData) *models.EnrollmentData {
	d, ok := data.(*models.EnrollmentData)
	if !ok {
		return &models.EnrollmentData{}
	}
	return d
}

func containsAdviceWord(input string) bool {
	lowered := strings.ToLower(input)
	for _, w := range adviceWords {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}

// validateContributionPct enforces the 1-100 inclusive whole-percentage
// policy, with the same ambiguity rejection as the loan amount plus the
// advice-word rejection.
func validateContributionPct(input string, _ models.CollectedData) error {
	if containsAdviceWord(input) {
		return models.ErrPctAdviceRequested
	}
	if containsAmbiguousQualifier(input) {
		return models.ErrPctAmbiguous
	}
	v, ok := intent.ParseSpokenNumber(input)
	if !ok {
		return models.ErrPctInvalid
	}
	if v != math.Trunc(v) {
		return models.ErrPctInvalid
	}
	if v < MinContributionPct || v > MaxContributionPct {
		return models.ErrPctOutOfRange
	}
	return nil
}

// matchFund resolves a fund selection by position ("1".."4") or keyword.
func matchFund(input string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(input))
	if v, ok := intent.ParseSpokenNumber(lowered); ok {
		idx := int(v) - 1
		if v == math.Trunc(v) && idx >= 0 && idx < len(fundOptions) {
			return fundOptions[idx], true
		}
	}
	for _, tok := range strings.Fields(lowered) {
		tok = strings.Trim(tok, ".,!?")
		if idx, ok := fundKeywords[tok]; ok {
			return fundOptions[idx], true
		}
	}
	return "", false
}

func validateFundSelection(input string, _ models.CollectedData) error {
	if strings.TrimSpace(input) == "" {
		return models.ErrTextExpected
	}
	if _, ok := matchFund(input); !ok {
		return models.ErrFundUnknown
	}
	return nil
}

func validateEnrollmentConfirmation(input string, _ models.CollectedData) error {
	if !models.IsConfirmationPhrase(models.TaskEnrollment, input) {
		return models.ErrConfirmationMismatch
	}
	return nil
}

// perPaycheck is the contribution math embedded in the recap prompt.
func perPaycheck(salary float64, pct int) float64 {
	return salary * float64(pct) / 100 / PayPeriodsPerYear
}

func enrollmentErrText(verr error) string {
	switch verr {
	case models.ErrPctAdviceRequested:
		return "I can't recommend a rate — that choice is yours. Just tell me the percentage you want."
	case models.ErrPctAmbiguous:
		return "I need an exact percentage, not an estimate — please drop words like \"around\" or \"about\"."
	case models.ErrPctOutOfRange:
		return fmt.Sprintf("The contribution rate must be between %d%% and %d%%.", MinContributionPct, MaxContributionPct)
	case models.ErrPctInvalid:
		return "I didn't catch a whole percentage there."
	case models.ErrFundUnknown:
		return "I didn't recognize that fund."
	case models.ErrTextExpected:
		return "I didn't catch that."
	case models.ErrConfirmationMismatch:
		return "That didn't match the confirmation phrase."
	case models.ErrYesNoExpected:
		return "Please answer yes or no."
	case nil:
		return ""
	default:
		return "Let's try that again."
	}
}

func withEnrollmentErr(verr error, base string) string {
	if verr == nil {
		return base
	}
	return enrollmentErrText(verr) + " " + base
}

func fundList() string {
	var b strings.Builder
	for i, f := range fundOptions {
		fmt.Fprintf(&b, "\n%d. %s", i+1, f)
	}
	return b.String()
}

func enrollmentGraph() *Graph {
	steps := map[models.StepID]Step{
		StepEnrollmentIntro: {
			ID:            StepEnrollmentIntro,
			Label:         "Enrollment introduction",
			RequiredInput: models.InputYesNo,
			Validate:      validateYesNo,
			Apply: func(input string, data models.CollectedData) {
				if v, ok := parseYesNo(input); ok {
					enrollmentData(data).Ready = boolPtr(v)
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				base := "Welcome to 401(k) enrollment. I'll walk you through picking a contribution rate and an investment, then you'll review and confirm. Ready to begin? (yes or no)"
				return withEnrollmentErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				d := enrollmentData(data)
				switch {
				case d.Ready == nil:
					return "", Stay
				case *d.Ready:
					return StepContributionPct, Advance
				default:
					return "", Decline
				}
			},
		},
		StepContributionPct: {
			ID:            StepContributionPct,
			Label:         "Contribution rate",
			RequiredInput: models.InputNumber,
			Validate:      validateContributionPct,
			Apply: func(input string, data models.CollectedData) {
				if v, ok := intent.ParseSpokenNumber(input); ok {
					enrollmentData(data).ContributionPct = int(v)
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				base := fmt.Sprintf("What percentage of each paycheck would you like to contribute? Choose a whole number between %d and %d.", MinContributionPct, MaxContributionPct)
				return withEnrollmentErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				if enrollmentData(data).ContributionPct > 0 {
					return StepFundSelection, Advance
				}
				return "", Stay
			},
		},
		StepFundSelection: {
			ID:            StepFundSelection,
			Label:         "Investment selection",
			RequiredInput: models.InputText,
			Validate:      validateFundSelection,
			Apply: func(input string, data models.CollectedData) {
				if fund, ok := matchFund(input); ok {
					enrollmentData(data).FundChoice = fund
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				base := "Which investment would you like? Say the name or the number:" + fundList()
				return withEnrollmentErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				if enrollmentData(data).FundChoice != "" {
					return StepEnrollmentRecap, Advance
				}
				return "", Stay
			},
		},
		StepEnrollmentRecap: {
			ID:            StepEnrollmentRecap,
			Label:         "Enrollment recap",
			RequiredInput: models.InputYesNo,
			Validate:      validateYesNo,
			Apply: func(input string, data models.CollectedData) {
				v, ok := parseYesNo(input)
				if !ok {
					return
				}
				d := enrollmentData(data)
				d.RecapApproved = boolPtr(v)
				if !v {
					// Rejecting the recap re-opens the contribution rate.
					d.ContributionPct = 0
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				d := enrollmentData(data)
				base := fmt.Sprintf(
					"Here's your election: %d%% of each paycheck into %s — about $%.2f per paycheck. Does everything look right? (yes or no)",
					d.ContributionPct, d.FundChoice, perPaycheck(d.AnnualSalary, d.ContributionPct))
				return withEnrollmentErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				d := enrollmentData(data)
				switch {
				case d.RecapApproved == nil:
					return "", Stay
				case *d.RecapApproved:
					return StepConfirmEnrollment, Advance
				default:
					return StepContributionPct, Advance
				}
			},
		},
		StepConfirmEnrollment: {
			ID:            StepConfirmEnrollment,
			Label:         "Confirm enrollment",
			RequiredInput: models.InputConfirmation,
			Validate:      validateEnrollmentConfirmation,
			Prompt: func(data models.CollectedData, verr error) string {
				base := fmt.Sprintf(
					"Confirming will start payroll contributions with your next paycheck. To submit, say exactly: \"%s\". Say \"no\" to cancel.",
					models.CanonicalConfirmationPhrase(models.TaskEnrollment))
				return withEnrollmentErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				return "", Complete
			},
		},
	}

	return &Graph{
		Task:  models.TaskEnrollment,
		Label: "plan enrollment",
		First: StepEnrollmentIntro,
		Steps: steps,
		NewData: func(p Profile) models.CollectedData {
			return &models.EnrollmentData{AnnualSalary: p.AnnualSalary}
		},
		CompleteText: func(data models.CollectedData) string {
			d := enrollmentData(data)
			return fmt.Sprintf(
				"You're enrolled: %d%% of each paycheck into %s, about $%.2f per paycheck starting with your next pay period.",
				d.ContributionPct, d.FundChoice, perPaycheck(d.AnnualSalary, d.ContributionPct))
		},
		DeclineText: func(data models.CollectedData) string {
			return "No problem — I've stopped the enrollment. You can start again whenever you're ready."
		},
	}
}

func init() {
	Register(enrollmentGraph())
}
