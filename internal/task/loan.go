package task

import (
	"fmt"
	"math"
	"strings"

	"github.com/BenefitSphere/PlanVoice/internal/intent"
	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// Step ids for the loan application graph.
const (
	StepEligibilityCheck models.StepID = "ELIGIBILITY_CHECK"
	StepLoanAmount       models.StepID = "LOAN_AMOUNT"
	StepLoanTerm         models.StepID = "LOAN_TERM"
	StepRepaymentReview  models.StepID = "REPAYMENT_REVIEW"
	StepLoanRecap        models.StepID = "LOAN_RECAP"
	StepConfirmSubmit    models.StepID = "CONFIRM_SUBMIT"
)

// Loan policy constants.
const (
	// MaxLoanAmount is the plan-wide cap on a single loan.
	MaxLoanAmount = 50000
	// BalanceLoanRatio caps a loan at this share of the vested balance.
	BalanceLoanRatio = 0.5
	// LoanAnnualRate is the fixed annual interest rate used for the
	// repayment estimate shown in step prompts.
	LoanAnnualRate = 0.085
	// MinLoanTermYears and MaxLoanTermYears bound the repayment term.
	MinLoanTermYears = 1
	MaxLoanTermYears = 5
)

// monthlyLoanPayment is the amortization estimate embedded in the
// repayment review and recap prompts.
func monthlyLoanPayment(amount float64, termYears int) float64 {
	r := LoanAnnualRate / 12
	n := float64(termYears * 12)
	return amount * r / (1 - math.Pow(1+r, -n))
}

// maxLoanFor returns the effective borrowing cap for the given balance.
func maxLoanFor(balance float64) float64 {
	if balance > 0 && balance*BalanceLoanRatio < MaxLoanAmount {
		return balance * BalanceLoanRatio
	}
	return MaxLoanAmount
}

func loanData(data models.CollectedData) *models.LoanData {
	d, ok := data.(*models.LoanData)
	if !ok {
		return &models.LoanData{}
	}
	return d
}

// validateLoanAmount enforces the loan amount policy. Each rejection reason
// is distinct so the renderer can produce a specific re-prompt.
func validateLoanAmount(input string, data models.CollectedData) error {
	if containsAmbiguousQualifier(input) {
		return models.ErrAmountAmbiguous
	}
	v, ok := intent.ParseSpokenNumber(input)
	if !ok {
		return models.ErrAmountInvalid
	}
	if v <= 0 {
		return models.ErrAmountNotPositive
	}
	if v > MaxLoanAmount {
		return models.ErrAmountOverMax
	}
	d := loanData(data)
	if d.AccountBalance > 0 && v > d.AccountBalance*BalanceLoanRatio {
		return models.ErrAmountOverBalance
	}
	return nil
}

// validateLoanTerm enforces the years-only repayment term policy.
func validateLoanTerm(input string, _ models.CollectedData) error {
	if strings.Contains(strings.ToLower(input), "month") {
		return models.ErrTermInMonths
	}
	v, ok := intent.ParseSpokenNumber(input)
	if !ok {
		return models.ErrTermInvalid
	}
	if v != math.Trunc(v) {
		return models.ErrTermFractional
	}
	if v < MinLoanTermYears || v > MaxLoanTermYears {
		return models.ErrTermOutOfRange
	}
	return nil
}

// validateLoanConfirmation only accepts the exact allow-listed phrases.
// The generic signature could technically allow fuzzier matching; the
// strictness is a compliance control guarding the submission.
func validateLoanConfirmation(input string, _ models.CollectedData) error {
	if !models.IsConfirmationPhrase(models.TaskLoan, input) {
		return models.ErrConfirmationMismatch
	}
	return nil
}

// loanErrText maps each validation error to its re-prompt lead-in.
func loanErrText(verr error) string {
	switch verr {
	case models.ErrAmountAmbiguous:
		return "I need an exact amount, not an estimate — please drop words like \"around\" or \"about\"."
	case models.ErrAmountNotPositive:
		return "The loan amount has to be more than zero."
	case models.ErrAmountOverMax:
		return fmt.Sprintf("Plan loans are capped at $%d.", MaxLoanAmount)
	case models.ErrAmountOverBalance:
		return "That amount is more than half your vested balance, which is the most you can borrow."
	case models.ErrAmountInvalid:
		return "I didn't catch a dollar amount there."
	case models.ErrTermInMonths:
		return "Loan terms are set in years, not months."
	case models.ErrTermOutOfRange:
		return fmt.Sprintf("The repayment term must be between %d and %d years.", MinLoanTermYears, MaxLoanTermYears)
	case models.ErrTermFractional:
		return "The term has to be a whole number of years."
	case models.ErrTermInvalid:
		return "I didn't catch a number of years there."
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

// withLoanErr prefixes the base prompt with this render's error lead-in.
func withLoanErr(verr error, base string) string {
	if verr == nil {
		return base
	}
	return loanErrText(verr) + " " + base
}

func loanGraph() *Graph {
	steps := map[models.StepID]Step{
		StepEligibilityCheck: {
			ID:            StepEligibilityCheck,
			Label:         "Eligibility check",
			RequiredInput: models.InputYesNo,
			Validate:      validateYesNo,
			Apply: func(input string, data models.CollectedData) {
				if v, ok := parseYesNo(input); ok {
					loanData(data).Eligible = boolPtr(v)
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				d := loanData(data)
				base := fmt.Sprintf(
					"Let's start your 401(k) loan application. You can borrow up to half your vested balance, capped at $%d — that's $%.0f for your account. Would you like to proceed? (yes or no)",
					MaxLoanAmount, maxLoanFor(d.AccountBalance))
				return withLoanErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				d := loanData(data)
				switch {
				case d.Eligible == nil:
					return "", Stay
				case *d.Eligible:
					return StepLoanAmount, Advance
				default:
					return "", Decline
				}
			},
		},
		StepLoanAmount: {
			ID:            StepLoanAmount,
			Label:         "Loan amount",
			RequiredInput: models.InputNumber,
			Validate:      validateLoanAmount,
			Apply: func(input string, data models.CollectedData) {
				if v, ok := intent.ParseSpokenNumber(input); ok {
					d := loanData(data)
					d.Amount = v
					d.AmountSet = true
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				d := loanData(data)
				base := fmt.Sprintf("How much would you like to borrow? You can request up to $%.0f.", maxLoanFor(d.AccountBalance))
				return withLoanErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				if loanData(data).AmountSet {
					return StepLoanTerm, Advance
				}
				return "", Stay
			},
		},
		StepLoanTerm: {
			ID:            StepLoanTerm,
			Label:         "Repayment term",
			RequiredInput: models.InputNumber,
			Validate:      validateLoanTerm,
			Apply: func(input string, data models.CollectedData) {
				if v, ok := intent.ParseSpokenNumber(input); ok {
					loanData(data).TermYears = int(v)
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				base := fmt.Sprintf("Over how many years will you repay the loan? Choose a whole number between %d and %d.", MinLoanTermYears, MaxLoanTermYears)
				return withLoanErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				if loanData(data).TermYears > 0 {
					return StepRepaymentReview, Advance
				}
				return "", Stay
			},
		},
		StepRepaymentReview: {
			ID:            StepRepaymentReview,
			Label:         "Repayment review",
			RequiredInput: models.InputYesNo,
			Validate:      validateYesNo,
			Apply: func(input string, data models.CollectedData) {
				if v, ok := parseYesNo(input); ok {
					loanData(data).AcceptRepayment = boolPtr(v)
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				d := loanData(data)
				base := fmt.Sprintf(
					"Borrowing $%.0f over %d years at %.1f%% APR works out to about $%.2f per month, repaid through payroll deduction. Does that repayment plan work for you? (yes or no)",
					d.Amount, d.TermYears, LoanAnnualRate*100, monthlyLoanPayment(d.Amount, d.TermYears))
				return withLoanErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				d := loanData(data)
				switch {
				case d.AcceptRepayment == nil:
					return "", Stay
				case *d.AcceptRepayment:
					return StepLoanRecap, Advance
				default:
					return "", Decline
				}
			},
		},
		StepLoanRecap: {
			ID:            StepLoanRecap,
			Label:         "Application recap",
			RequiredInput: models.InputYesNo,
			Validate:      validateYesNo,
			Apply: func(input string, data models.CollectedData) {
				v, ok := parseYesNo(input)
				if !ok {
					return
				}
				d := loanData(data)
				d.RecapApproved = boolPtr(v)
				if !v {
					// Rejecting the recap sends the user back to re-enter
					// the amount.
					d.AmountSet = false
				}
			},
			Prompt: func(data models.CollectedData, verr error) string {
				d := loanData(data)
				base := fmt.Sprintf(
					"Here's your application: a $%.0f loan repaid over %d years at about $%.2f per month. Does everything look right? (yes or no)",
					d.Amount, d.TermYears, monthlyLoanPayment(d.Amount, d.TermYears))
				return withLoanErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				d := loanData(data)
				switch {
				case d.RecapApproved == nil:
					return "", Stay
				case *d.RecapApproved:
					return StepConfirmSubmit, Advance
				default:
					return StepLoanAmount, Advance
				}
			},
		},
		StepConfirmSubmit: {
			ID:            StepConfirmSubmit,
			Label:         "Confirm submission",
			RequiredInput: models.InputConfirmation,
			Validate:      validateLoanConfirmation,
			Prompt: func(data models.CollectedData, verr error) string {
				base := fmt.Sprintf(
					"Submitting this application starts the loan and the payroll deductions. To submit, say exactly: \"%s\". Say \"no\" to cancel.",
					models.CanonicalConfirmationPhrase(models.TaskLoan))
				return withLoanErr(verr, base)
			},
			Next: func(data models.CollectedData) (models.StepID, Resolution) {
				return "", Complete
			},
		},
	}

	return &Graph{
		Task:  models.TaskLoan,
		Label: "loan application",
		First: StepEligibilityCheck,
		Steps: steps,
		NewData: func(p Profile) models.CollectedData {
			return &models.LoanData{AccountBalance: p.AccountBalance}
		},
		CompleteText: func(data models.CollectedData) string {
			d := loanData(data)
			return fmt.Sprintf(
				"Your loan application is submitted: $%.0f over %d years, about $%.2f per month. You'll get a confirmation once processing finishes.",
				d.Amount, d.TermYears, monthlyLoanPayment(d.Amount, d.TermYears))
		},
		DeclineText: func(data models.CollectedData) string {
			return "Understood — I've stopped the loan application. No changes were made to your account."
		},
	}
}

func init() {
	Register(loanGraph())
}
