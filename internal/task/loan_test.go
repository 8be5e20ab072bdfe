package task

import (
	"errors"
	"math"
	"testing"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

func TestValidateLoanAmount(t *testing.T) {
	data := &models.LoanData{AccountBalance: 85000}

	cases := []struct {
		in   string
		want error
	}{
		{"12000", nil},
		{"twelve thousand", nil},
		{"$12,000", nil},
		{"around 5000", models.ErrAmountAmbiguous},
		{"about twelve thousand", models.ErrAmountAmbiguous},
		{"maybe 10000", models.ErrAmountAmbiguous},
		{"60000", models.ErrAmountOverMax},
		{"50000", models.ErrAmountOverBalance},
		{"0", models.ErrAmountNotPositive},
		{"no idea", models.ErrAmountInvalid},
	}
	for _, c := range cases {
		got := validateLoanAmount(c.in, data)
		if !errors.Is(got, c.want) {
			t.Errorf("validateLoanAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidateLoanAmount_BalanceHalfCap(t *testing.T) {
	// 42500 is exactly half of 85000 and must pass; a dollar more must not.
	data := &models.LoanData{AccountBalance: 85000}
	if err := validateLoanAmount("42500", data); err != nil {
		t.Errorf("half the balance should be allowed, got %v", err)
	}
	if err := validateLoanAmount("42501", data); !errors.Is(err, models.ErrAmountOverBalance) {
		t.Errorf("expected ErrAmountOverBalance, got %v", err)
	}
}

func TestValidateLoanAmount_ZeroBalanceSkipsBalanceCheck(t *testing.T) {
	// Without a known balance only the plan cap applies.
	data := &models.LoanData{}
	if err := validateLoanAmount("49000", data); err != nil {
		t.Errorf("expected nil with unknown balance, got %v", err)
	}
}

func TestValidateLoanTerm(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"3", nil},
		{"five", nil},
		{"1", nil},
		{"18 months", models.ErrTermInMonths},
		{"2.5", models.ErrTermFractional},
		{"6", models.ErrTermOutOfRange},
		{"0", models.ErrTermOutOfRange},
		{"a while", models.ErrTermInvalid},
	}
	for _, c := range cases {
		got := validateLoanTerm(c.in, nil)
		if !errors.Is(got, c.want) {
			t.Errorf("validateLoanTerm(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidateLoanConfirmation(t *testing.T) {
	for _, phrase := range models.LoanConfirmationPhrases {
		if err := validateLoanConfirmation(phrase, nil); err != nil {
			t.Errorf("validateLoanConfirmation(%q) = %v, want nil", phrase, err)
		}
	}
	for _, bad := range []string{"yes", "submit", "yes submit", "confirm enrollment"} {
		if err := validateLoanConfirmation(bad, nil); !errors.Is(err, models.ErrConfirmationMismatch) {
			t.Errorf("validateLoanConfirmation(%q) = %v, want ErrConfirmationMismatch", bad, err)
		}
	}
}

func TestMonthlyLoanPayment(t *testing.T) {
	// $12,000 over 3 years at 8.5% APR is about $378.81/month.
	got := monthlyLoanPayment(12000, 3)
	if math.Abs(got-378.81) > 0.5 {
		t.Errorf("monthlyLoanPayment(12000, 3) = %.2f, want about 378.81", got)
	}
}

func TestMaxLoanFor(t *testing.T) {
	if got := maxLoanFor(85000); got != 42500 {
		t.Errorf("maxLoanFor(85000) = %v, want 42500", got)
	}
	if got := maxLoanFor(200000); got != MaxLoanAmount {
		t.Errorf("maxLoanFor(200000) = %v, want %v", got, float64(MaxLoanAmount))
	}
	if got := maxLoanFor(0); got != MaxLoanAmount {
		t.Errorf("maxLoanFor(0) = %v, want %v", got, float64(MaxLoanAmount))
	}
}

func TestLoanGraph_HappyPathRouting(t *testing.T) {
	g, ok := Get(models.TaskLoan)
	if !ok {
		t.Fatal("loan graph not registered")
	}
	data := g.NewData(Profile{AccountBalance: 85000})

	walk := []struct {
		step   models.StepID
		answer string
		next   models.StepID
		res    Resolution
	}{
		{StepEligibilityCheck, "yes", StepLoanAmount, Advance},
		{StepLoanAmount, "12000", StepLoanTerm, Advance},
		{StepLoanTerm, "3", StepRepaymentReview, Advance},
		{StepRepaymentReview, "yes", StepLoanRecap, Advance},
		{StepLoanRecap, "yes", StepConfirmSubmit, Advance},
	}
	for _, w := range walk {
		step, ok := g.Step(w.step)
		if !ok {
			t.Fatalf("step %s missing", w.step)
		}
		if err := step.Validate(w.answer, data); err != nil {
			t.Fatalf("step %s rejected %q: %v", w.step, w.answer, err)
		}
		step.Apply(w.answer, data)
		next, res := step.Next(data)
		if next != w.next || res != w.res {
			t.Fatalf("step %s resolved to (%s, %v), want (%s, %v)", w.step, next, res, w.next, w.res)
		}
	}

	confirm, _ := g.Step(StepConfirmSubmit)
	if _, res := confirm.Next(data); res != Complete {
		t.Errorf("confirmation step must resolve to Complete, got %v", res)
	}
}

func TestLoanGraph_RecapRejectionReopensAmount(t *testing.T) {
	g, _ := Get(models.TaskLoan)
	data := &models.LoanData{AccountBalance: 85000, Amount: 12000, AmountSet: true, TermYears: 3}

	recap, _ := g.Step(StepLoanRecap)
	recap.Apply("no", data)
	next, res := recap.Next(data)
	if next != StepLoanAmount || res != Advance {
		t.Fatalf("rejected recap resolved to (%s, %v), want (%s, %v)", next, res, StepLoanAmount, Advance)
	}
	if data.AmountSet {
		t.Error("rejected recap should clear the committed amount")
	}
	// The amount step is live again rather than auto-skipping forward.
	amount, _ := g.Step(StepLoanAmount)
	if _, res := amount.Next(data); res != Stay {
		t.Errorf("amount step should wait for a new answer, got %v", res)
	}
}

func TestLoanGraph_DeclinePaths(t *testing.T) {
	g, _ := Get(models.TaskLoan)

	elig, _ := g.Step(StepEligibilityCheck)
	data := g.NewData(Profile{AccountBalance: 85000})
	elig.Apply("no", data)
	if _, res := elig.Next(data); res != Decline {
		t.Errorf("declined eligibility should end the task, got %v", res)
	}

	review, _ := g.Step(StepRepaymentReview)
	data2 := &models.LoanData{AccountBalance: 85000, Amount: 12000, AmountSet: true, TermYears: 3}
	review.Apply("no", data2)
	if _, res := review.Next(data2); res != Decline {
		t.Errorf("rejected repayment plan should end the task, got %v", res)
	}
}
