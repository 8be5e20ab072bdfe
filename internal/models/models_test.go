package models

import (
	"errors"
	"strings"
	"testing"
)

func TestIsValidTaskType(t *testing.T) {
	for _, task := range []TaskType{TaskLoan, TaskEnrollment, TaskPostEnrollmentHelp} {
		if !IsValidTaskType(task) {
			t.Errorf("IsValidTaskType(%q) = false, want true", task)
		}
	}
	if IsValidTaskType("WIRE_TRANSFER") {
		t.Error("unknown task type should be invalid")
	}
}

func TestTurnRequest_Validate(t *testing.T) {
	req := TurnRequest{Utterance: "I need a loan"}
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	empty := TurnRequest{}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyUtterance) {
		t.Errorf("expected ErrEmptyUtterance, got %v", err)
	}

	long := TurnRequest{Utterance: strings.Repeat("a", MaxUtteranceLength+1)}
	if err := long.Validate(); !errors.Is(err, ErrUtteranceTooLong) {
		t.Errorf("expected ErrUtteranceTooLong, got %v", err)
	}
}

func TestSessionRequest_Validate(t *testing.T) {
	if err := (&SessionRequest{AccountBalance: 85000, AnnualSalary: 60000}).Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if err := (&SessionRequest{}).Validate(); err != nil {
		t.Errorf("empty request should be valid, got %v", err)
	}
	if err := (&SessionRequest{AccountBalance: -1}).Validate(); err == nil {
		t.Error("negative balance should be rejected")
	}
	if err := (&SessionRequest{AnnualSalary: -1}).Validate(); err == nil {
		t.Error("negative salary should be rejected")
	}
}

func TestIsConfirmationPhrase(t *testing.T) {
	if !IsConfirmationPhrase(TaskLoan, "confirm loan application") {
		t.Error("exact phrase should match")
	}
	if !IsConfirmationPhrase(TaskLoan, "  Yes, Submit Loan  ") {
		t.Error("case and whitespace should be forgiven")
	}
	for _, bad := range []string{"yes", "submit", "confirm", "confirm loan application please", "confirm enrollment"} {
		if IsConfirmationPhrase(TaskLoan, bad) {
			t.Errorf("IsConfirmationPhrase(TaskLoan, %q) = true, want false", bad)
		}
	}
	if IsConfirmationPhrase(TaskPostEnrollmentHelp, "confirm loan application") {
		t.Error("help task has no confirmation gate")
	}
}

func TestCanonicalConfirmationPhrase(t *testing.T) {
	if got := CanonicalConfirmationPhrase(TaskLoan); got != "confirm loan application" {
		t.Errorf("loan canonical phrase = %q", got)
	}
	if got := CanonicalConfirmationPhrase(TaskEnrollment); got != "confirm enrollment application" {
		t.Errorf("enrollment canonical phrase = %q", got)
	}
	if got := CanonicalConfirmationPhrase(TaskPostEnrollmentHelp); got != "" {
		t.Errorf("help canonical phrase = %q, want empty", got)
	}
}

func TestCollectedData_TaskTags(t *testing.T) {
	if (&LoanData{}).Task() != TaskLoan {
		t.Error("LoanData should tag TaskLoan")
	}
	if (&EnrollmentData{}).Task() != TaskEnrollment {
		t.Error("EnrollmentData should tag TaskEnrollment")
	}
	if (&HelpData{}).Task() != TaskPostEnrollmentHelp {
		t.Error("HelpData should tag TaskPostEnrollmentHelp")
	}
}

func TestAPIResponseBuilder(t *testing.T) {
	resp := NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage("done").
		WithResult(map[string]string{"k": "v"}).
		Build()
	if resp.Status != string(APIStatusOK) {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Message != "done" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Result == nil {
		t.Error("result missing")
	}
}

func TestSuccessAndError(t *testing.T) {
	ok := Success("payload")
	if ok.Status != string(APIStatusOK) || ok.Result != "payload" {
		t.Errorf("Success = %+v", ok)
	}
	bad := Error("broken")
	if bad.Status != string(APIStatusError) || bad.Message != "broken" {
		t.Errorf("Error = %+v", bad)
	}
}
