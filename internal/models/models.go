// Package models defines the core data structures for PlanVoice.
//
// It includes the intent and state enums shared by the classifier, task
// graphs, and agent controller, plus the API request/response types.
package models

import (
	"errors"
	"time"
)

// Intent is the classifier's category for a user utterance.
type Intent string

const (
	// IntentStartEnrollment starts the plan enrollment task.
	IntentStartEnrollment Intent = "START_ENROLLMENT"
	// IntentStartLoan starts the loan application task.
	IntentStartLoan Intent = "START_LOAN"
	// IntentAnswerInput is a plausible answer to the current step's question.
	IntentAnswerInput Intent = "ANSWER_INPUT"
	// IntentConfirm is an exact-phrase confirmation of a pending submission.
	IntentConfirm Intent = "CONFIRM"
	// IntentCancel aborts the active task.
	IntentCancel Intent = "CANCEL"
	// IntentGoBack returns to the previous step.
	IntentGoBack Intent = "GO_BACK"
	// IntentRepeat re-emits the last agent message.
	IntentRepeat Intent = "REPEAT"
	// IntentGeneralQuestion is an off-task question.
	IntentGeneralQuestion Intent = "GENERAL_QUESTION"
	// IntentUnknown is the fallback when nothing else matches.
	IntentUnknown Intent = "UNKNOWN"
)

// RequiredInput declares what kind of answer the current step accepts.
// It drives both classifier behavior and validator selection.
type RequiredInput string

const (
	InputNone         RequiredInput = "NONE"
	InputYesNo        RequiredInput = "YES_NO"
	InputNumber       RequiredInput = "NUMBER"
	InputText         RequiredInput = "TEXT"
	InputConfirmation RequiredInput = "CONFIRMATION"
)

// TaskType identifies a multi-step financial workflow.
type TaskType string

const (
	TaskLoan               TaskType = "LOAN"
	TaskEnrollment         TaskType = "ENROLLMENT"
	TaskPostEnrollmentHelp TaskType = "POST_ENROLLMENT_HELP"
)

// IsValidTaskType checks if the given task type is supported.
func IsValidTaskType(t TaskType) bool {
	switch t {
	case TaskLoan, TaskEnrollment, TaskPostEnrollmentHelp:
		return true
	default:
		return false
	}
}

// StepID identifies one node in a task's step graph.
type StepID string

// AgentState is the macro phase of a conversation. It is orthogonal to
// the per-task step id, which is the micro position inside
// TASK_IN_PROGRESS/CONFIRMATION.
type AgentState string

const (
	StateIdle           AgentState = "IDLE"
	StateTaskSelection  AgentState = "TASK_SELECTION"
	StateTaskInProgress AgentState = "TASK_IN_PROGRESS"
	StateConfirmation   AgentState = "CONFIRMATION"
	StateCompleted      AgentState = "COMPLETED"
	StateCancelled      AgentState = "CANCELLED"
	StateError          AgentState = "ERROR"
)

// UIStateHint tells the consuming UI which presentation phase to render.
// The UI owns rendering, but the value set is dictated by controller phase.
type UIStateHint string

const (
	UIIdle                 UIStateHint = "IDLE"
	UIListening            UIStateHint = "LISTENING"
	UIProcessing           UIStateHint = "PROCESSING"
	UIConfirmationRequired UIStateHint = "CONFIRMATION_REQUIRED"
	UITaskComplete         UIStateHint = "TASK_COMPLETE"
	UITaskCancelled        UIStateHint = "TASK_CANCELLED"
	UIError                UIStateHint = "ERROR"
)

// AgentResponse is the externally observable output of one controller tick.
type AgentResponse struct {
	Text                 string      `json:"text"`
	UIStateHint          UIStateHint `json:"ui_state_hint"`
	RequiresConfirmation bool        `json:"requires_confirmation"`
	ConfirmationPhrase   string      `json:"confirmation_phrase,omitempty"`
	QuickReplies         []string    `json:"quick_replies,omitempty"`
	ErrorMessage         string      `json:"error_message,omitempty"`
}

// Validation errors for step input. Each rejection reason is distinct and
// maps to a distinct re-prompt string. The strict confirmation mismatch is
// a compliance control guarding irreversible submissions.
var (
	ErrAmountAmbiguous      = errors.New("loan amount contains an ambiguous qualifier")
	ErrAmountNotPositive    = errors.New("loan amount must be greater than zero")
	ErrAmountOverMax        = errors.New("loan amount exceeds the plan maximum")
	ErrAmountOverBalance    = errors.New("loan amount exceeds half the account balance")
	ErrAmountInvalid        = errors.New("loan amount is not a recognizable number")
	ErrTermInMonths         = errors.New("loan term must be given in years, not months")
	ErrTermOutOfRange       = errors.New("loan term must be between 1 and 5 years")
	ErrTermFractional       = errors.New("loan term must be a whole number of years")
	ErrTermInvalid          = errors.New("loan term is not a recognizable number")
	ErrPctAmbiguous         = errors.New("contribution percentage contains an ambiguous qualifier")
	ErrPctAdviceRequested   = errors.New("contribution answer reads as a request for advice")
	ErrPctOutOfRange        = errors.New("contribution percentage must be between 1 and 100")
	ErrPctInvalid           = errors.New("contribution percentage is not a recognizable number")
	ErrYesNoExpected        = errors.New("a yes or no answer is expected")
	ErrTextExpected         = errors.New("a non-empty answer is expected")
	ErrConfirmationMismatch = errors.New("confirmation phrase does not match the required phrase exactly")
	ErrFundUnknown          = errors.New("fund selection does not match an available fund")
)

// Request validation errors for the API surface.
var (
	ErrEmptyUtterance   = errors.New("utterance cannot be empty")
	ErrUtteranceTooLong = errors.New("utterance exceeds maximum length")
	ErrSessionNotFound  = errors.New("session not found")
)

// MaxUtteranceLength bounds a single turn's input.
const MaxUtteranceLength = 1024

// CollectedData is the typed per-conversation scratch state accumulated
// across the steps of one task. Implementations are one of LoanData,
// EnrollmentData, or HelpData.
type CollectedData interface {
	Task() TaskType
}

// LoanData carries the values collected across the loan application steps.
// Pointer fields distinguish "unset" from an explicit answer.
type LoanData struct {
	AccountBalance  float64
	Eligible        *bool
	Amount          float64
	AmountSet       bool
	TermYears       int
	AcceptRepayment *bool
	RecapApproved   *bool
}

// Task implements CollectedData.
func (d *LoanData) Task() TaskType { return TaskLoan }

// EnrollmentData carries the values collected across the enrollment steps.
type EnrollmentData struct {
	AnnualSalary    float64
	Ready           *bool
	ContributionPct int
	FundChoice      string
	RecapApproved   *bool
}

// Task implements CollectedData.
func (d *EnrollmentData) Task() TaskType { return TaskEnrollment }

// HelpData carries the values collected across the post-enrollment help steps.
type HelpData struct {
	Topic     string
	WantsMore *bool
}

// Task implements CollectedData.
func (d *HelpData) Task() TaskType { return TaskPostEnrollmentHelp }

// TurnRecord is one audit row per processed turn.
type TurnRecord struct {
	SessionID  string     `json:"session_id"`
	Utterance  string     `json:"utterance"`
	Intent     Intent     `json:"intent"`
	AgentState AgentState `json:"agent_state"`
	Reply      string     `json:"reply"`
	Time       int64      `json:"time"`
}

// Submission is the audit record of a confirmed, irreversible task
// submission (a loan application or an enrollment election).
type Submission struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	TaskType    TaskType  `json:"task_type"`
	Details     string    `json:"details"` // JSON summary of the collected data
	SubmittedAt time.Time `json:"submitted_at"`
}

// TurnRequest is the payload for processing one user turn.
type TurnRequest struct {
	Utterance string `json:"utterance"`
}

// Validate checks a TurnRequest for well-formedness.
func (r *TurnRequest) Validate() error {
	if r.Utterance == "" {
		return ErrEmptyUtterance
	}
	if len(r.Utterance) > MaxUtteranceLength {
		return ErrUtteranceTooLong
	}
	return nil
}

// SessionRequest is the payload for creating a session. Profile values
// default from configuration when omitted.
type SessionRequest struct {
	AccountBalance float64 `json:"account_balance,omitempty"`
	AnnualSalary   float64 `json:"annual_salary,omitempty"`
}

// Validate checks a SessionRequest for well-formedness.
func (r *SessionRequest) Validate() error {
	if r.AccountBalance < 0 {
		return errors.New("account_balance cannot be negative")
	}
	if r.AnnualSalary < 0 {
		return errors.New("annual_salary cannot be negative")
	}
	return nil
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().WithStatus(APIStatusOK).WithResult(result).Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().WithStatus(APIStatusError).WithMessage(message).Build()
}
