package domain

import "fmt"

// Error codes for the adaptive-trust core.
const (
	CodeRiskEvaluation   = "RISK_EVALUATION_FAILED"
	CodePolicyEvaluation = "POLICY_EVALUATION_FAILED"
	CodeDuplicateSession = "DUPLICATE_SESSION"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// ErrRiskEvaluation wraps the first factor-lookup failure that aborted a
// risk evaluation. Never carries partial scores.
func ErrRiskEvaluation(cause error) *AppError {
	return &AppError{Code: CodeRiskEvaluation, Message: "risk evaluation failed", Status: 502, Cause: cause}
}

// ErrPolicyEvaluation wraps a risk-evaluation failure surfaced during an
// access decision.
func ErrPolicyEvaluation(cause error) *AppError {
	return &AppError{Code: CodePolicyEvaluation, Message: "policy evaluation failed", Status: 502, Cause: cause}
}

// ErrDuplicateSession signals StartMonitoring was called twice for the
// same session id. Caller bug, not a transient condition.
func ErrDuplicateSession(sessionID string) *AppError {
	return &AppError{Code: CodeDuplicateSession, Message: fmt.Sprintf("session %s is already monitored", sessionID), Status: 409}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
