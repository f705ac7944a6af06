// Package errors provides the standardized error taxonomy for the checklist
// engine: validation errors surface unmodified to the caller, not-found errors
// map to 404, persistence errors propagate without retry.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Definition-time validation errors (template and group weights).
const (
	ErrCodeMinWeightViolation   ErrorCode = "MIN_WEIGHT_VIOLATION"
	ErrCodeTemplatesNotFound    ErrorCode = "TEMPLATES_NOT_FOUND"
	ErrCodeWeightsRequired      ErrorCode = "WEIGHTS_REQUIRED"
	ErrCodeMissingWeights       ErrorCode = "MISSING_WEIGHTS"
	ErrCodeExtraWeights         ErrorCode = "EXTRA_WEIGHTS"
	ErrCodeWeightsNotNormalized ErrorCode = "WEIGHTS_NOT_NORMALIZED"
)

// Answer validation errors.
const (
	ErrCodeMissingRequiredAnswers    ErrorCode = "MISSING_REQUIRED_ANSWERS"
	ErrCodeUnknownQuestion           ErrorCode = "UNKNOWN_QUESTION"
	ErrCodeOutOfRange                ErrorCode = "OUT_OF_RANGE"
	ErrCodeIntermediateNotAllowed    ErrorCode = "INTERMEDIATE_NOT_ALLOWED"
	ErrCodeIntermediateValueMismatch ErrorCode = "INTERMEDIATE_VALUE_MISMATCH"
	ErrCodeApprovedValueMismatch     ErrorCode = "APPROVED_VALUE_MISMATCH"
	ErrCodeNotApprovedValueMismatch  ErrorCode = "NOT_APPROVED_VALUE_MISMATCH"
	ErrCodeExecutionTargetConflict   ErrorCode = "EXECUTION_TARGET_CONFLICT"
	ErrCodeRequestValidationFailed   ErrorCode = "REQUEST_VALIDATION_FAILED"
)

// Lookup errors.
const (
	ErrCodeTemplateNotFound  ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeGroupNotFound     ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeExecutionNotFound ErrorCode = "EXECUTION_NOT_FOUND"
)

// Persistence / infrastructure errors.
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeIncidentPublishFailed    ErrorCode = "INCIDENT_PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Definition-time constructors
// ==========================

// NewMinWeightViolationError reports a question weight below the 0.1 floor.
func NewMinWeightViolationError(categoryID, questionID string, weight float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeMinWeightViolation,
		Message:   "Question weight below minimum of 0.1",
		Details:   fmt.Sprintf("categoryId: %s, questionId: %s, weight: %g", categoryID, questionID, weight),
		Retryable: false,
		Metadata:  map[string]interface{}{"categoryId": categoryID, "questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplatesNotFoundError reports group template ids with no matching template.
func NewTemplatesNotFoundError(missingIDs []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplatesNotFound,
		Message:   "One or more group templates do not exist",
		Details:   fmt.Sprintf("missingIds: %s", strings.Join(missingIDs, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingIds": missingIDs},
		Timestamp: time.Now().UTC(),
	}
}

// NewWeightsRequiredError reports a group with templates but no weight map.
func NewWeightsRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWeightsRequired,
		Message:   "Template weights are required when templates are attached",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingWeightsError reports template ids absent from the weight map.
func NewMissingWeightsError(ids []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingWeights,
		Message:   "Weights missing for attached templates",
		Details:   fmt.Sprintf("ids: %s", strings.Join(ids, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"ids": ids},
		Timestamp: time.Now().UTC(),
	}
}

// NewExtraWeightsError reports weight map keys that match no attached template.
func NewExtraWeightsError(ids []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtraWeights,
		Message:   "Weights present for templates not attached to the group",
		Details:   fmt.Sprintf("ids: %s", strings.Join(ids, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"ids": ids},
		Timestamp: time.Now().UTC(),
	}
}

// NewWeightsNotNormalizedError reports weights outside [0,1] or a sum off 1.0.
func NewWeightsNotNormalizedError(sum float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeWeightsNotNormalized,
		Message:   "Template weights must lie in [0,1] and sum to 1.0",
		Details:   fmt.Sprintf("sum: %g", sum),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Answer validation constructors
// ==========================

// NewMissingRequiredAnswersError carries human-readable question titles so the
// caller can correct the submission.
func NewMissingRequiredAnswersError(questionTitles []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingRequiredAnswers,
		Message:   "Required questions are missing answers",
		Details:   fmt.Sprintf("questions: %s", strings.Join(questionTitles, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionTitles": questionTitles},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownQuestionError reports an answer for a question outside the
// resolved template/group question set.
func NewUnknownQuestionError(questionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownQuestion,
		Message:   "Answer references a question not in this checklist",
		Details:   fmt.Sprintf("questionId: %s", questionID),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewOutOfRangeError reports an approval value outside [0,1].
func NewOutOfRangeError(questionID string, value float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutOfRange,
		Message:   "Approval value must lie in [0,1]",
		Details:   fmt.Sprintf("questionId: %s, approvalValue: %g", questionID, value),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewIntermediateNotAllowedError reports an INTERMEDIATE answer on a question
// without intermediate approval enabled.
func NewIntermediateNotAllowedError(questionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntermediateNotAllowed,
		Message:   "Question does not allow intermediate approval",
		Details:   fmt.Sprintf("questionId: %s", questionID),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewIntermediateValueMismatchError reports an intermediate approval value too
// far from the question's configured intermediate value.
func NewIntermediateValueMismatchError(questionID string, got, want float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntermediateValueMismatch,
		Message:   "Approval value does not match the question's intermediate value",
		Details:   fmt.Sprintf("questionId: %s, approvalValue: %g, intermediateValue: %g", questionID, got, want),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewApprovedValueMismatchError reports an APPROVED answer whose value is not 1.
func NewApprovedValueMismatchError(questionID string, got float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeApprovedValueMismatch,
		Message:   "Approved answers must carry approval value 1",
		Details:   fmt.Sprintf("questionId: %s, approvalValue: %g", questionID, got),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotApprovedValueMismatchError reports a NOT_APPROVED answer whose value is not 0.
func NewNotApprovedValueMismatchError(questionID string, got float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotApprovedValueMismatch,
		Message:   "Not-approved answers must carry approval value 0",
		Details:   fmt.Sprintf("questionId: %s, approvalValue: %g", questionID, got),
		Retryable: false,
		Metadata:  map[string]interface{}{"questionId": questionID},
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionTargetConflictError reports a request with both or neither of
// templateId/groupId set.
func NewExecutionTargetConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionTargetConflict,
		Message:   "Exactly one of templateId or groupId must be set",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestValidationFailedError reports a malformed request body.
func NewRequestValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Lookup constructors
// ==========================

// NewTemplateNotFoundError creates a non-retryable template lookup error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGroupNotFoundError creates a non-retryable group lookup error.
func NewGroupNotFoundError(groupID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGroupNotFound,
		Message:   "Group not found",
		Details:   fmt.Sprintf("groupId: %s", groupID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionNotFoundError creates a non-retryable execution lookup error.
func NewExecutionNotFoundError(executionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionNotFound,
		Message:   "Execution not found",
		Details:   fmt.Sprintf("executionId: %s", executionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Persistence constructors
// ==========================

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIncidentPublishFailedError wraps a sink publish failure. The engine logs
// and counts these but never fails the execution on them.
func NewIncidentPublishFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncidentPublishFailed,
		Message:   "Incident sink publish failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Classification helpers
// ==========================

var notFoundCodes = map[ErrorCode]bool{
	ErrCodeTemplateNotFound:  true,
	ErrCodeGroupNotFound:     true,
	ErrCodeExecutionNotFound: true,
	ErrCodeTemplatesNotFound: true,
}

var persistenceCodes = map[ErrorCode]bool{
	ErrCodeDatabaseConnectionFailed: true,
	ErrCodeQueryExecutionFailed:     true,
	ErrCodeDatabaseInsertFailed:     true,
	ErrCodeIncidentPublishFailed:    true,
}

// CodeOf extracts the ErrorCode from any error, or empty string.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNotFound reports whether the error is a lookup failure.
func IsNotFound(err error) bool {
	return notFoundCodes[CodeOf(err)]
}

// IsValidation reports whether the error is a request/definition validation
// failure, surfaced to the caller unmodified and never retried.
func IsValidation(err error) bool {
	code := CodeOf(err)
	if code == "" {
		return false
	}
	return !notFoundCodes[code] && !persistenceCodes[code]
}

// HTTPStatus maps an error to the status code the HTTP layer should return.
func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
