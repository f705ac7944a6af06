// Package answers enforces per-answer consistency against the loaded question
// set before any scoring or persistence happens. All checks are pure; a
// violation aborts the execution.
package answers

import (
	"fmt"
	"math"

	"checklist-engine/internal/common/errors"
	"checklist-engine/internal/models"
)

// IntermediateTolerance is how far an intermediate approval value may drift
// from the question's configured intermediate value.
const IntermediateTolerance = 0.01

// Validate runs two passes over the submitted answers: completeness (every
// required question has a matching answer) and per-answer type checks against
// the question definition. The first violation is returned.
func Validate(questions []models.Question, submitted []models.Answer) error {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make(map[string]bool, len(submitted))
	for _, a := range submitted {
		answered[a.QuestionID] = true
	}

	var missingTitles []string
	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			missingTitles = append(missingTitles, q.Title)
		}
	}
	if len(missingTitles) > 0 {
		return errors.NewMissingRequiredAnswersError(missingTitles)
	}

	for _, a := range submitted {
		if err := validateAnswer(a, byID); err != nil {
			return err
		}
	}
	return nil
}

func validateAnswer(a models.Answer, questions map[string]models.Question) error {
	q, ok := questions[a.QuestionID]
	if !ok {
		return errors.NewUnknownQuestionError(a.QuestionID)
	}

	if a.ApprovalStatus == "" {
		return errors.NewRequestValidationFailedError(
			fmt.Sprintf("approvalStatus is required, questionId: %s", a.QuestionID))
	}

	if a.ApprovalValue < 0 || a.ApprovalValue > 1 {
		return errors.NewOutOfRangeError(a.QuestionID, a.ApprovalValue)
	}

	switch a.ApprovalStatus {
	case models.ApprovalStatusIntermediate:
		if !q.HasIntermediateApproval {
			return errors.NewIntermediateNotAllowedError(a.QuestionID)
		}
		if math.Abs(a.ApprovalValue-q.IntermediateValue) > IntermediateTolerance {
			return errors.NewIntermediateValueMismatchError(a.QuestionID, a.ApprovalValue, q.IntermediateValue)
		}
	case models.ApprovalStatusApproved:
		if a.ApprovalValue != 1 {
			return errors.NewApprovedValueMismatchError(a.QuestionID, a.ApprovalValue)
		}
	case models.ApprovalStatusNotApproved:
		if a.ApprovalValue != 0 {
			return errors.NewNotApprovedValueMismatchError(a.QuestionID, a.ApprovalValue)
		}
	default:
		return errors.NewRequestValidationFailedError(
			fmt.Sprintf("unknown approvalStatus %q, questionId: %s", a.ApprovalStatus, a.QuestionID))
	}

	return nil
}
