// internal/models/answer.go
package models

import "time"

// ApprovalStatus is the caller-declared outcome for one answered question.
type ApprovalStatus string

const (
	ApprovalStatusApproved     ApprovalStatus = "APPROVED"
	ApprovalStatusNotApproved  ApprovalStatus = "NOT_APPROVED"
	ApprovalStatusIntermediate ApprovalStatus = "INTERMEDIATE"
)

// Answer records one (execution, question) response. ApprovalValue is the
// [0,1] compliance fraction and doubles as the question's score.
// AnswerScore and MaxScore are filled in by the score calculator, never by
// the caller.
type Answer struct {
	ID             string         `json:"id"`
	ExecutionID    string         `json:"executionId"`
	QuestionID     string         `json:"questionId"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	ApprovalValue  float64        `json:"approvalValue"`
	AnswerScore    *float64       `json:"answerScore,omitempty"`
	MaxScore       *float64       `json:"maxScore,omitempty"`
	IsSkipped      bool           `json:"isSkipped"`
	AnsweredAt     time.Time      `json:"answeredAt"`
}
