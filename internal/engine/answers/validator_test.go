package answers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist-engine/internal/common/errors"
	"checklist-engine/internal/models"
)

var questionSet = []models.Question{
	{ID: "q1", CategoryID: "cat-1", Title: "Fire extinguisher present", Weight: 0.6, Required: true, IsActive: true},
	{ID: "q2", CategoryID: "cat-1", Title: "Exits unobstructed", Weight: 0.4, IsActive: true},
	{ID: "q3", CategoryID: "cat-2", Title: "Partial checks allowed", Weight: 1.0, HasIntermediateApproval: true, IntermediateValue: 0.5, IsActive: true},
}

func answer(questionID string, status models.ApprovalStatus, value float64) models.Answer {
	return models.Answer{QuestionID: questionID, ApprovalStatus: status, ApprovalValue: value}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		questions []models.Question
		submitted []models.Answer
		wantCode  errors.ErrorCode
	}{
		{
			name:      "valid full submission",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 1),
				answer("q2", models.ApprovalStatusNotApproved, 0),
				answer("q3", models.ApprovalStatusIntermediate, 0.5),
			},
		},
		{
			name:      "optional questions may stay unanswered",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 1),
			},
		},
		{
			name:      "required question missing",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q2", models.ApprovalStatusApproved, 1),
			},
			wantCode: errors.ErrCodeMissingRequiredAnswers,
		},
		{
			name:      "answer for unknown question",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 1),
				answer("q99", models.ApprovalStatusApproved, 1),
			},
			wantCode: errors.ErrCodeUnknownQuestion,
		},
		{
			name:      "value above one",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 1.2),
			},
			wantCode: errors.ErrCodeOutOfRange,
		},
		{
			name:      "negative value",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusNotApproved, -0.1),
			},
			wantCode: errors.ErrCodeOutOfRange,
		},
		{
			name:      "intermediate on question without intermediate approval",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusIntermediate, 0.5),
			},
			wantCode: errors.ErrCodeIntermediateNotAllowed,
		},
		{
			name:      "intermediate value within tolerance",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 1),
				answer("q3", models.ApprovalStatusIntermediate, 0.509),
			},
		},
		{
			name:      "intermediate value outside tolerance",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 1),
				answer("q3", models.ApprovalStatusIntermediate, 0.52),
			},
			wantCode: errors.ErrCodeIntermediateValueMismatch,
		},
		{
			name:      "approved must carry value 1",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusApproved, 0.9),
			},
			wantCode: errors.ErrCodeApprovedValueMismatch,
		},
		{
			name:      "not approved must carry value 0",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", models.ApprovalStatusNotApproved, 0.1),
			},
			wantCode: errors.ErrCodeNotApprovedValueMismatch,
		},
		{
			name:      "missing approval status",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", "", 1),
			},
			wantCode: errors.ErrCodeRequestValidationFailed,
		},
		{
			name:      "unrecognized approval status",
			questions: questionSet,
			submitted: []models.Answer{
				answer("q1", "MAYBE", 1),
			},
			wantCode: errors.ErrCodeRequestValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.questions, tt.submitted)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestValidateMissingRequiredCarriesTitles(t *testing.T) {
	err := Validate(questionSet, nil)
	require.Error(t, err)

	se, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMissingRequiredAnswers, se.Code)
	assert.Contains(t, se.Details, "Fire extinguisher present")
}

func TestValidateCompletenessRunsBeforeAnswerChecks(t *testing.T) {
	// q1 (required) is unanswered and the submitted answer is malformed; the
	// completeness failure is reported first.
	err := Validate(questionSet, []models.Answer{
		answer("q2", models.ApprovalStatusApproved, 0.5),
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingRequiredAnswers, errors.CodeOf(err))
}
