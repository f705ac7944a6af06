package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "checklist-engine/internal/common/errors"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/models"
)

func newStore(t *testing.T) (*PostgresExecutionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresExecutionStore(db, logger.NewTestLogger(t)), mock
}

func TestCreateExecution(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO checklist_executions").
		WithArgs(
			sqlmock.AnyArg(), // generated id
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			"user-1", "warehouse", "wh-9",
			"IN_PROGRESS", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	exec := &models.Execution{
		TemplateID:     "tpl-1",
		ExecutorUserID: "user-1",
		TargetType:     "warehouse",
		TargetID:       "wh-9",
		Status:         models.ExecutionStatusInProgress,
		ExecutedAt:     time.Now().UTC(),
	}
	err := store.CreateExecution(context.Background(), exec)
	require.NoError(t, err)
	assert.NotEmpty(t, exec.ID)
	assert.False(t, exec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateExecutionInsertFailure(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO checklist_executions").
		WillReturnError(assert.AnError)

	err := store.CreateExecution(context.Background(), &models.Execution{
		TemplateID: "tpl-1", ExecutorUserID: "user-1",
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeDatabaseInsertFailed, stderrors.CodeOf(err))
}

func TestSaveAnswersAssignsIDs(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO checklist_answers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO checklist_answers").
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := store.SaveAnswers(context.Background(), []models.Answer{
		{ExecutionID: "exec-1", QuestionID: "q1", ApprovalStatus: models.ApprovalStatusApproved, ApprovalValue: 1},
		{ExecutionID: "exec-1", QuestionID: "q2", ApprovalStatus: models.ApprovalStatusNotApproved},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEmpty(t, saved[0].ID)
	assert.NotEmpty(t, saved[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAnswersPartialFailure(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO checklist_answers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO checklist_answers").
		WillReturnError(assert.AnError)

	saved, err := store.SaveAnswers(context.Background(), []models.Answer{
		{ExecutionID: "exec-1", QuestionID: "q1"},
		{ExecutionID: "exec-1", QuestionID: "q2"},
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeDatabaseInsertFailed, stderrors.CodeOf(err))
	// The successfully inserted prefix is returned.
	assert.Len(t, saved, 1)
}

func TestUpdateExecution(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("UPDATE checklist_executions").
		WithArgs(
			"exec-1", "COMPLETED", 0.4, 1.0, 40.0,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateExecution(context.Background(), &models.Execution{
		ID:               "exec-1",
		Status:           models.ExecutionStatusCompleted,
		TotalScore:       0.4,
		MaxPossibleScore: 1.0,
		PercentageScore:  40.0,
		CategoryScores:   map[string]float64{"cat-1": 40},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExecutionMissingRow(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("UPDATE checklist_executions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateExecution(context.Background(), &models.Execution{ID: "missing"})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeExecutionNotFound, stderrors.CodeOf(err))
}

func TestSaveIncident(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO checklist_incidents").
		WithArgs(
			sqlmock.AnyArg(), "exec-1", "CRITICAL", "OPEN",
			40.0, 70.0, sqlmock.AnyArg(), true, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	incident := &models.Incident{
		ExecutionID:      "exec-1",
		Severity:         models.IncidentSeverityCritical,
		Status:           models.IncidentStatusOpen,
		PerformanceScore: 40,
		ThresholdScore:   70,
		FailedCategories: []string{"cat-1"},
		AutoGenerated:    true,
		CreatedAt:        time.Now().UTC(),
	}
	err := store.SaveIncident(context.Background(), incident)
	require.NoError(t, err)
	assert.NotEmpty(t, incident.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func executionColumns() []string {
	return []string{
		"id", "template_id", "group_id", "executor_user_id", "target_type", "target_id",
		"status", "total_score", "max_possible_score", "percentage_score",
		"category_scores", "group_score", "template_scores", "notes",
		"executed_at", "created_at", "updated_at",
	}
}

func TestFindExecutionByIDWithRelations(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM checklist_executions").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows(executionColumns()).AddRow(
			"exec-1", nil, "grp-1", "user-1", "driver", "drv-7",
			"LOW_PERFORMANCE", 1.8, 3.0, 60.0,
			[]byte(`{"t1_c1":80,"t2_c2":50}`), 68.0, []byte(`{"t1":80,"t2":50}`), nil,
			now, now, now,
		))

	mock.ExpectQuery("SELECT (.+) FROM checklist_answers").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "execution_id", "question_id", "approval_status", "approval_value",
			"answer_score", "max_score", "is_skipped", "answered_at",
		}).AddRow("ans-1", "exec-1", "q1", "APPROVED", 1.0, 1.0, 0.5, false, now))

	mock.ExpectQuery("SELECT (.+) FROM checklist_incidents").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "execution_id", "severity", "status", "performance_score",
			"threshold_score", "failed_categories", "auto_generated", "created_at",
		}).AddRow("inc-1", "exec-1", "LOW", "OPEN", 68.0, 70.0, []byte(`["t2_c2"]`), true, now))

	exec, err := store.FindExecutionByID(context.Background(), "exec-1", true)
	require.NoError(t, err)

	assert.Equal(t, "grp-1", exec.GroupID)
	assert.Empty(t, exec.TemplateID)
	assert.Equal(t, models.ExecutionStatusLowPerformance, exec.Status)
	require.NotNil(t, exec.GroupScore)
	assert.InDelta(t, 68.0, *exec.GroupScore, 1e-9)
	assert.InDelta(t, 80.0, exec.CategoryScores["t1_c1"], 1e-9)
	assert.InDelta(t, 50.0, exec.TemplateScores["t2"], 1e-9)

	require.Len(t, exec.Answers, 1)
	require.NotNil(t, exec.Answers[0].AnswerScore)
	assert.InDelta(t, 1.0, *exec.Answers[0].AnswerScore, 1e-9)

	require.NotNil(t, exec.Incident)
	assert.Equal(t, models.IncidentSeverityLow, exec.Incident.Severity)
	assert.Equal(t, []string{"t2_c2"}, exec.Incident.FailedCategories)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExecutionByIDWithoutRelations(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM checklist_executions").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows(executionColumns()).AddRow(
			"exec-1", "tpl-1", nil, "user-1", "warehouse", "wh-9",
			"COMPLETED", 1.0, 1.0, 100.0,
			[]byte(`{"cat-1":100}`), nil, nil, "all good",
			now, now, now,
		))

	exec, err := store.FindExecutionByID(context.Background(), "exec-1", false)
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", exec.TemplateID)
	assert.Equal(t, "all good", exec.Notes)
	assert.Nil(t, exec.GroupScore)
	assert.Empty(t, exec.Answers)
	assert.Nil(t, exec.Incident)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExecutionByIDNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT (.+) FROM checklist_executions").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(executionColumns()))

	_, err := store.FindExecutionByID(context.Background(), "missing", true)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeExecutionNotFound, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsNotFound(err))
}

func TestFindExecutionMissingIncidentIsNil(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM checklist_executions").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows(executionColumns()).AddRow(
			"exec-1", "tpl-1", nil, "user-1", "warehouse", "wh-9",
			"COMPLETED", 1.0, 1.0, 100.0,
			[]byte(`{"cat-1":100}`), nil, nil, nil,
			now, now, now,
		))
	mock.ExpectQuery("SELECT (.+) FROM checklist_answers").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "execution_id", "question_id", "approval_status", "approval_value",
			"answer_score", "max_score", "is_skipped", "answered_at",
		}))
	mock.ExpectQuery("SELECT (.+) FROM checklist_incidents").
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "execution_id", "severity", "status", "performance_score",
			"threshold_score", "failed_categories", "auto_generated", "created_at",
		}))

	exec, err := store.FindExecutionByID(context.Background(), "exec-1", true)
	require.NoError(t, err)
	assert.Nil(t, exec.Incident)
	assert.NoError(t, mock.ExpectationsWereMet())
}
