// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	stderrors "checklist-engine/internal/common/errors"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/models"

	"github.com/google/uuid"
)

// PostgresExecutionStore implements ExecutionStore on PostgreSQL. Score maps
// are stored as JSONB.
type PostgresExecutionStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresExecutionStore(db *sql.DB, log logger.Logger) *PostgresExecutionStore {
	return &PostgresExecutionStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "execution-store"}),
	}
}

func (s *PostgresExecutionStore) CreateExecution(ctx context.Context, exec *models.Execution) error {
	if exec.ID == "" {
		exec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exec.CreatedAt = now
	exec.UpdatedAt = now

	const query = `
		INSERT INTO checklist_executions
			(id, template_id, group_id, executor_user_id, target_type, target_id,
			 status, notes, executed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		exec.ID, nullString(exec.TemplateID), nullString(exec.GroupID),
		exec.ExecutorUserID, exec.TargetType, exec.TargetID,
		string(exec.Status), nullString(exec.Notes), exec.ExecutedAt,
		exec.CreatedAt, exec.UpdatedAt,
	)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError("createExecution", err)
	}
	return nil
}

// SaveAnswers inserts one row per answer. There is intentionally no
// surrounding transaction; a partial save is recoverable because scores are
// recomputed, never read back, during the same pass.
func (s *PostgresExecutionStore) SaveAnswers(ctx context.Context, answers []models.Answer) ([]models.Answer, error) {
	const query = `
		INSERT INTO checklist_answers
			(id, execution_id, question_id, approval_status, approval_value,
			 answer_score, max_score, is_skipped, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	saved := make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		_, err := s.db.ExecContext(ctx, query,
			a.ID, a.ExecutionID, a.QuestionID, string(a.ApprovalStatus), a.ApprovalValue,
			nullFloat(a.AnswerScore), nullFloat(a.MaxScore), a.IsSkipped, a.AnsweredAt,
		)
		if err != nil {
			return saved, stderrors.NewDatabaseInsertFailedError("saveAnswers", err)
		}
		saved = append(saved, a)
	}
	return saved, nil
}

func (s *PostgresExecutionStore) UpdateExecution(ctx context.Context, exec *models.Execution) error {
	categoryScores, err := json.Marshal(exec.CategoryScores)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("updateExecution", err)
	}
	var templateScores []byte
	if exec.TemplateScores != nil {
		if templateScores, err = json.Marshal(exec.TemplateScores); err != nil {
			return stderrors.NewQueryExecutionFailedError("updateExecution", err)
		}
	}

	exec.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE checklist_executions
		SET status = $2, total_score = $3, max_possible_score = $4,
		    percentage_score = $5, category_scores = $6, group_score = $7,
		    template_scores = $8, updated_at = $9
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		exec.ID, string(exec.Status), exec.TotalScore, exec.MaxPossibleScore,
		exec.PercentageScore, categoryScores, nullFloat(exec.GroupScore),
		nullBytes(templateScores), exec.UpdatedAt,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("updateExecution", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return stderrors.NewExecutionNotFoundError(exec.ID)
	}
	return nil
}

func (s *PostgresExecutionStore) SaveIncident(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	failedCategories, err := json.Marshal(incident.FailedCategories)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError("saveIncident", err)
	}

	const query = `
		INSERT INTO checklist_incidents
			(id, execution_id, severity, status, performance_score,
			 threshold_score, failed_categories, auto_generated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		incident.ID, incident.ExecutionID, string(incident.Severity), string(incident.Status),
		incident.PerformanceScore, incident.ThresholdScore, failedCategories,
		incident.AutoGenerated, incident.CreatedAt,
	)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError("saveIncident", err)
	}
	return nil
}

func (s *PostgresExecutionStore) FindExecutionByID(ctx context.Context, id string, withRelations bool) (*models.Execution, error) {
	const query = `
		SELECT id, template_id, group_id, executor_user_id, target_type, target_id,
		       status, total_score, max_possible_score, percentage_score,
		       category_scores, group_score, template_scores, notes,
		       executed_at, created_at, updated_at
		FROM checklist_executions
		WHERE id = $1`

	var (
		exec           models.Execution
		templateID     sql.NullString
		groupID        sql.NullString
		notes          sql.NullString
		groupScore     sql.NullFloat64
		categoryScores []byte
		templateScores []byte
		status         string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&exec.ID, &templateID, &groupID, &exec.ExecutorUserID, &exec.TargetType,
		&exec.TargetID, &status, &exec.TotalScore, &exec.MaxPossibleScore,
		&exec.PercentageScore, &categoryScores, &groupScore, &templateScores,
		&notes, &exec.ExecutedAt, &exec.CreatedAt, &exec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stderrors.NewExecutionNotFoundError(id)
		}
		return nil, stderrors.NewQueryExecutionFailedError("findExecutionById", err)
	}

	exec.TemplateID = templateID.String
	exec.GroupID = groupID.String
	exec.Notes = notes.String
	exec.Status = models.ExecutionStatus(status)
	if groupScore.Valid {
		v := groupScore.Float64
		exec.GroupScore = &v
	}
	if len(categoryScores) > 0 {
		if err := json.Unmarshal(categoryScores, &exec.CategoryScores); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("findExecutionById", err)
		}
	}
	if len(templateScores) > 0 {
		if err := json.Unmarshal(templateScores, &exec.TemplateScores); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("findExecutionById", err)
		}
	}

	if !withRelations {
		return &exec, nil
	}

	if exec.Answers, err = s.findAnswers(ctx, id); err != nil {
		return nil, err
	}
	if exec.Incident, err = s.findIncident(ctx, id); err != nil {
		return nil, err
	}
	return &exec, nil
}

func (s *PostgresExecutionStore) findAnswers(ctx context.Context, executionID string) ([]models.Answer, error) {
	const query = `
		SELECT id, execution_id, question_id, approval_status, approval_value,
		       answer_score, max_score, is_skipped, answered_at
		FROM checklist_answers
		WHERE execution_id = $1
		ORDER BY answered_at, id`

	rows, err := s.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("findAnswers", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var (
			a           models.Answer
			status      string
			answerScore sql.NullFloat64
			maxScore    sql.NullFloat64
		)
		if err := rows.Scan(
			&a.ID, &a.ExecutionID, &a.QuestionID, &status, &a.ApprovalValue,
			&answerScore, &maxScore, &a.IsSkipped, &a.AnsweredAt,
		); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("findAnswers", err)
		}
		a.ApprovalStatus = models.ApprovalStatus(status)
		if answerScore.Valid {
			v := answerScore.Float64
			a.AnswerScore = &v
		}
		if maxScore.Valid {
			v := maxScore.Float64
			a.MaxScore = &v
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("findAnswers", err)
	}
	return answers, nil
}

func (s *PostgresExecutionStore) findIncident(ctx context.Context, executionID string) (*models.Incident, error) {
	const query = `
		SELECT id, execution_id, severity, status, performance_score,
		       threshold_score, failed_categories, auto_generated, created_at
		FROM checklist_incidents
		WHERE execution_id = $1`

	var (
		incident         models.Incident
		severity         string
		status           string
		failedCategories []byte
	)
	err := s.db.QueryRowContext(ctx, query, executionID).Scan(
		&incident.ID, &incident.ExecutionID, &severity, &status,
		&incident.PerformanceScore, &incident.ThresholdScore,
		&failedCategories, &incident.AutoGenerated, &incident.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, stderrors.NewQueryExecutionFailedError("findIncident", err)
	}
	incident.Severity = models.IncidentSeverity(severity)
	incident.Status = models.IncidentStatus(status)
	if len(failedCategories) > 0 {
		if err := json.Unmarshal(failedCategories, &incident.FailedCategories); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("findIncident", err)
		}
	}
	return &incident, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
