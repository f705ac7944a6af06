// Package storage persists executions, answers and incidents. The engine
// assumes atomic single-row writes but no multi-row transactions; a crash
// between steps can leave an execution scored without its incident
// (at-least-once, never silently re-scored).
package storage

import (
	"context"

	"checklist-engine/internal/models"
)

// ExecutionStore is the durable store consumed by the orchestrator.
type ExecutionStore interface {
	CreateExecution(ctx context.Context, exec *models.Execution) error
	// SaveAnswers inserts answers one row at a time and returns them with ids
	// assigned.
	SaveAnswers(ctx context.Context, answers []models.Answer) ([]models.Answer, error)
	// UpdateExecution writes scores and status back onto the execution row.
	UpdateExecution(ctx context.Context, exec *models.Execution) error
	SaveIncident(ctx context.Context, incident *models.Incident) error
	FindExecutionByID(ctx context.Context, id string, withRelations bool) (*models.Execution, error)
}
