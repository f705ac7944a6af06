// Package catalog reads template and group definitions. The engine only
// consumes this interface; definition editing lives elsewhere.
package catalog

import (
	"context"

	"checklist-engine/internal/models"
)

// Store supplies template and group definitions to the orchestrator.
type Store interface {
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	// GetActiveQuestions returns the category-joined active questions of one
	// template.
	GetActiveQuestions(ctx context.Context, templateID string) ([]models.Question, error)
	// GetActiveQuestionsForTemplates partitions active questions by template,
	// as needed for group scoring.
	GetActiveQuestionsForTemplates(ctx context.Context, templateIDs []string) (map[string][]models.Question, error)
}
