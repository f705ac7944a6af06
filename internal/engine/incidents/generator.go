// Package incidents decides whether low performance warrants an incident and
// classifies its severity.
package incidents

import (
	"sort"
	"time"

	"checklist-engine/internal/models"
)

// Input carries the threshold decision resolved by the orchestrator: the
// template's threshold and type on the template path, the group's threshold
// and a fixed COMPLIANCE type on the group path (groups are always treated as
// compliance evaluations). Score is percentageScore for templates and
// groupScore for groups.
type Input struct {
	ExecutionID    string
	Score          float64
	Threshold      float64
	ChecklistType  models.TemplateType
	IsGroup        bool
	CategoryScores map[string]float64
}

// Evaluate returns an incident when the score falls below the threshold for a
// compliance checklist or a group execution, nil otherwise. At most one
// incident exists per execution; callers only invoke this once, immediately
// after scoring.
func Evaluate(in Input) *models.Incident {
	triggered := in.ChecklistType == models.TemplateTypeCompliance || in.IsGroup
	if !triggered || in.Score >= in.Threshold {
		return nil
	}

	difference := in.Threshold - in.Score

	var failed []string
	for category, pct := range in.CategoryScores {
		if pct < in.Threshold {
			failed = append(failed, category)
		}
	}
	sort.Strings(failed)

	return &models.Incident{
		ExecutionID:      in.ExecutionID,
		Severity:         Classify(difference),
		Status:           models.IncidentStatusOpen,
		PerformanceScore: in.Score,
		ThresholdScore:   in.Threshold,
		FailedCategories: failed,
		AutoGenerated:    true,
		CreatedAt:        time.Now().UTC(),
	}
}

// Classify maps the threshold shortfall to a severity tier. Boundary values
// land in the higher tier.
func Classify(difference float64) models.IncidentSeverity {
	switch {
	case difference >= 30:
		return models.IncidentSeverityCritical
	case difference >= 20:
		return models.IncidentSeverityHigh
	case difference >= 10:
		return models.IncidentSeverityMedium
	default:
		return models.IncidentSeverityLow
	}
}
