// internal/models/execution.go
package models

import "time"

// ExecutionStatus tracks the execution state machine.
// PENDING is transient: set at creation and advanced immediately. COMPLETED
// and LOW_PERFORMANCE are terminal; a completed execution is never re-scored.
type ExecutionStatus string

const (
	ExecutionStatusPending        ExecutionStatus = "PENDING"
	ExecutionStatusInProgress     ExecutionStatus = "IN_PROGRESS"
	ExecutionStatusCompleted      ExecutionStatus = "COMPLETED"
	ExecutionStatusLowPerformance ExecutionStatus = "LOW_PERFORMANCE"
)

// TargetKind says whether an execution runs a single template or a group.
type TargetKind string

const (
	TargetTemplate TargetKind = "TEMPLATE"
	TargetGroup    TargetKind = "GROUP"
)

// ExecutionTarget is the resolved template-or-group target, decided once at
// the orchestrator boundary instead of null-checking two optional ids through
// the whole pipeline.
type ExecutionTarget struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// IsGroup reports whether the execution evaluates a group.
func (t ExecutionTarget) IsGroup() bool { return t.Kind == TargetGroup }

// Execution is one concrete run of a template or group against a target.
// Exactly one of TemplateID/GroupID is set. For group executions
// PercentageScore aggregates raw point totals across all templates while
// GroupScore is the weighted average of template percentages; the two diverge
// on purpose and both are stored.
type Execution struct {
	ID               string             `json:"id"`
	TemplateID       string             `json:"templateId,omitempty"`
	GroupID          string             `json:"groupId,omitempty"`
	ExecutorUserID   string             `json:"executorUserId"`
	TargetType       string             `json:"targetType"`
	TargetID         string             `json:"targetId"`
	Status           ExecutionStatus    `json:"status"`
	TotalScore       float64            `json:"totalScore"`
	MaxPossibleScore float64            `json:"maxPossibleScore"`
	PercentageScore  float64            `json:"percentageScore"`
	CategoryScores   map[string]float64 `json:"categoryScores,omitempty"`
	GroupScore       *float64           `json:"groupScore,omitempty"`
	TemplateScores   map[string]float64 `json:"templateScores,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	ExecutedAt       time.Time          `json:"executedAt"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	Answers          []Answer           `json:"answers,omitempty"`
	Incident         *Incident          `json:"incident,omitempty"`
}

// Target returns the resolved execution target.
func (e *Execution) Target() ExecutionTarget {
	if e.GroupID != "" {
		return ExecutionTarget{Kind: TargetGroup, ID: e.GroupID}
	}
	return ExecutionTarget{Kind: TargetTemplate, ID: e.TemplateID}
}

// IsTerminal reports whether the execution reached a terminal state.
func (e *Execution) IsTerminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusLowPerformance
}
