// internal/models/incident.go
package models

import "time"

// IncidentSeverity classifies how far performance fell below the threshold.
type IncidentSeverity string

const (
	IncidentSeverityLow      IncidentSeverity = "LOW"
	IncidentSeverityMedium   IncidentSeverity = "MEDIUM"
	IncidentSeverityHigh     IncidentSeverity = "HIGH"
	IncidentSeverityCritical IncidentSeverity = "CRITICAL"
)

// IncidentStatus is the downstream lifecycle of an incident. The engine only
// ever writes OPEN; the other states belong to whoever consumes the sink.
type IncidentStatus string

const (
	IncidentStatusOpen         IncidentStatus = "OPEN"
	IncidentStatusAcknowledged IncidentStatus = "ACKNOWLEDGED"
	IncidentStatusResolved     IncidentStatus = "RESOLVED"
)

// Incident flags an execution whose score fell below its configured
// threshold. At most one exists per execution and it is only ever created by
// the incident generator.
type Incident struct {
	ID               string           `json:"id"`
	ExecutionID      string           `json:"executionId"`
	Severity         IncidentSeverity `json:"severity"`
	Status           IncidentStatus   `json:"status"`
	PerformanceScore float64          `json:"performanceScore"`
	ThresholdScore   float64          `json:"thresholdScore"`
	FailedCategories []string         `json:"failedCategories"`
	AutoGenerated    bool             `json:"autoGenerated"`
	CreatedAt        time.Time        `json:"createdAt"`
}
