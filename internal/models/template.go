// internal/models/template.go
package models

// TemplateType classifies what a checklist template evaluates.
type TemplateType string

const (
	TemplateTypeInspection TemplateType = "INSPECTION"
	TemplateTypeCompliance TemplateType = "COMPLIANCE"
)

// DefaultPerformanceThreshold applies when a template or group has no
// threshold configured.
const DefaultPerformanceThreshold = 70.0

// Category groups questions inside a template. Categories carry no weight of
// their own; only questions do.
type Category struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"templateId,omitempty"`
	GroupID    string     `json:"groupId,omitempty"`
	Title      string     `json:"title"`
	SortOrder  int        `json:"sortOrder"`
	Questions  []Question `json:"questions,omitempty"`
}

// Template is a reusable checklist definition for a single target type.
type Template struct {
	ID                   string       `json:"id"`
	Title                string       `json:"title"`
	Type                 TemplateType `json:"type"`
	PerformanceThreshold float64      `json:"performanceThreshold"`
	IsActive             bool         `json:"isActive"`
	Categories           []Category   `json:"categories,omitempty"`
}

// Threshold returns the configured performance threshold, falling back to the
// default when unset.
func (t *Template) Threshold() float64 {
	if t.PerformanceThreshold <= 0 {
		return DefaultPerformanceThreshold
	}
	return t.PerformanceThreshold
}
