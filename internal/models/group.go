// internal/models/group.go
package models

// Group bundles templates into one weighted compliance unit. TemplateWeights
// keys must match TemplateIDs exactly and sum to 1.0 whenever templates are
// attached; groups are always evaluated as compliance checklists.
type Group struct {
	ID                   string             `json:"id"`
	Title                string             `json:"title"`
	PerformanceThreshold float64            `json:"performanceThreshold"`
	TemplateIDs          []string           `json:"templateIds"`
	TemplateWeights      map[string]float64 `json:"templateWeights"`
}

// Threshold returns the configured performance threshold, falling back to the
// default when unset.
func (g *Group) Threshold() float64 {
	if g.PerformanceThreshold <= 0 {
		return DefaultPerformanceThreshold
	}
	return g.PerformanceThreshold
}
