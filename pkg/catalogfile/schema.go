// pkg/catalogfile/schema.go
package catalogfile

// Catalog is the on-disk form of a checklist catalog: the same templates,
// categories, questions and groups the database holds, as one reviewable JSON
// document. Operations teams edit this file and run catalog-lint before
// loading it anywhere.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
	Groups      []Group    `json:"groups"`
}

type Template struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Type                 string     `json:"type"`
	PerformanceThreshold float64    `json:"performanceThreshold,omitempty"`
	Categories           []Category `json:"categories"`
	Tags                 []string   `json:"tags,omitempty"`
}

type Category struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	SortOrder int        `json:"sortOrder,omitempty"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID                      string  `json:"id"`
	Title                   string  `json:"title"`
	Weight                  float64 `json:"weight"`
	Required                bool    `json:"required"`
	HasIntermediateApproval bool    `json:"hasIntermediateApproval"`
	IntermediateValue       float64 `json:"intermediateValue,omitempty"`
	IsActive                bool    `json:"isActive"`
}

type Group struct {
	ID                   string             `json:"id"`
	Title                string             `json:"title"`
	PerformanceThreshold float64            `json:"performanceThreshold,omitempty"`
	TemplateIDs          []string           `json:"templateIds"`
	TemplateWeights      map[string]float64 `json:"templateWeights"`
}
