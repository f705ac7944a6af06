// internal/models/question.go
package models

// Question is a single checklist item inside a category. Weight is a free
// scoring multiplier (not normalized across the category); the only invariant
// is the 0.1 floor enforced at definition time.
type Question struct {
	ID                      string  `json:"id"`
	CategoryID              string  `json:"categoryId"`
	Title                   string  `json:"title"`
	Weight                  float64 `json:"weight"`
	Required                bool    `json:"required"`
	HasIntermediateApproval bool    `json:"hasIntermediateApproval"`
	IntermediateValue       float64 `json:"intermediateValue"`
	IsActive                bool    `json:"isActive"`
}
