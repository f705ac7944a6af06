// pkg/catalogfile/catalogfile.go
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"

	"checklist-engine/internal/models"
)

// Load reads and parses a catalog definition file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &cat, nil
}

// ToModel converts a file template into the engine's model form, wiring
// category ids onto questions.
func (t *Template) ToModel() *models.Template {
	tpl := &models.Template{
		ID:                   t.ID,
		Title:                t.Title,
		Type:                 models.TemplateType(t.Type),
		PerformanceThreshold: t.PerformanceThreshold,
		IsActive:             true,
	}
	for _, c := range t.Categories {
		cat := models.Category{
			ID:         c.ID,
			TemplateID: t.ID,
			Title:      c.Title,
			SortOrder:  c.SortOrder,
		}
		for _, q := range c.Questions {
			cat.Questions = append(cat.Questions, models.Question{
				ID:                      q.ID,
				CategoryID:              c.ID,
				Title:                   q.Title,
				Weight:                  q.Weight,
				Required:                q.Required,
				HasIntermediateApproval: q.HasIntermediateApproval,
				IntermediateValue:       q.IntermediateValue,
				IsActive:                q.IsActive,
			})
		}
		tpl.Categories = append(tpl.Categories, cat)
	}
	return tpl
}

// ToModel converts a file group into the engine's model form.
func (g *Group) ToModel() *models.Group {
	return &models.Group{
		ID:                   g.ID,
		Title:                g.Title,
		PerformanceThreshold: g.PerformanceThreshold,
		TemplateIDs:          append([]string(nil), g.TemplateIDs...),
		TemplateWeights:      g.TemplateWeights,
	}
}

// TemplateIndex returns the set of template ids defined in the catalog,
// suitable for group weight validation.
func (c *Catalog) TemplateIndex() map[string]bool {
	known := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		known[t.ID] = true
	}
	return known
}
