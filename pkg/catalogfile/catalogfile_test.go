package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist-engine/internal/engine/weights"
	"checklist-engine/internal/models"
)

const sampleCatalog = `{
	"version": "1",
	"templates": [
		{
			"id": "tpl-1",
			"title": "Warehouse safety",
			"type": "COMPLIANCE",
			"performanceThreshold": 75,
			"categories": [
				{
					"id": "cat-1",
					"title": "Fire safety",
					"sortOrder": 1,
					"questions": [
						{"id": "q1", "title": "Extinguisher present", "weight": 0.6, "required": true, "isActive": true},
						{"id": "q2", "title": "Exits clear", "weight": 0.4, "isActive": true}
					]
				}
			]
		}
	],
	"groups": [
		{
			"id": "grp-1",
			"title": "Fleet",
			"templateIds": ["tpl-1"],
			"templateWeights": {"tpl-1": 1.0}
		}
	]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cat, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	require.Len(t, cat.Templates, 1)
	require.Len(t, cat.Groups, 1)
	assert.Equal(t, "tpl-1", cat.Templates[0].ID)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(writeCatalog(t, "{broken"))
	require.Error(t, err)
}

func TestTemplateToModel(t *testing.T) {
	cat, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	tpl := cat.Templates[0].ToModel()
	assert.Equal(t, models.TemplateTypeCompliance, tpl.Type)
	assert.True(t, tpl.IsActive)
	require.Len(t, tpl.Categories, 1)
	require.Len(t, tpl.Categories[0].Questions, 2)
	assert.Equal(t, "cat-1", tpl.Categories[0].Questions[0].CategoryID)
	assert.Equal(t, "tpl-1", tpl.Categories[0].TemplateID)

	// The converted template passes the weight floor check.
	assert.NoError(t, weights.ValidateTemplate(tpl))
}

func TestGroupToModelAndIndex(t *testing.T) {
	cat, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	grp := cat.Groups[0].ToModel()
	known := cat.TemplateIndex()
	assert.True(t, known["tpl-1"])
	assert.NoError(t, weights.ValidateGroupWeights(grp.TemplateIDs, grp.TemplateWeights, known))
}
