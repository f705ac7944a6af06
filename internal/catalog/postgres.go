// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	stderrors "checklist-engine/internal/common/errors"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/common/metrics"
	"checklist-engine/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	templateCachePrefix = "catalog:tpl:"
	groupCachePrefix    = "catalog:grp:"
)

// PostgresStore reads catalog definitions from PostgreSQL with an optional
// Redis read-through cache in front of template and group lookups. Question
// reads always hit the database; they are cheap and change with the catalog.
type PostgresStore struct {
	db     *sql.DB
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewPostgresStore creates a catalog store. cache may be nil to disable
// caching.
func NewPostgresStore(db *sql.DB, cache *redis.Client, ttl time.Duration, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	if tpl, ok := cacheGet[models.Template](ctx, s, templateCachePrefix+id, "template"); ok {
		return tpl, nil
	}

	const query = `
		SELECT id, title, type, performance_threshold, is_active
		FROM checklist_templates
		WHERE id = $1`

	var tpl models.Template
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tpl.ID, &tpl.Title, &tpl.Type, &tpl.PerformanceThreshold, &tpl.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stderrors.NewTemplateNotFoundError(id)
		}
		return nil, stderrors.NewQueryExecutionFailedError("getTemplate", err)
	}

	const catQuery = `
		SELECT id, title, sort_order
		FROM checklist_categories
		WHERE template_id = $1
		ORDER BY sort_order, id`

	rows, err := s.db.QueryContext(ctx, catQuery, id)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("getTemplateCategories", err)
	}
	defer rows.Close()

	for rows.Next() {
		cat := models.Category{TemplateID: id}
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.SortOrder); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("getTemplateCategories", err)
		}
		tpl.Categories = append(tpl.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("getTemplateCategories", err)
	}

	s.cacheSet(ctx, templateCachePrefix+id, &tpl)
	return &tpl, nil
}

func (s *PostgresStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	if grp, ok := cacheGet[models.Group](ctx, s, groupCachePrefix+id, "group"); ok {
		return grp, nil
	}

	const query = `
		SELECT id, title, performance_threshold
		FROM checklist_groups
		WHERE id = $1`

	var grp models.Group
	err := s.db.QueryRowContext(ctx, query, id).Scan(&grp.ID, &grp.Title, &grp.PerformanceThreshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stderrors.NewGroupNotFoundError(id)
		}
		return nil, stderrors.NewQueryExecutionFailedError("getGroup", err)
	}

	// Joining templates keeps dangling weight rows out of the loaded group.
	const weightQuery = `
		SELECT gtw.template_id, gtw.weight
		FROM group_template_weights gtw
		JOIN checklist_templates t ON t.id = gtw.template_id
		WHERE gtw.group_id = $1
		ORDER BY gtw.template_id`

	rows, err := s.db.QueryContext(ctx, weightQuery, id)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("getGroupWeights", err)
	}
	defer rows.Close()

	grp.TemplateWeights = make(map[string]float64)
	for rows.Next() {
		var templateID string
		var weight float64
		if err := rows.Scan(&templateID, &weight); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("getGroupWeights", err)
		}
		grp.TemplateIDs = append(grp.TemplateIDs, templateID)
		grp.TemplateWeights[templateID] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("getGroupWeights", err)
	}

	s.cacheSet(ctx, groupCachePrefix+id, &grp)
	return &grp, nil
}

const activeQuestionQuery = `
	SELECT c.template_id, q.id, q.category_id, q.title, q.weight, q.required,
	       q.has_intermediate_approval, q.intermediate_value, q.is_active
	FROM checklist_questions q
	JOIN checklist_categories c ON c.id = q.category_id
	WHERE q.is_active = TRUE AND c.template_id = ANY($1)
	ORDER BY c.sort_order, q.id`

func (s *PostgresStore) GetActiveQuestions(ctx context.Context, templateID string) ([]models.Question, error) {
	byTemplate, err := s.GetActiveQuestionsForTemplates(ctx, []string{templateID})
	if err != nil {
		return nil, err
	}
	return byTemplate[templateID], nil
}

func (s *PostgresStore) GetActiveQuestionsForTemplates(ctx context.Context, templateIDs []string) (map[string][]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, activeQuestionQuery, pq.Array(templateIDs))
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("getActiveQuestions", err)
	}
	defer rows.Close()

	byTemplate := make(map[string][]models.Question, len(templateIDs))
	for rows.Next() {
		var templateID string
		var q models.Question
		if err := rows.Scan(
			&templateID, &q.ID, &q.CategoryID, &q.Title, &q.Weight, &q.Required,
			&q.HasIntermediateApproval, &q.IntermediateValue, &q.IsActive,
		); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("getActiveQuestions", err)
		}
		byTemplate[templateID] = append(byTemplate[templateID], q)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("getActiveQuestions", err)
	}
	return byTemplate, nil
}

// cacheGet returns a cached entity on hit. Cache failures count as misses;
// the database stays authoritative.
func cacheGet[T any](ctx context.Context, s *PostgresStore, key, entity string) (*T, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}
	val, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		metrics.CatalogCacheMisses.WithLabelValues(entity).Inc()
		return nil, false
	}
	var out T
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		metrics.CatalogCacheMisses.WithLabelValues(entity).Inc()
		return nil, false
	}
	metrics.CatalogCacheHits.WithLabelValues(entity).Inc()
	return &out, true
}

func (s *PostgresStore) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl).Err(); err != nil {
		s.logger.Debug("catalog cache set failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
