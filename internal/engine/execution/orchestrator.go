// Package execution coordinates one checklist execution end to end: resolve
// the target, validate answers, compute scores, persist, and evaluate the
// incident threshold. Everything runs synchronously within the inbound
// request; the store is the only shared resource.
package execution

import (
	"context"
	"fmt"
	"time"

	"checklist-engine/internal/catalog"
	"checklist-engine/internal/common/errors"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/common/metrics"
	"checklist-engine/internal/engine/answers"
	"checklist-engine/internal/engine/incidents"
	"checklist-engine/internal/engine/scoring"
	"checklist-engine/internal/engine/weights"
	"checklist-engine/internal/models"
	"checklist-engine/internal/sink"
	"checklist-engine/internal/storage"
)

// Request is one inbound execution submission. Exactly one of TemplateID and
// GroupID must be set.
type Request struct {
	TemplateID     string        `json:"templateId,omitempty"`
	GroupID        string        `json:"groupId,omitempty"`
	ExecutorUserID string        `json:"executorUserId"`
	TargetType     string        `json:"targetType"`
	TargetID       string        `json:"targetId"`
	ExecutedAt     time.Time     `json:"executedAt"`
	Notes          string        `json:"notes,omitempty"`
	Answers        []AnswerInput `json:"answers"`
}

// AnswerInput is the caller-supplied part of an answer. Scores are always
// computed server side.
type AnswerInput struct {
	QuestionID     string                `json:"questionId"`
	ApprovalStatus models.ApprovalStatus `json:"approvalStatus"`
	ApprovalValue  float64               `json:"approvalValue"`
	IsSkipped      bool                  `json:"isSkipped"`
}

// Dependencies wires the orchestrator explicitly; there is no ambient service
// graph.
type Dependencies struct {
	Catalog          catalog.Store
	Store            storage.ExecutionStore
	Sink             sink.Sink
	Logger           logger.Logger
	DefaultThreshold float64
}

type Orchestrator struct {
	catalog          catalog.Store
	store            storage.ExecutionStore
	sink             sink.Sink
	logger           logger.Logger
	defaultThreshold float64
}

func New(deps Dependencies) *Orchestrator {
	s := deps.Sink
	if s == nil {
		s = sink.Noop{}
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	return &Orchestrator{
		catalog:          deps.Catalog,
		store:            deps.Store,
		sink:             s,
		logger:           log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		defaultThreshold: deps.DefaultThreshold,
	}
}

// resolved bundles everything the scoring pass needs for one target.
type resolved struct {
	target              models.ExecutionTarget
	questions           []models.Question
	questionsByTemplate map[string][]models.Question
	group               *models.Group
	threshold           float64
	checklistType       models.TemplateType
}

// Execute runs the full pipeline for one submission and returns the completed
// execution with answers and any incident attached. Validation failures abort
// before an execution row is created; no FAILED state exists.
func (o *Orchestrator) Execute(ctx context.Context, req *Request) (*models.Execution, error) {
	target, err := resolveTarget(req)
	if err != nil {
		metrics.ExecutionsFailed.WithLabelValues("unknown", string(errors.CodeOf(err))).Inc()
		return nil, err
	}

	kind := string(target.Kind)
	metrics.ExecutionsActive.WithLabelValues(kind).Inc()
	defer metrics.ExecutionsActive.WithLabelValues(kind).Dec()
	start := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	exec, err := o.execute(ctx, req, target)
	if err != nil {
		metrics.ExecutionsFailed.WithLabelValues(kind, string(errors.CodeOf(err))).Inc()
		return nil, err
	}

	metrics.ExecutionsCompleted.WithLabelValues(kind, string(exec.Status)).Inc()
	return exec, nil
}

func (o *Orchestrator) execute(ctx context.Context, req *Request, target models.ExecutionTarget) (*models.Execution, error) {
	res, err := o.resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	submitted := buildAnswers(req)
	if err := answers.Validate(res.questions, submitted); err != nil {
		return nil, err
	}

	executedAt := req.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now().UTC()
	}

	exec := &models.Execution{
		TemplateID:     req.TemplateID,
		GroupID:        req.GroupID,
		ExecutorUserID: req.ExecutorUserID,
		TargetType:     req.TargetType,
		TargetID:       req.TargetID,
		Notes:          req.Notes,
		ExecutedAt:     executedAt,
		Status:         models.ExecutionStatusPending,
	}
	// PENDING is transient: the row is persisted already in progress.
	exec.Status = models.ExecutionStatusInProgress
	if err := o.store.CreateExecution(ctx, exec); err != nil {
		return nil, err
	}

	scoreToCheck := o.score(exec, res, submitted)

	for i := range submitted {
		submitted[i].ExecutionID = exec.ID
	}
	saved, err := o.store.SaveAnswers(ctx, submitted)
	if err != nil {
		return nil, err
	}
	exec.Answers = saved

	exec.Status = models.ExecutionStatusCompleted
	if err := o.store.UpdateExecution(ctx, exec); err != nil {
		return nil, err
	}

	incident := incidents.Evaluate(incidents.Input{
		ExecutionID:    exec.ID,
		Score:          scoreToCheck,
		Threshold:      res.threshold,
		ChecklistType:  res.checklistType,
		IsGroup:        target.IsGroup(),
		CategoryScores: exec.CategoryScores,
	})
	if incident != nil {
		if err := o.store.SaveIncident(ctx, incident); err != nil {
			return nil, err
		}
		exec.Incident = incident

		// The only allowed post-completion mutation, and only within the
		// same scoring pass.
		exec.Status = models.ExecutionStatusLowPerformance
		if err := o.store.UpdateExecution(ctx, exec); err != nil {
			return nil, err
		}

		metrics.IncidentsCreated.WithLabelValues(string(incident.Severity)).Inc()
		o.publishIncident(ctx, incident)
	}

	o.logger.Info("execution completed", map[string]interface{}{
		"executionId":     exec.ID,
		"targetKind":      string(target.Kind),
		"targetId":        target.ID,
		"percentageScore": exec.PercentageScore,
		"status":          string(exec.Status),
		"incident":        incident != nil,
	})
	return exec, nil
}

// ExecutionByID returns a stored execution with all relations. Reads never
// re-score.
func (o *Orchestrator) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	return o.store.FindExecutionByID(ctx, id, true)
}

func (o *Orchestrator) resolve(ctx context.Context, target models.ExecutionTarget) (*resolved, error) {
	if target.Kind == models.TargetTemplate {
		tpl, err := o.catalog.GetTemplate(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		questions, err := o.catalog.GetActiveQuestions(ctx, tpl.ID)
		if err != nil {
			return nil, err
		}
		return &resolved{
			target:        target,
			questions:     questions,
			threshold:     o.resolveThreshold(tpl.PerformanceThreshold),
			checklistType: tpl.Type,
		}, nil
	}

	grp, err := o.catalog.GetGroup(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	// The catalog-edit layer is out of scope, so stored groups are re-checked
	// before scoring instead of trusted.
	if err := weights.ValidateGroupWeights(grp.TemplateIDs, grp.TemplateWeights, nil); err != nil {
		return nil, err
	}
	byTemplate, err := o.catalog.GetActiveQuestionsForTemplates(ctx, grp.TemplateIDs)
	if err != nil {
		return nil, err
	}
	var all []models.Question
	for _, tid := range grp.TemplateIDs {
		all = append(all, byTemplate[tid]...)
	}
	// Groups are always treated as compliance evaluations.
	return &resolved{
		target:              target,
		questions:           all,
		questionsByTemplate: byTemplate,
		group:               grp,
		threshold:           o.resolveThreshold(grp.PerformanceThreshold),
		checklistType:       models.TemplateTypeCompliance,
	}, nil
}

// score fills the execution's score fields and returns the value the incident
// threshold is checked against: percentageScore for templates, groupScore for
// groups.
func (o *Orchestrator) score(exec *models.Execution, res *resolved, submitted []models.Answer) float64 {
	index := scoring.AnswerIndex(submitted)

	if res.group == nil {
		tr := scoring.ComputeTemplateScore(res.questions, index)
		exec.TotalScore = tr.TotalScore
		exec.MaxPossibleScore = tr.MaxPossibleScore
		exec.PercentageScore = tr.PercentageScore
		exec.CategoryScores = tr.CategoryScores
		return tr.PercentageScore
	}

	gr := scoring.ComputeGroupScore(res.group, res.questionsByTemplate, index)
	exec.TotalScore = gr.TotalScore
	exec.MaxPossibleScore = gr.MaxPossibleScore
	exec.PercentageScore = gr.PercentageScore
	exec.CategoryScores = gr.CategoryScores
	exec.TemplateScores = gr.TemplateScores
	groupScore := gr.GroupScore
	exec.GroupScore = &groupScore
	return groupScore
}

func (o *Orchestrator) resolveThreshold(configured float64) float64 {
	if configured > 0 {
		return configured
	}
	if o.defaultThreshold > 0 {
		return o.defaultThreshold
	}
	return models.DefaultPerformanceThreshold
}

func (o *Orchestrator) publishIncident(ctx context.Context, incident *models.Incident) {
	if err := o.sink.Publish(ctx, incident); err != nil {
		metrics.SinkPublishFailures.WithLabelValues(o.sink.Name()).Inc()
		o.logger.WithError(err).Warn("incident sink publish failed", map[string]interface{}{
			"incidentId":  incident.ID,
			"executionId": incident.ExecutionID,
		})
	}
}

func resolveTarget(req *Request) (models.ExecutionTarget, error) {
	switch {
	case req.TemplateID != "" && req.GroupID != "":
		return models.ExecutionTarget{}, errors.NewExecutionTargetConflictError(
			fmt.Sprintf("templateId: %s, groupId: %s", req.TemplateID, req.GroupID))
	case req.TemplateID != "":
		return models.ExecutionTarget{Kind: models.TargetTemplate, ID: req.TemplateID}, nil
	case req.GroupID != "":
		return models.ExecutionTarget{Kind: models.TargetGroup, ID: req.GroupID}, nil
	default:
		return models.ExecutionTarget{}, errors.NewExecutionTargetConflictError("neither is set")
	}
}

func buildAnswers(req *Request) []models.Answer {
	answeredAt := req.ExecutedAt
	if answeredAt.IsZero() {
		answeredAt = time.Now().UTC()
	}
	out := make([]models.Answer, 0, len(req.Answers))
	for _, in := range req.Answers {
		out = append(out, models.Answer{
			QuestionID:     in.QuestionID,
			ApprovalStatus: in.ApprovalStatus,
			ApprovalValue:  in.ApprovalValue,
			IsSkipped:      in.IsSkipped,
			AnsweredAt:     answeredAt,
		})
	}
	return out
}
