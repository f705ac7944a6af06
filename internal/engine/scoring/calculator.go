// Package scoring computes category, template and group scores from validated
// answers. A question's approval value is its compliance fraction; weights
// are free multipliers, so category and template percentages come from
// weighted sums, not per-question normalization.
package scoring

import (
	"fmt"

	"checklist-engine/internal/models"
)

// TemplateResult holds the scores for one template evaluation.
type TemplateResult struct {
	TotalScore       float64
	MaxPossibleScore float64
	PercentageScore  float64
	CategoryScores   map[string]float64
}

// GroupResult holds the scores for one group evaluation. PercentageScore
// aggregates raw point totals across all member templates; GroupScore is the
// weighted average of template percentages. The two diverge on purpose and
// both are persisted.
type GroupResult struct {
	TotalScore       float64
	MaxPossibleScore float64
	PercentageScore  float64
	CategoryScores   map[string]float64
	GroupScore       float64
	TemplateScores   map[string]float64
}

// ComputeTemplateScore scores a template's active questions against the
// submitted answers. Skipped and unanswered questions score zero but still
// contribute their weight to the maximum. As a side effect each matched
// answer gets its AnswerScore (the compliance fraction) and MaxScore (the
// question weight) filled in for later reporting.
func ComputeTemplateScore(questions []models.Question, answerByQuestion map[string]*models.Answer) TemplateResult {
	type bucket struct {
		score float64
		max   float64
	}
	buckets := make(map[string]*bucket)

	for _, q := range questions {
		if !q.IsActive {
			continue
		}

		b := buckets[q.CategoryID]
		if b == nil {
			b = &bucket{}
			buckets[q.CategoryID] = b
		}

		ans := answerByQuestion[q.ID]
		questionScore := 0.0
		if ans != nil && !ans.IsSkipped {
			questionScore = ans.ApprovalValue
		}

		b.score += questionScore * q.Weight
		b.max += q.Weight

		if ans != nil {
			score := questionScore
			max := q.Weight
			ans.AnswerScore = &score
			ans.MaxScore = &max
		}
	}

	result := TemplateResult{CategoryScores: make(map[string]float64, len(buckets))}
	for categoryID, b := range buckets {
		pct := 0.0
		if b.max > 0 {
			pct = b.score / b.max * 100
		}
		result.CategoryScores[categoryID] = pct
		result.TotalScore += b.score
		result.MaxPossibleScore += b.max
	}
	if result.MaxPossibleScore > 0 {
		result.PercentageScore = result.TotalScore / result.MaxPossibleScore * 100
	}
	return result
}

// ComputeGroupScore runs the template algorithm for every member template and
// aggregates. Category scores from all templates merge into one map keyed
// "{templateId}_{categoryId}" so categories from different templates cannot
// collide.
func ComputeGroupScore(group *models.Group, questionsByTemplate map[string][]models.Question, answerByQuestion map[string]*models.Answer) GroupResult {
	result := GroupResult{
		CategoryScores: make(map[string]float64),
		TemplateScores: make(map[string]float64, len(group.TemplateIDs)),
	}

	for _, templateID := range group.TemplateIDs {
		tr := ComputeTemplateScore(questionsByTemplate[templateID], answerByQuestion)

		result.TemplateScores[templateID] = tr.PercentageScore
		result.GroupScore += tr.PercentageScore * group.TemplateWeights[templateID]

		for categoryID, pct := range tr.CategoryScores {
			result.CategoryScores[fmt.Sprintf("%s_%s", templateID, categoryID)] = pct
		}

		result.TotalScore += tr.TotalScore
		result.MaxPossibleScore += tr.MaxPossibleScore
	}

	if result.MaxPossibleScore > 0 {
		result.PercentageScore = result.TotalScore / result.MaxPossibleScore * 100
	}
	return result
}

// AnswerIndex builds the question-id keyed answer map the calculators consume.
// The map holds pointers into the given slice so score write-backs land on the
// caller's answers.
func AnswerIndex(answers []models.Answer) map[string]*models.Answer {
	index := make(map[string]*models.Answer, len(answers))
	for i := range answers {
		index[answers[i].QuestionID] = &answers[i]
	}
	return index
}
