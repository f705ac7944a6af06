// Package weights enforces the definition-time weight invariants: the 0.1
// floor on question weights and the completeness/normalization rules for a
// group's template weight distribution.
package weights

import (
	"math"
	"sort"

	"checklist-engine/internal/common/errors"
	"checklist-engine/internal/models"
)

const (
	// MinQuestionWeight is the floor for a question's free weight.
	// 0.1 itself is valid.
	MinQuestionWeight = 0.1

	// SumTolerance is the absolute tolerance for the group weight sum check.
	SumTolerance = 0.0001
)

// ValidateTemplate checks that every question in every category of the
// template carries a weight of at least 0.1. Categories without questions are
// valid. Runs synchronously on any template create/update; a single violation
// rejects the whole change.
func ValidateTemplate(tpl *models.Template) error {
	for _, cat := range tpl.Categories {
		for _, q := range cat.Questions {
			if q.Weight < MinQuestionWeight {
				return errors.NewMinWeightViolationError(cat.ID, q.ID, q.Weight)
			}
		}
	}
	return nil
}

// ValidateQuestions applies the same floor to a flat category-joined question
// set, as loaded for scoring.
func ValidateQuestions(questions []models.Question) error {
	for _, q := range questions {
		if q.Weight < MinQuestionWeight {
			return errors.NewMinWeightViolationError(q.CategoryID, q.ID, q.Weight)
		}
	}
	return nil
}

// ValidateGroupWeights checks a group's template weight distribution. The
// checks run in a fixed order and the first failure wins:
//
//  1. no templates attached: nothing to check
//  2. all template ids resolve against the known set
//  3. a weight map is present
//  4. weight keys match the template ids exactly
//  5. each weight lies in [0,1] and the sum is 1.0 within tolerance
//
// A nil known set skips the existence check (the ids were already resolved by
// the caller).
func ValidateGroupWeights(templateIDs []string, templateWeights map[string]float64, known map[string]bool) error {
	if len(templateIDs) == 0 {
		return nil
	}

	if known != nil {
		var missing []string
		for _, id := range templateIDs {
			if !known[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return errors.NewTemplatesNotFoundError(missing)
		}
	}

	if len(templateWeights) == 0 {
		return errors.NewWeightsRequiredError()
	}

	idSet := make(map[string]bool, len(templateIDs))
	var missingWeights []string
	for _, id := range templateIDs {
		idSet[id] = true
		if _, ok := templateWeights[id]; !ok {
			missingWeights = append(missingWeights, id)
		}
	}
	if len(missingWeights) > 0 {
		sort.Strings(missingWeights)
		return errors.NewMissingWeightsError(missingWeights)
	}

	var extraWeights []string
	for id := range templateWeights {
		if !idSet[id] {
			extraWeights = append(extraWeights, id)
		}
	}
	if len(extraWeights) > 0 {
		sort.Strings(extraWeights)
		return errors.NewExtraWeightsError(extraWeights)
	}

	sum := 0.0
	for _, w := range templateWeights {
		if w < 0 || w > 1 {
			return errors.NewWeightsNotNormalizedError(w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > SumTolerance {
		return errors.NewWeightsNotNormalizedError(sum)
	}

	return nil
}
