package moderation

import (
	"context"
	"sort"

	"github.com/loopin-app/backend/internal/models"
	"go.uber.org/zap"
)

// Engine evaluates posts against a priority-ordered rule chain.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine builds an engine from the given rules. The rules are stable-sorted
// by descending priority once, at construction: equal-priority rules keep
// their registration order.
func NewEngine(logger *zap.Logger, rules ...Rule) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Engine{rules: sorted, logger: logger}
}

// Evaluate runs the chain and returns the final verdict.
//
// Each successful rule's outcome overwrites the running verdict; a rule
// returning Continue=false halts the chain. A failing rule is logged and
// skipped — it never aborts the evaluation and never touches the verdict.
// An empty chain approves.
func (e *Engine) Evaluate(ctx context.Context, post *models.Post) Verdict {
	verdict := Verdict{Status: models.ModerationStatusApproved}

	for _, rule := range e.rules {
		outcome, err := rule.Evaluate(ctx, post)
		if err != nil {
			e.logger.Error("moderation rule failed, skipping",
				zap.String("rule", rule.Name()),
				zap.Error(err))
			continue
		}

		verdict = Verdict{
			Status:   outcome.Status,
			Reason:   outcome.Reason,
			Metadata: outcome.Metadata,
		}
		if !outcome.Continue {
			break
		}
	}
	return verdict
}
