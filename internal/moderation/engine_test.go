package moderation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/models"
)

// stubRule is a scripted rule for chain-order tests.
type stubRule struct {
	name     string
	priority int
	outcome  *Outcome
	err      error
	calls    *[]string
}

func (r *stubRule) Name() string  { return r.name }
func (r *stubRule) Priority() int { return r.priority }

func (r *stubRule) Evaluate(_ context.Context, _ *models.Post) (*Outcome, error) {
	if r.calls != nil {
		*r.calls = append(*r.calls, r.name)
	}
	return r.outcome, r.err
}

func approvedOutcome(continueChain bool) *Outcome {
	return &Outcome{Status: models.ModerationStatusApproved, Continue: continueChain}
}

func TestEngineEmptyChainApproves(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	verdict := engine.Evaluate(context.Background(), &models.Post{Content: "hello"})
	assert.Equal(t, models.ModerationStatusApproved, verdict.Status)
}

func TestEngineRunsRulesInDescendingPriority(t *testing.T) {
	var calls []string
	engine := NewEngine(zap.NewNop(),
		&stubRule{name: "low", priority: 5, outcome: approvedOutcome(true), calls: &calls},
		&stubRule{name: "high", priority: 100, outcome: approvedOutcome(true), calls: &calls},
		&stubRule{name: "mid", priority: 50, outcome: approvedOutcome(true), calls: &calls},
	)

	engine.Evaluate(context.Background(), &models.Post{})
	assert.Equal(t, []string{"high", "mid", "low"}, calls)
}

func TestEngineEqualPriorityKeepsRegistrationOrder(t *testing.T) {
	var calls []string
	engine := NewEngine(zap.NewNop(),
		&stubRule{name: "first", priority: 10, outcome: approvedOutcome(true), calls: &calls},
		&stubRule{name: "second", priority: 10, outcome: approvedOutcome(true), calls: &calls},
		&stubRule{name: "third", priority: 10, outcome: approvedOutcome(true), calls: &calls},
	)

	engine.Evaluate(context.Background(), &models.Post{})
	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestEngineLastWriterWins(t *testing.T) {
	engine := NewEngine(zap.NewNop(),
		&stubRule{name: "strict", priority: 100, outcome: &Outcome{
			Status: models.ModerationStatusFlagged, Reason: "looks off", Continue: true,
		}},
		&stubRule{name: "lenient", priority: 50, outcome: &Outcome{
			Status: models.ModerationStatusApproved, Reason: "fine actually", Continue: true,
		}},
	)

	verdict := engine.Evaluate(context.Background(), &models.Post{})
	assert.Equal(t, models.ModerationStatusApproved, verdict.Status)
	assert.Equal(t, "fine actually", verdict.Reason)
}

func TestEngineHaltsWhenContinueIsFalse(t *testing.T) {
	var calls []string
	engine := NewEngine(zap.NewNop(),
		&stubRule{name: "blocker", priority: 100, calls: &calls, outcome: &Outcome{
			Status: models.ModerationStatusRejected, Reason: "banned", Continue: false,
		}},
		&stubRule{name: "unreached", priority: 50, outcome: approvedOutcome(true), calls: &calls},
	)

	verdict := engine.Evaluate(context.Background(), &models.Post{})
	assert.Equal(t, models.ModerationStatusRejected, verdict.Status)
	assert.Equal(t, []string{"blocker"}, calls)
}

func TestEngineFailingRuleIsSkipped(t *testing.T) {
	engine := NewEngine(zap.NewNop(),
		&stubRule{name: "good", priority: 100, outcome: &Outcome{
			Status: models.ModerationStatusFlagged, Reason: "needs a look", Continue: true,
		}},
		&stubRule{name: "broken", priority: 50, err: fmt.Errorf("classifier timeout")},
	)

	// The failing rule neither aborts the run nor touches the verdict.
	verdict := engine.Evaluate(context.Background(), &models.Post{})
	assert.Equal(t, models.ModerationStatusFlagged, verdict.Status)
	assert.Equal(t, "needs a look", verdict.Reason)
}

func TestKeywordRuleRejectsOnHit(t *testing.T) {
	rule := NewKeywordRule(100, []string{"SPAM", "scam"}, false)

	outcome, err := rule.Evaluate(context.Background(), &models.Post{Content: "buy this, totally not a Scam"})
	assert.NoError(t, err)
	assert.Equal(t, models.ModerationStatusRejected, outcome.Status)
	assert.False(t, outcome.Continue)
	assert.Equal(t, "scam", outcome.Metadata["term"])
}

func TestKeywordRuleFlagOnly(t *testing.T) {
	rule := NewKeywordRule(100, []string{"spam"}, true)

	outcome, err := rule.Evaluate(context.Background(), &models.Post{Content: "spam spam spam"})
	assert.NoError(t, err)
	assert.Equal(t, models.ModerationStatusFlagged, outcome.Status)
}

func TestKeywordRulePassesCleanContent(t *testing.T) {
	rule := NewKeywordRule(100, []string{"spam"}, false)

	outcome, err := rule.Evaluate(context.Background(), &models.Post{Content: "a perfectly fine post"})
	assert.NoError(t, err)
	assert.Equal(t, models.ModerationStatusApproved, outcome.Status)
	assert.True(t, outcome.Continue)
}

func TestDefaultRulePendingCarriesReason(t *testing.T) {
	rule := NewDefaultRule(models.ModerationStatusPending, false)

	outcome, err := rule.Evaluate(context.Background(), &models.Post{})
	assert.NoError(t, err)
	assert.Equal(t, models.ModerationStatusPending, outcome.Status)
	assert.Equal(t, "Awaiting manual review", outcome.Reason)
	assert.False(t, outcome.Continue)
}

func TestDefaultRuleRejectsInvalidStatus(t *testing.T) {
	rule := NewDefaultRule(models.ModerationStatusRejected, false)

	outcome, err := rule.Evaluate(context.Background(), &models.Post{})
	assert.NoError(t, err)
	assert.Equal(t, models.ModerationStatusApproved, outcome.Status)
}

func TestFullChainCleanPostFallsThroughToDefault(t *testing.T) {
	engine := NewEngine(zap.NewNop(),
		NewKeywordRule(100, []string{"spam"}, false),
		NewDefaultRule(models.ModerationStatusPending, false),
	)

	verdict := engine.Evaluate(context.Background(), &models.Post{Content: "hello world"})
	assert.Equal(t, models.ModerationStatusPending, verdict.Status)
	assert.Equal(t, "Awaiting manual review", verdict.Reason)
}

func TestFullChainBannedContentNeverReachesDefault(t *testing.T) {
	engine := NewEngine(zap.NewNop(),
		NewKeywordRule(100, []string{"spam"}, false),
		NewDefaultRule(models.ModerationStatusApproved, false),
	)

	verdict := engine.Evaluate(context.Background(), &models.Post{Content: "hot spam deals"})
	assert.Equal(t, models.ModerationStatusRejected, verdict.Status)
}
