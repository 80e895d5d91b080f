package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/loopin-app/backend/internal/models"
)

// KeywordRule rejects or flags posts whose content contains a banned word.
// Matching is case-insensitive on whole content substrings.
type KeywordRule struct {
	priority    int
	bannedWords []string
	// FlagOnly downgrades hits from rejected to flagged (human review).
	flagOnly bool
}

// NewKeywordRule creates the content-safety keyword rule.
func NewKeywordRule(priority int, bannedWords []string, flagOnly bool) *KeywordRule {
	lowered := make([]string, len(bannedWords))
	for i, w := range bannedWords {
		lowered[i] = strings.ToLower(w)
	}
	return &KeywordRule{priority: priority, bannedWords: lowered, flagOnly: flagOnly}
}

func (r *KeywordRule) Name() string  { return "keyword_filter" }
func (r *KeywordRule) Priority() int { return r.priority }

func (r *KeywordRule) Evaluate(_ context.Context, post *models.Post) (*Outcome, error) {
	content := strings.ToLower(post.Content)
	for _, word := range r.bannedWords {
		if word != "" && strings.Contains(content, word) {
			status := models.ModerationStatusRejected
			if r.flagOnly {
				status = models.ModerationStatusFlagged
			}
			return &Outcome{
				Status:   status,
				Reason:   fmt.Sprintf("Content contains a prohibited term: %q", word),
				Metadata: map[string]string{"rule": r.Name(), "term": word},
				Continue: false,
			}, nil
		}
	}
	return &Outcome{
		Status:   models.ModerationStatusApproved,
		Metadata: map[string]string{"rule": r.Name()},
		Continue: true,
	}, nil
}

// DefaultRule is the terminal fallback at the bottom of the chain. It always
// sits at priority 0 and normally halts the chain with the configured default
// status.
type DefaultRule struct {
	status        models.ModerationStatus
	allowContinue bool
}

// NewDefaultRule creates the fallback rule. status must be approved or
// pending; anything else falls back to approved.
func NewDefaultRule(status models.ModerationStatus, allowContinue bool) *DefaultRule {
	if status != models.ModerationStatusApproved && status != models.ModerationStatusPending {
		status = models.ModerationStatusApproved
	}
	return &DefaultRule{status: status, allowContinue: allowContinue}
}

func (r *DefaultRule) Name() string  { return "default_rule" }
func (r *DefaultRule) Priority() int { return 0 }

func (r *DefaultRule) Evaluate(_ context.Context, _ *models.Post) (*Outcome, error) {
	reason := ""
	if r.status == models.ModerationStatusPending {
		reason = "Awaiting manual review"
	}
	return &Outcome{
		Status:   r.status,
		Reason:   reason,
		Metadata: map[string]string{"rule": r.Name()},
		Continue: r.allowContinue,
	}, nil
}
