package moderation

import (
	"context"

	"github.com/loopin-app/backend/internal/models"
)

// Verdict is the engine's output for a post: a status plus explanatory
// metadata. Reason is required when an automated rule rejects or flags.
type Verdict struct {
	Status   models.ModerationStatus `json:"status"`
	Reason   string                  `json:"reason,omitempty"`
	Metadata map[string]string       `json:"metadata,omitempty"`
}

// Outcome is a single rule's result. Continue controls whether the chain
// proceeds to the next rule; the outcome overwrites the running verdict
// either way (last writer, not merge).
type Outcome struct {
	Status   models.ModerationStatus
	Reason   string
	Metadata map[string]string
	Continue bool
}

// Rule is one link of the moderation chain. Rules execute highest priority
// first; equal priorities keep registration order.
type Rule interface {
	Name() string
	Priority() int
	Evaluate(ctx context.Context, post *models.Post) (*Outcome, error)
}
