package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	// DefaultAggregationWindow is the sliding period during which same-key
	// events collapse into one record.
	DefaultAggregationWindow = time.Hour

	// maxActors caps the remembered actor snapshots per record. ActorCount
	// keeps counting past the cap; only the display list is bounded.
	maxActors = 3
)

// Validation errors reported to the caller before any state is written.
var (
	ErrInvalidType      = errors.New("notifications: invalid notification type")
	ErrMissingRecipient = errors.New("notifications: recipient id is required")
	ErrMissingActor     = errors.New("notifications: actor id is required")
	ErrMissingTarget    = errors.New("notifications: target id is required")
)

// Enrichment carries optional display data attached only when a new record is
// created; aggregated updates never change it.
type Enrichment struct {
	PreviewImageURL string
	ThumbnailURL    string
	Caption         string
}

// Event is a single social action to record.
type Event struct {
	Type        string
	RecipientID uint
	ActorID     uint
	TargetID    string
	ActivityID  string
	Enrichment  *Enrichment
}

// ProfileResolver looks up the acting user's display snapshot.
// A nil snapshot with nil error means the profile does not exist.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uint) (*models.ActorSnapshot, error)
}

// Aggregator collapses bursts of same-type, same-target events from multiple
// actors into one rolled-up notification record per recipient.
//
// Invocations are expected to be at-least-once. The open-record update is a
// compare-and-swap on lastActivityAt with one re-read retry; after repeated
// conflicts the event falls back to a new record rather than losing an update.
type Aggregator struct {
	store    repositories.NotificationRepository
	profiles ProfileResolver
	logger   *zap.Logger
	window   time.Duration
	now      func() time.Time
}

// NewAggregator creates an Aggregator. window <= 0 selects the default 1 hour.
func NewAggregator(store repositories.NotificationRepository, profiles ProfileResolver, logger *zap.Logger, window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultAggregationWindow
	}
	return &Aggregator{
		store:    store,
		profiles: profiles,
		logger:   logger,
		window:   window,
		now:      time.Now,
	}
}

// RecordEvent records a social event and returns the new record's ID, or ""
// when the event aggregated into an existing record or was a no-op
// (self-action, unresolvable actor). Callers use a non-empty ID as the signal
// to trigger push delivery: only the first event of a burst pushes.
func (a *Aggregator) RecordEvent(ctx context.Context, ev Event) (string, error) {
	n, created, err := a.Record(ctx, ev)
	if err != nil || !created {
		return "", err
	}
	return n.ID, nil
}

// Record is RecordEvent with the full record returned, for callers that need
// the rendered message (e.g. to build the push body). created reports whether
// a new record was written; a nil record with nil error is a no-op.
func (a *Aggregator) Record(ctx context.Context, ev Event) (*models.Notification, bool, error) {
	if err := validateEvent(ev); err != nil {
		return nil, false, err
	}

	// Acting on your own content never notifies you.
	if ev.RecipientID == ev.ActorID {
		return nil, false, nil
	}

	actor, err := a.profiles.Resolve(ctx, ev.ActorID)
	if err != nil || actor == nil {
		// A notification with an unknown actor is worse than no
		// notification; drop the event instead of failing the invocation.
		a.logger.Warn("dropping event, actor profile unresolved",
			zap.Uint("actor_id", ev.ActorID),
			zap.String("type", ev.Type),
			zap.Error(err))
		return nil, false, nil
	}

	// Two attempts: a lost compare-and-swap means a concurrent event touched
	// the same open record, so re-read once before giving up and creating a
	// fresh record.
	now := a.now()
	for attempt := 0; attempt < 2; attempt++ {
		open, err := a.store.FindOpen(ctx, ev.RecipientID, ev.Type, ev.TargetID)
		if err != nil {
			return nil, false, err
		}

		candidate := newestRecord(open)
		if candidate == nil || !a.eligible(candidate, actor.ID, now) {
			break
		}

		prev := candidate.LastActivityAt
		a.aggregate(candidate, *actor, now)
		applied, err := a.store.UpdateIfUnchanged(ctx, candidate, prev)
		if err != nil {
			return nil, false, err
		}
		if applied {
			a.logger.Debug("aggregated notification",
				zap.String("notification_id", candidate.ID),
				zap.Int("actor_count", candidate.ActorCount))
			return candidate, false, nil
		}
	}

	n := a.newRecord(ev, *actor, now)
	if err := a.store.Create(ctx, n); err != nil {
		return nil, false, err
	}
	a.logger.Debug("created notification",
		zap.String("notification_id", n.ID),
		zap.Uint("recipient_id", ev.RecipientID),
		zap.String("type", ev.Type))
	return n, true, nil
}

func validateEvent(ev Event) error {
	if !models.ValidNotificationType(ev.Type) {
		return ErrInvalidType
	}
	if ev.RecipientID == 0 {
		return ErrMissingRecipient
	}
	if ev.ActorID == 0 {
		return ErrMissingActor
	}
	if ev.TargetID == "" {
		return ErrMissingTarget
	}
	return nil
}

// newestRecord picks the open record with the most recent lastActivityAt.
// The scan happens in memory: the store cannot combine the key filters with
// an order-by without a composite index.
func newestRecord(open []models.Notification) *models.Notification {
	var newest *models.Notification
	for i := range open {
		if newest == nil || open[i].LastActivityAt.After(newest.LastActivityAt) {
			newest = &open[i]
		}
	}
	return newest
}

// eligible reports whether the candidate can absorb an event from actorID.
// Aggregation is window- and actor-bounded, not key-exclusive: an ineligible
// candidate means a new record is created even though one exists for the key.
func (a *Aggregator) eligible(candidate *models.Notification, actorID uint, now time.Time) bool {
	if now.Sub(candidate.LastActivityAt) > a.window {
		return false
	}
	for _, existing := range candidate.Actors {
		if existing.ID == actorID {
			return false
		}
	}
	return true
}

func (a *Aggregator) aggregate(n *models.Notification, actor models.ActorSnapshot, now time.Time) {
	n.Actors = append(n.Actors, actor)
	if len(n.Actors) > maxActors {
		// FIFO eviction: keep the most recent snapshots.
		n.Actors = n.Actors[len(n.Actors)-maxActors:]
	}
	n.ActorCount++
	n.Message = RenderMessage(n.Type, n.Actors, n.ActorCount)
	n.LastActivityAt = now
	n.UpdatedAt = now
}

func (a *Aggregator) newRecord(ev Event, actor models.ActorSnapshot, now time.Time) *models.Notification {
	n := &models.Notification{
		ID:             uuid.NewString(),
		Type:           ev.Type,
		RecipientID:    ev.RecipientID,
		TargetID:       ev.TargetID,
		ActivityID:     ev.ActivityID,
		Actors:         []models.ActorSnapshot{actor},
		ActorCount:     1,
		Message:        RenderMessage(ev.Type, []models.ActorSnapshot{actor}, 1),
		IsRead:         false,
		CreatedAt:      now,
		LastActivityAt: now,
		UpdatedAt:      now,
	}
	if ev.Enrichment != nil {
		n.PreviewImageURL = ev.Enrichment.PreviewImageURL
		n.ThumbnailURL = ev.Enrichment.ThumbnailURL
		n.Caption = ev.Enrichment.Caption
	}
	return n
}
