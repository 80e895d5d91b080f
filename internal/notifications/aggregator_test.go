package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/models"
)

// fakeNotificationStore is an in-memory NotificationRepository.
type fakeNotificationStore struct {
	records map[string]*models.Notification
	failing bool
	// conflicts makes the next N compare-and-swap updates report a lost race.
	conflicts int
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{records: make(map[string]*models.Notification)}
}

func (s *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if s.failing {
		return fmt.Errorf("store unavailable")
	}
	copied := *n
	s.records[n.ID] = &copied
	return nil
}

func (s *fakeNotificationStore) UpdateIfUnchanged(ctx context.Context, n *models.Notification, prevLastActivityAt time.Time) (bool, error) {
	if s.failing {
		return false, fmt.Errorf("store unavailable")
	}
	if s.conflicts > 0 {
		s.conflicts--
		return false, nil
	}
	current, ok := s.records[n.ID]
	if !ok || !current.LastActivityAt.Equal(prevLastActivityAt) {
		return false, nil
	}
	copied := *n
	s.records[n.ID] = &copied
	return true, nil
}

func (s *fakeNotificationStore) FindOpen(ctx context.Context, recipientID uint, notificationType, targetID string) ([]models.Notification, error) {
	if s.failing {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []models.Notification
	for _, n := range s.records {
		if !n.IsRead && n.RecipientID == recipientID && n.Type == notificationType && n.TargetID == targetID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (s *fakeNotificationStore) GetUnreadCount(recipientID uint) (int64, error) { return 0, nil }

func (s *fakeNotificationStore) MarkAsRead(notificationID string, recipientID uint) error {
	if n, ok := s.records[notificationID]; ok && n.RecipientID == recipientID {
		n.IsRead = true
	}
	return nil
}

func (s *fakeNotificationStore) MarkAllAsRead(recipientID uint) error {
	for _, n := range s.records {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

// fakeProfileResolver serves snapshots from a static map.
type fakeProfileResolver struct {
	profiles map[uint]models.ActorSnapshot
}

func (r *fakeProfileResolver) Resolve(ctx context.Context, userID uint) (*models.ActorSnapshot, error) {
	snapshot, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func newTestAggregator(t *testing.T) (*Aggregator, *fakeNotificationStore, *time.Time) {
	t.Helper()
	store := newFakeNotificationStore()
	resolver := &fakeProfileResolver{profiles: map[uint]models.ActorSnapshot{
		1: {ID: 1, Username: "ann"},
		2: {ID: 2, Username: "bob"},
		3: {ID: 3, Username: "cam"},
		4: {ID: 4, Username: "dee"},
		5: {ID: 5, Username: "eve"},
	}}
	agg := NewAggregator(store, resolver, zap.NewNop(), time.Hour)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := &now
	agg.now = func() time.Time { return *clock }
	return agg, store, clock
}

func likeEvent(actorID uint) Event {
	return Event{
		Type:        models.NotificationTypeLike,
		RecipientID: 10,
		ActorID:     actorID,
		TargetID:    "post-1",
		ActivityID:  "post-1",
	}
}

func TestRecordEventCreatesRecord(t *testing.T) {
	agg, store, _ := newTestAggregator(t)

	id, err := agg.RecordEvent(context.Background(), likeEvent(1))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	n := store.records[id]
	require.NotNil(t, n)
	assert.Equal(t, uint(10), n.RecipientID)
	assert.Equal(t, 1, n.ActorCount)
	assert.Equal(t, "ann liked your post", n.Message)
	assert.False(t, n.IsRead)
}

func TestRecordEventAggregatesSecondActor(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	secondID, err := agg.RecordEvent(ctx, likeEvent(2))
	require.NoError(t, err)
	assert.Empty(t, secondID, "aggregated events must not report a new record")

	require.Len(t, store.records, 1)
	n := store.records[firstID]
	assert.Equal(t, 2, n.ActorCount)
	assert.Equal(t, "ann and bob liked your post", n.Message)
}

func TestRecordEventSelfActionIsNoOp(t *testing.T) {
	agg, store, _ := newTestAggregator(t)

	ev := likeEvent(1)
	ev.RecipientID = 1

	id, err := agg.RecordEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, store.records)
}

func TestRecordEventDuplicateActorStartsNewRecord(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	// The open record already holds ann, so her second like cannot aggregate.
	secondID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)
	require.NotEmpty(t, secondID)
	assert.NotEqual(t, firstID, secondID)

	assert.Equal(t, 1, store.records[firstID].ActorCount)
	assert.Equal(t, 1, store.records[secondID].ActorCount)
}

func TestRecordEventWindowExpiryStartsNewRecord(t *testing.T) {
	agg, store, clock := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	*clock = clock.Add(61 * time.Minute)

	secondID, err := agg.RecordEvent(ctx, likeEvent(2))
	require.NoError(t, err)
	require.NotEmpty(t, secondID)
	assert.NotEqual(t, firstID, secondID)
	assert.Len(t, store.records, 2)
}

func TestRecordEventWindowSlidesWithActivity(t *testing.T) {
	agg, store, clock := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	// Each event lands 50 minutes after the previous one: always inside the
	// sliding window even though the record is far older than one hour.
	*clock = clock.Add(50 * time.Minute)
	_, err = agg.RecordEvent(ctx, likeEvent(2))
	require.NoError(t, err)

	*clock = clock.Add(50 * time.Minute)
	id, err := agg.RecordEvent(ctx, likeEvent(3))
	require.NoError(t, err)
	assert.Empty(t, id)

	require.Len(t, store.records, 1)
	assert.Equal(t, 3, store.records[firstID].ActorCount)
}

func TestRecordEventActorListCapWithFIFOEviction(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)
	for _, actorID := range []uint{2, 3, 4, 5} {
		id, err := agg.RecordEvent(ctx, likeEvent(actorID))
		require.NoError(t, err)
		assert.Empty(t, id)
	}

	n := store.records[firstID]
	assert.Equal(t, 5, n.ActorCount, "actor count keeps growing past the cap")
	require.Len(t, n.Actors, 3)
	assert.Equal(t, "cam", n.Actors[0].Username)
	assert.Equal(t, "dee", n.Actors[1].Username)
	assert.Equal(t, "eve", n.Actors[2].Username)
	assert.Equal(t, "cam, dee, and 3 others liked your post", n.Message)
}

func TestRecordEventUnresolvableActorIsDropped(t *testing.T) {
	agg, store, _ := newTestAggregator(t)

	id, err := agg.RecordEvent(context.Background(), likeEvent(99))
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, store.records)
}

func TestRecordEventReadRecordDoesNotAggregate(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)
	require.NoError(t, store.MarkAsRead(firstID, 10))

	secondID, err := agg.RecordEvent(ctx, likeEvent(2))
	require.NoError(t, err)
	require.NotEmpty(t, secondID)
	assert.NotEqual(t, firstID, secondID)
}

func TestRecordEventDistinctKeysStayApart(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	_, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	commentEv := likeEvent(2)
	commentEv.Type = models.NotificationTypeComment
	id, err := agg.RecordEvent(ctx, commentEv)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	otherPost := likeEvent(2)
	otherPost.TargetID = "post-2"
	id, err = agg.RecordEvent(ctx, otherPost)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Len(t, store.records, 3)
}

func TestRecordEventValidation(t *testing.T) {
	agg, _, _ := newTestAggregator(t)
	ctx := context.Background()

	ev := likeEvent(1)
	ev.Type = "unknown"
	_, err := agg.RecordEvent(ctx, ev)
	assert.ErrorIs(t, err, ErrInvalidType)

	ev = likeEvent(1)
	ev.RecipientID = 0
	_, err = agg.RecordEvent(ctx, ev)
	assert.ErrorIs(t, err, ErrMissingRecipient)

	ev = likeEvent(0)
	_, err = agg.RecordEvent(ctx, ev)
	assert.ErrorIs(t, err, ErrMissingActor)

	ev = likeEvent(1)
	ev.TargetID = ""
	_, err = agg.RecordEvent(ctx, ev)
	assert.ErrorIs(t, err, ErrMissingTarget)
}

func TestRecordEventRetriesOnceOnLostRace(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	firstID, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	// First compare-and-swap loses; the re-read attempt succeeds.
	store.conflicts = 1
	id, err := agg.RecordEvent(ctx, likeEvent(2))
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 2, store.records[firstID].ActorCount)
}

func TestRecordEventFallsBackToNewRecordAfterRepeatedConflicts(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	_, err := agg.RecordEvent(ctx, likeEvent(1))
	require.NoError(t, err)

	store.conflicts = 2
	id, err := agg.RecordEvent(ctx, likeEvent(2))
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Len(t, store.records, 2)
}

func TestRecordEventStoreFailurePropagates(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	store.failing = true

	_, err := agg.RecordEvent(context.Background(), likeEvent(1))
	assert.Error(t, err)
}

func TestRecordEventEnrichmentOnlyOnCreation(t *testing.T) {
	agg, store, _ := newTestAggregator(t)
	ctx := context.Background()

	ev := likeEvent(1)
	ev.Enrichment = &Enrichment{PreviewImageURL: "https://cdn.example.com/a.jpg", Caption: "sunset"}
	firstID, err := agg.RecordEvent(ctx, ev)
	require.NoError(t, err)

	later := likeEvent(2)
	later.Enrichment = &Enrichment{PreviewImageURL: "https://cdn.example.com/b.jpg", Caption: "other"}
	id, err := agg.RecordEvent(ctx, later)
	require.NoError(t, err)
	assert.Empty(t, id)

	n := store.records[firstID]
	assert.Equal(t, "https://cdn.example.com/a.jpg", n.PreviewImageURL)
	assert.Equal(t, "sunset", n.Caption)
}
