package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/push"
)

type staticTokenRepo struct{ tokens map[uint][]models.DeviceToken }

func (r *staticTokenRepo) Register(ctx context.Context, token *models.DeviceToken) error { return nil }
func (r *staticTokenRepo) Remove(ctx context.Context, userID uint, token string) error   { return nil }
func (r *staticTokenRepo) GetEnabledTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	return r.tokens[userID], nil
}
func (r *staticTokenRepo) DeleteTokens(ctx context.Context, tokens []string) error { return nil }

type emptyPrefRepo struct{}

func (r *emptyPrefRepo) Get(ctx context.Context, userID uint) (*models.NotificationPreferences, error) {
	return nil, nil
}
func (r *emptyPrefRepo) Save(ctx context.Context, prefs *models.NotificationPreferences) error {
	return nil
}

type noopLogRepo struct{}

func (r *noopLogRepo) Create(ctx context.Context, entry *models.PushDeliveryLog) error { return nil }
func (r *noopLogRepo) GetByUserID(ctx context.Context, userID uint, limit int) ([]models.PushDeliveryLog, error) {
	return nil, nil
}

// countingGateway records every multicast body it is asked to deliver.
type countingGateway struct{ bodies []string }

func (g *countingGateway) SendMulticast(ctx context.Context, tokens []string, msg *push.Message) (*push.MulticastResult, error) {
	g.bodies = append(g.bodies, msg.Body)
	result := &push.MulticastResult{SuccessCount: len(tokens)}
	for _, token := range tokens {
		result.Responses = append(result.Responses, push.SendResponse{Token: token, Success: true})
	}
	return result, nil
}

func newTestNotifier(t *testing.T) (*Notifier, *countingGateway, *time.Time) {
	t.Helper()

	store := newFakeNotificationStore()
	resolver := &fakeProfileResolver{profiles: map[uint]models.ActorSnapshot{
		1: {ID: 1, Username: "ann"},
		2: {ID: 2, Username: "bob"},
		3: {ID: 3, Username: "cam"},
	}}
	agg := NewAggregator(store, resolver, zap.NewNop(), time.Hour)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := &now
	agg.now = func() time.Time { return *clock }

	gateway := &countingGateway{}
	tokens := &staticTokenRepo{tokens: map[uint][]models.DeviceToken{
		10: {{UserID: 10, Token: "tok-10", Enabled: true}},
	}}
	sender := push.NewSender(tokens, &emptyPrefRepo{}, &noopLogRepo{}, gateway, zap.NewNop())

	return NewNotifier(agg, sender, zap.NewNop()), gateway, clock
}

// Two likes inside the window collapse into one record and one push; a third
// like after the window opens a new burst and pushes again.
func TestNotifyPushesOncePerBurst(t *testing.T) {
	notifier, gateway, clock := newTestNotifier(t)
	ctx := context.Background()

	require.NoError(t, notifier.Notify(ctx, likeEvent(1)))
	require.Len(t, gateway.bodies, 1)
	assert.Equal(t, "ann liked your post", gateway.bodies[0])

	*clock = clock.Add(10 * time.Minute)
	require.NoError(t, notifier.Notify(ctx, likeEvent(2)))
	assert.Len(t, gateway.bodies, 1, "aggregated events must stay silent")

	*clock = clock.Add(2 * time.Hour)
	require.NoError(t, notifier.Notify(ctx, likeEvent(3)))
	require.Len(t, gateway.bodies, 2)
	assert.Equal(t, "cam liked your post", gateway.bodies[1])
}

func TestNotifySelfActionSendsNothing(t *testing.T) {
	notifier, gateway, _ := newTestNotifier(t)

	ev := likeEvent(1)
	ev.RecipientID = 1
	require.NoError(t, notifier.Notify(context.Background(), ev))
	assert.Empty(t, gateway.bodies)
}
