package push

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

// fakeTokenRepo is an in-memory DeviceTokenRepository.
type fakeTokenRepo struct {
	tokens  map[uint][]models.DeviceToken
	deleted []string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uint][]models.DeviceToken)}
}

func (r *fakeTokenRepo) add(userID uint, token string) {
	r.tokens[userID] = append(r.tokens[userID], models.DeviceToken{
		UserID: userID, Token: token, Platform: "ios", Enabled: true,
	})
}

func (r *fakeTokenRepo) Register(ctx context.Context, token *models.DeviceToken) error {
	r.add(token.UserID, token.Token)
	return nil
}

func (r *fakeTokenRepo) Remove(ctx context.Context, userID uint, token string) error { return nil }

func (r *fakeTokenRepo) GetEnabledTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	return r.tokens[userID], nil
}

func (r *fakeTokenRepo) DeleteTokens(ctx context.Context, tokens []string) error {
	r.deleted = append(r.deleted, tokens...)
	return nil
}

// fakePrefRepo serves preference rows; absent users get nil.
type fakePrefRepo struct {
	prefs map[uint]*models.NotificationPreferences
}

func (r *fakePrefRepo) Get(ctx context.Context, userID uint) (*models.NotificationPreferences, error) {
	return r.prefs[userID], nil
}

func (r *fakePrefRepo) Save(ctx context.Context, prefs *models.NotificationPreferences) error {
	r.prefs[prefs.UserID] = prefs
	return nil
}

// fakeLogRepo records audit entries.
type fakeLogRepo struct {
	entries []models.PushDeliveryLog
}

func (r *fakeLogRepo) Create(ctx context.Context, entry *models.PushDeliveryLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) GetByUserID(ctx context.Context, userID uint, limit int) ([]models.PushDeliveryLog, error) {
	return r.entries, nil
}

// fakeGateway scripts per-token outcomes.
type fakeGateway struct {
	calls        int
	sentTokens   [][]string
	lastMessage  *Message
	unregistered map[string]bool
	err          error
}

func (g *fakeGateway) SendMulticast(ctx context.Context, tokens []string, msg *Message) (*MulticastResult, error) {
	g.calls++
	g.sentTokens = append(g.sentTokens, tokens)
	g.lastMessage = msg
	if g.err != nil {
		return nil, g.err
	}

	result := &MulticastResult{}
	for _, token := range tokens {
		if g.unregistered[token] {
			result.FailureCount++
			result.Responses = append(result.Responses, SendResponse{
				Token: token, Unregistered: true, Err: fmt.Errorf("requested entity was not found"),
			})
			continue
		}
		result.SuccessCount++
		result.Responses = append(result.Responses, SendResponse{Token: token, Success: true})
	}
	return result, nil
}

func newTestSender() (*Sender, *fakeTokenRepo, *fakePrefRepo, *fakeLogRepo, *fakeGateway) {
	tokens := newFakeTokenRepo()
	prefs := &fakePrefRepo{prefs: make(map[uint]*models.NotificationPreferences)}
	logs := &fakeLogRepo{}
	gateway := &fakeGateway{unregistered: make(map[string]bool)}
	sender := NewSender(tokens, prefs, logs, gateway, zap.NewNop())
	return sender, tokens, prefs, logs, gateway
}

func engagementRequest(userID uint) Request {
	return Request{
		UserID:         userID,
		NotificationID: "n-1",
		Type:           models.NotificationTypeLike,
		Category:       CategoryEngagement,
		Title:          "Loopin",
		Body:           "ann liked your post",
		TargetID:       "post-1",
	}
}

func TestSendDeliversToAllTokens(t *testing.T) {
	sender, tokens, _, logs, gateway := newTestSender()
	tokens.add(1, "tok-a")
	tokens.add(1, "tok-b")

	result, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 0, result.Failed)

	require.Equal(t, 1, gateway.calls)
	assert.ElementsMatch(t, []string{"tok-a", "tok-b"}, gateway.sentTokens[0])

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.PushDeliveryStatusSent, logs.entries[0].Status)
	assert.Equal(t, 2, logs.entries[0].TokenCount)
}

func TestSendNoTokensSkipsGateway(t *testing.T) {
	sender, _, _, logs, gateway := newTestSender()

	result, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.Sent)

	assert.Zero(t, gateway.calls, "gateway must not be invoked without tokens")
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.PushDeliveryStatusSkipped, logs.entries[0].Status)
}

func TestSendPushDisabledSkips(t *testing.T) {
	sender, tokens, prefs, logs, gateway := newTestSender()
	tokens.add(1, "tok-a")
	prefs.prefs[1] = &models.NotificationPreferences{UserID: 1, PushEnabled: false}

	result, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, gateway.calls)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.PushDeliveryStatusSkipped, logs.entries[0].Status)
}

func TestSendEngagementTypeDisabledSkips(t *testing.T) {
	sender, tokens, prefs, _, gateway := newTestSender()
	tokens.add(1, "tok-a")
	prefs.prefs[1] = &models.NotificationPreferences{
		UserID: 1, PushEnabled: true,
		LikesEnabled: false, CommentsEnabled: true, FollowsEnabled: true, MentionsEnabled: true,
	}

	_, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	assert.Zero(t, gateway.calls)
}

func TestSendEngagementDefaultsToEnabledWithoutRow(t *testing.T) {
	sender, tokens, _, _, gateway := newTestSender()
	tokens.add(1, "tok-a")

	result, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, gateway.calls)
}

func TestSendPromotionalDefaultsToOptedOut(t *testing.T) {
	sender, tokens, _, logs, gateway := newTestSender()
	tokens.add(1, "tok-a")

	req := engagementRequest(1)
	req.Category = CategoryPromotional
	req.Type = models.PromotionalSubtypePromos

	result, err := sender.Send(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, gateway.calls, "promotional pushes require an explicit opt-in")
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.PushDeliveryStatusSkipped, logs.entries[0].Status)
}

func TestSendPromotionalOptInDelivers(t *testing.T) {
	sender, tokens, prefs, _, gateway := newTestSender()
	tokens.add(1, "tok-a")
	prefs.prefs[1] = &models.NotificationPreferences{
		UserID: 1, PushEnabled: true,
		PromotionalEnabled: true, PromosEnabled: true,
	}

	req := engagementRequest(1)
	req.Category = CategoryPromotional
	req.Type = models.PromotionalSubtypePromos

	result, err := sender.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, gateway.calls)
}

func TestSendPromotionalMasterSwitchGatesSubtypes(t *testing.T) {
	sender, tokens, prefs, _, gateway := newTestSender()
	tokens.add(1, "tok-a")
	prefs.prefs[1] = &models.NotificationPreferences{
		UserID: 1, PushEnabled: true,
		PromotionalEnabled: false, PromosEnabled: true,
	}

	req := engagementRequest(1)
	req.Category = CategoryPromotional
	req.Type = models.PromotionalSubtypePromos

	_, err := sender.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, gateway.calls)
}

func TestSendPrunesUnregisteredTokens(t *testing.T) {
	sender, tokens, _, _, gateway := newTestSender()
	tokens.add(1, "tok-live")
	tokens.add(1, "tok-stale")
	gateway.unregistered["tok-stale"] = true

	result, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"tok-stale"}, tokens.deleted)
}

func TestSendGatewayErrorPropagatesAndAudits(t *testing.T) {
	sender, tokens, _, logs, gateway := newTestSender()
	tokens.add(1, "tok-a")
	gateway.err = fmt.Errorf("fcm unavailable")

	_, err := sender.Send(context.Background(), engagementRequest(1))
	assert.Error(t, err)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.PushDeliveryStatusFailed, logs.entries[0].Status)
}

func TestSendAttachesDeepLinkData(t *testing.T) {
	sender, tokens, _, _, gateway := newTestSender()
	tokens.add(1, "tok-a")

	_, err := sender.Send(context.Background(), engagementRequest(1))
	require.NoError(t, err)
	require.NotNil(t, gateway.lastMessage)
	assert.Equal(t, "loopin://post/post-1", gateway.lastMessage.Data["deep_link"])
	assert.Equal(t, "n-1", gateway.lastMessage.Data["notification_id"])
}

func TestSendBatchFansOutInChunks(t *testing.T) {
	sender, tokens, _, _, gateway := newTestSender()
	sender.SetBatchPacing(2, 0)

	userIDs := []uint{1, 2, 3, 4, 5}
	for _, id := range userIDs {
		tokens.add(id, fmt.Sprintf("tok-%d", id))
	}

	result, err := sender.SendBatch(context.Background(), userIDs, engagementRequest(0))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 5, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 5, gateway.calls)
}

func TestSendBatchCountsPerUserFailures(t *testing.T) {
	sender, tokens, _, _, gateway := newTestSender()
	sender.SetBatchPacing(10, 0)
	tokens.add(1, "tok-1")
	tokens.add(2, "tok-2")
	gateway.unregistered["tok-2"] = true

	result, err := sender.SendBatch(context.Background(), []uint{1, 2}, engagementRequest(0))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestSendBatchHonorsContextCancellation(t *testing.T) {
	sender, tokens, _, _, _ := newTestSender()
	sender.SetBatchPacing(1, 50*time.Millisecond)
	tokens.add(1, "tok-1")
	tokens.add(2, "tok-2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sender.SendBatch(ctx, []uint{1, 2}, engagementRequest(0))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Less(t, result.Sent, 2)
}
