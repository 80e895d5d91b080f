package push

import (
	"context"
	"time"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	// DefaultBatchChunkSize bounds how many users one fan-out chunk covers.
	DefaultBatchChunkSize = 100
	// DefaultBatchChunkDelay paces chunks to stay inside gateway rate limits.
	DefaultBatchChunkDelay = 200 * time.Millisecond
)

// Request describes one push to one user.
type Request struct {
	UserID         uint
	NotificationID string
	Type           string // notification type, promotional sub-type, or system sub-type
	Category       string // engagement, system, promotional
	Title          string
	Body           string
	TargetID       string
	ActivityID     string
	ImageURL       string
	DeepLink       string // explicit destination, overrides the mapping table
}

// Result reports a single send. Sent/Failed count device tokens.
type Result struct {
	Success bool `json:"success"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
}

// BatchResult aggregates a fan-out across many users.
type BatchResult struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Sender delivers push notifications with per-user preference filtering and
// self-healing token pruning.
type Sender struct {
	tokens     repositories.DeviceTokenRepository
	prefs      repositories.PreferenceRepository
	logs       repositories.PushLogRepository
	gateway    Gateway
	logger     *zap.Logger
	chunkSize  int
	chunkDelay time.Duration
}

// NewSender creates a Sender. Zero chunk settings select the defaults.
func NewSender(tokens repositories.DeviceTokenRepository, prefs repositories.PreferenceRepository, logs repositories.PushLogRepository, gateway Gateway, logger *zap.Logger) *Sender {
	return &Sender{
		tokens:     tokens,
		prefs:      prefs,
		logs:       logs,
		gateway:    gateway,
		logger:     logger,
		chunkSize:  DefaultBatchChunkSize,
		chunkDelay: DefaultBatchChunkDelay,
	}
}

// SetBatchPacing overrides the fan-out chunk size and inter-chunk delay.
func (s *Sender) SetBatchPacing(chunkSize int, delay time.Duration) {
	if chunkSize > 0 {
		s.chunkSize = chunkSize
	}
	s.chunkDelay = delay
}

// Send delivers one push to all of a user's enabled devices.
//
// Preference and token misses are soft skips: the result is success with
// nothing sent and the gateway is never invoked. Store and gateway failures
// propagate to the caller.
func (s *Sender) Send(ctx context.Context, req Request) (*Result, error) {
	allowed, err := s.allowedByPreferences(ctx, req)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Info("push skipped by preferences",
			zap.Uint("user_id", req.UserID),
			zap.String("category", req.Category),
			zap.String("type", req.Type))
		s.audit(ctx, req, models.PushDeliveryStatusSkipped, 0, "")
		return &Result{Success: true}, nil
	}

	deviceTokens, err := s.tokens.GetEnabledTokens(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(deviceTokens) == 0 {
		s.audit(ctx, req, models.PushDeliveryStatusSkipped, 0, "")
		return &Result{Success: true}, nil
	}

	tokens := make([]string, len(deviceTokens))
	for i, t := range deviceTokens {
		tokens[i] = t.Token
	}

	msg := &Message{
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Data: map[string]string{
			"notification_id": req.NotificationID,
			"type":            req.Type,
			"category":        req.Category,
			"target_id":       req.TargetID,
			"activity_id":     req.ActivityID,
			"deep_link":       ResolveDeepLink(req.DeepLink, req.Category, req.Type, req.TargetID, req.ActivityID),
		},
	}

	result, err := s.gateway.SendMulticast(ctx, tokens, msg)
	if err != nil {
		s.audit(ctx, req, models.PushDeliveryStatusFailed, len(tokens), err.Error())
		return nil, err
	}

	s.pruneUnregistered(ctx, result)

	status := models.PushDeliveryStatusSent
	if result.SuccessCount == 0 {
		status = models.PushDeliveryStatusFailed
	}
	s.audit(ctx, req, status, len(tokens), firstFailure(result))

	return &Result{
		Success: true,
		Sent:    result.SuccessCount,
		Failed:  result.FailureCount,
	}, nil
}

// SendBatch fans one logical push out over many users in fixed-size chunks
// with an inter-chunk pacing delay. Per-user failures are logged and counted,
// never aborting the run.
func (s *Sender) SendBatch(ctx context.Context, userIDs []uint, template Request) (*BatchResult, error) {
	batch := &BatchResult{Total: len(userIDs)}

	for start := 0; start < len(userIDs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		for _, userID := range userIDs[start:end] {
			req := template
			req.UserID = userID
			result, err := s.Send(ctx, req)
			if err != nil {
				s.logger.Warn("batch push failed for user",
					zap.Uint("user_id", userID),
					zap.Error(err))
				batch.Failed++
				continue
			}
			batch.Sent += result.Sent
			batch.Failed += result.Failed
		}

		if end < len(userIDs) && s.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return batch, ctx.Err()
			case <-time.After(s.chunkDelay):
			}
		}
	}
	return batch, nil
}

// allowedByPreferences applies the preference filter for the request's
// category. Missing preference rows default to enabled for push and
// engagement, opted-out for promotional.
func (s *Sender) allowedByPreferences(ctx context.Context, req Request) (bool, error) {
	prefs, err := s.prefs.Get(ctx, req.UserID)
	if err != nil {
		return false, err
	}

	if req.Category == CategoryPromotional {
		if prefs == nil {
			return false, nil
		}
		return prefs.PushEnabled && prefs.PromotionalSubtypeEnabled(req.Type), nil
	}

	if prefs == nil {
		return true, nil
	}
	if !prefs.PushEnabled {
		return false, nil
	}
	if req.Category == CategoryEngagement {
		return prefs.EngagementEnabled(req.Type), nil
	}
	return true, nil
}

// pruneUnregistered deletes tokens the gateway reported as invalid, so the
// token set heals itself without a cleanup job.
func (s *Sender) pruneUnregistered(ctx context.Context, result *MulticastResult) {
	var stale []string
	for _, resp := range result.Responses {
		if resp.Unregistered {
			stale = append(stale, resp.Token)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := s.tokens.DeleteTokens(ctx, stale); err != nil {
		s.logger.Warn("failed to prune unregistered tokens", zap.Error(err))
		return
	}
	s.logger.Info("pruned unregistered tokens", zap.Int("count", len(stale)))
}

func (s *Sender) audit(ctx context.Context, req Request, status string, tokenCount int, errMsg string) {
	entry := &models.PushDeliveryLog{
		UserID:         req.UserID,
		NotificationID: req.NotificationID,
		Status:         status,
		TokenCount:     tokenCount,
		ErrorMessage:   errMsg,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write push delivery log", zap.Error(err))
	}
}

func firstFailure(result *MulticastResult) string {
	for _, resp := range result.Responses {
		if resp.Err != nil {
			return resp.Err.Error()
		}
	}
	return ""
}
