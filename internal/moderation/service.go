package moderation

import (
	"context"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/repositories"
	"go.uber.org/zap"
)

// Service runs the rule engine on post create/edit and records manual admin
// decisions. Every verdict change appends an immutable audit action; the
// post document only carries the current verdict.
type Service struct {
	engine  *Engine
	posts   repositories.PostRepository
	actions repositories.ModerationRepository
	logger  *zap.Logger
}

// NewService creates the moderation service.
func NewService(engine *Engine, posts repositories.PostRepository, actions repositories.ModerationRepository, logger *zap.Logger) *Service {
	return &Service{engine: engine, posts: posts, actions: actions, logger: logger}
}

// EvaluatePost computes a fresh verdict for a new or edited post, stamps it
// on the document, and appends the automated audit action.
func (s *Service) EvaluatePost(ctx context.Context, post *models.Post) (Verdict, error) {
	verdict := s.engine.Evaluate(ctx, post)

	postID := post.ID.Hex()
	if err := s.posts.UpdateModeration(ctx, postID, verdict.Status, verdict.Reason); err != nil {
		return verdict, err
	}
	post.ModerationStatus = verdict.Status
	post.ModerationReason = verdict.Reason

	action := &models.ModerationAction{
		PostID:   postID,
		Action:   string(verdict.Status),
		Reason:   verdict.Reason,
		RuleName: verdict.Metadata["rule"],
	}
	if err := s.actions.AppendAction(ctx, action); err != nil {
		// The verdict is already applied; a lost audit row is logged, not fatal.
		s.logger.Error("failed to append moderation audit action",
			zap.String("post_id", postID),
			zap.Error(err))
	}

	s.logger.Info("post moderated",
		zap.String("post_id", postID),
		zap.String("status", string(verdict.Status)),
		zap.String("rule", verdict.Metadata["rule"]))
	return verdict, nil
}

// Approve is a manual, rule-bypassing approval.
func (s *Service) Approve(ctx context.Context, postID string, moderatorID uint, reason, notes string) error {
	return s.applyManual(ctx, postID, moderatorID, models.ModerationStatusApproved, reason, notes)
}

// Reject is a manual, rule-bypassing rejection.
func (s *Service) Reject(ctx context.Context, postID string, moderatorID uint, reason, notes string) error {
	return s.applyManual(ctx, postID, moderatorID, models.ModerationStatusRejected, reason, notes)
}

// Flag is a manual, rule-bypassing flag for review.
func (s *Service) Flag(ctx context.Context, postID string, moderatorID uint, reason, notes string) error {
	return s.applyManual(ctx, postID, moderatorID, models.ModerationStatusFlagged, reason, notes)
}

func (s *Service) applyManual(ctx context.Context, postID string, moderatorID uint, status models.ModerationStatus, reason, notes string) error {
	if err := s.posts.UpdateModeration(ctx, postID, status, reason); err != nil {
		return err
	}

	action := &models.ModerationAction{
		PostID:      postID,
		ModeratorID: moderatorID,
		Action:      string(status),
		Reason:      reason,
		Notes:       notes,
	}
	if err := s.actions.AppendAction(ctx, action); err != nil {
		s.logger.Error("failed to append moderation audit action",
			zap.String("post_id", postID),
			zap.Error(err))
	}

	s.logger.Info("manual moderation action",
		zap.String("post_id", postID),
		zap.Uint("moderator_id", moderatorID),
		zap.String("status", string(status)))
	return nil
}

// ActionsForPost returns the audit trail for a post, oldest first.
func (s *Service) ActionsForPost(ctx context.Context, postID string) ([]models.ModerationAction, error) {
	return s.actions.GetActionsByPostID(ctx, postID)
}
