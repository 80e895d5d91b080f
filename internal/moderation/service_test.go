package moderation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/models"
)

// fakePostStore records moderation stamps; the rest of PostRepository is unused here.
type fakePostStore struct {
	lastStatus models.ModerationStatus
	lastReason string
	failing    bool
}

func (s *fakePostStore) CreatePost(ctx context.Context, post *models.Post) error { return nil }
func (s *fakePostStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return nil, nil
}
func (s *fakePostStore) GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	return nil, nil
}
func (s *fakePostStore) GetVisiblePosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return nil, nil
}
func (s *fakePostStore) GetPostsByModerationStatus(ctx context.Context, status models.ModerationStatus, skip, limit int64) ([]models.Post, error) {
	return nil, nil
}
func (s *fakePostStore) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	return nil
}
func (s *fakePostStore) UpdateModeration(ctx context.Context, id string, status models.ModerationStatus, reason string) error {
	if s.failing {
		return fmt.Errorf("mongo unavailable")
	}
	s.lastStatus = status
	s.lastReason = reason
	return nil
}
func (s *fakePostStore) DeletePost(ctx context.Context, id string) error              { return nil }
func (s *fakePostStore) IncrementLikesCount(ctx context.Context, postID string) error { return nil }
func (s *fakePostStore) DecrementLikesCount(ctx context.Context, postID string) error { return nil }
func (s *fakePostStore) IncrementCommentsCount(ctx context.Context, postID string) error {
	return nil
}
func (s *fakePostStore) DecrementCommentsCount(ctx context.Context, postID string) error {
	return nil
}

type fakeActionStore struct {
	actions []models.ModerationAction
	failing bool
}

func (s *fakeActionStore) AppendAction(ctx context.Context, action *models.ModerationAction) error {
	if s.failing {
		return fmt.Errorf("postgres unavailable")
	}
	s.actions = append(s.actions, *action)
	return nil
}

func (s *fakeActionStore) GetActionsByPostID(ctx context.Context, postID string) ([]models.ModerationAction, error) {
	return s.actions, nil
}

func TestEvaluatePostStampsVerdictAndAudits(t *testing.T) {
	posts := &fakePostStore{}
	actions := &fakeActionStore{}
	engine := NewEngine(zap.NewNop(),
		NewKeywordRule(100, []string{"spam"}, false),
		NewDefaultRule(models.ModerationStatusApproved, false),
	)
	service := NewService(engine, posts, actions, zap.NewNop())

	post := &models.Post{ID: primitive.NewObjectID(), Content: "spam offer inside"}
	verdict, err := service.EvaluatePost(context.Background(), post)
	require.NoError(t, err)

	assert.Equal(t, models.ModerationStatusRejected, verdict.Status)
	assert.Equal(t, models.ModerationStatusRejected, posts.lastStatus)
	assert.Equal(t, models.ModerationStatusRejected, post.ModerationStatus)

	require.Len(t, actions.actions, 1)
	assert.Equal(t, post.ID.Hex(), actions.actions[0].PostID)
	assert.Equal(t, "keyword_filter", actions.actions[0].RuleName)
	assert.Zero(t, actions.actions[0].ModeratorID, "automated actions carry moderator 0")
}

func TestEvaluatePostStoreFailurePropagates(t *testing.T) {
	posts := &fakePostStore{failing: true}
	service := NewService(NewEngine(zap.NewNop()), posts, &fakeActionStore{}, zap.NewNop())

	_, err := service.EvaluatePost(context.Background(), &models.Post{ID: primitive.NewObjectID()})
	assert.Error(t, err)
}

func TestEvaluatePostAuditFailureIsNotFatal(t *testing.T) {
	posts := &fakePostStore{}
	actions := &fakeActionStore{failing: true}
	service := NewService(NewEngine(zap.NewNop()), posts, actions, zap.NewNop())

	verdict, err := service.EvaluatePost(context.Background(), &models.Post{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Equal(t, models.ModerationStatusApproved, verdict.Status)
	assert.Equal(t, models.ModerationStatusApproved, posts.lastStatus)
}

func TestManualActionsBypassRules(t *testing.T) {
	posts := &fakePostStore{}
	actions := &fakeActionStore{}
	// The chain would approve everything; the manual verdict wins anyway.
	engine := NewEngine(zap.NewNop(), NewDefaultRule(models.ModerationStatusApproved, false))
	service := NewService(engine, posts, actions, zap.NewNop())

	err := service.Reject(context.Background(), "post-1", 7, "off topic", "second offense")
	require.NoError(t, err)

	assert.Equal(t, models.ModerationStatusRejected, posts.lastStatus)
	require.Len(t, actions.actions, 1)
	assert.Equal(t, uint(7), actions.actions[0].ModeratorID)
	assert.Equal(t, "off topic", actions.actions[0].Reason)
	assert.Equal(t, "second offense", actions.actions[0].Notes)
	assert.Empty(t, actions.actions[0].RuleName)
}
