package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loopin-app/backend/internal/models"
)

func snapshots(usernames ...string) []models.ActorSnapshot {
	actors := make([]models.ActorSnapshot, len(usernames))
	for i, u := range usernames {
		actors[i] = models.ActorSnapshot{ID: uint(i + 1), Username: u}
	}
	return actors
}

func TestRenderMessageSingleActor(t *testing.T) {
	assert.Equal(t, "ann liked your post",
		RenderMessage(models.NotificationTypeLike, snapshots("ann"), 1))
	assert.Equal(t, "ann commented on your post",
		RenderMessage(models.NotificationTypeComment, snapshots("ann"), 1))
	assert.Equal(t, "ann started following you",
		RenderMessage(models.NotificationTypeFollow, snapshots("ann"), 1))
	assert.Equal(t, "ann mentioned you in a post",
		RenderMessage(models.NotificationTypeMention, snapshots("ann"), 1))
}

func TestRenderMessageTwoActors(t *testing.T) {
	assert.Equal(t, "ann and bob liked your post",
		RenderMessage(models.NotificationTypeLike, snapshots("ann", "bob"), 2))
}

func TestRenderMessageManyActors(t *testing.T) {
	assert.Equal(t, "ann, bob, and 1 other liked your post",
		RenderMessage(models.NotificationTypeLike, snapshots("ann", "bob", "cam"), 3))
	assert.Equal(t, "ann, bob, and 5 others commented on your post",
		RenderMessage(models.NotificationTypeComment, snapshots("ann", "bob", "cam"), 7))
}

func TestRenderMessageUnknownTypeFallsBack(t *testing.T) {
	assert.Equal(t, "ann interacted with your post",
		RenderMessage("poke", snapshots("ann"), 1))
}

func TestRenderMessageNoActors(t *testing.T) {
	assert.Equal(t, "Someone liked your post",
		RenderMessage(models.NotificationTypeLike, nil, 0))
	assert.Equal(t, "Someone liked your post",
		RenderMessage(models.NotificationTypeLike, nil, 3))
}

func TestRenderMessageCountExceedsSnapshots(t *testing.T) {
	// Only one snapshot survived eviction but four actors acted in total.
	assert.Equal(t, "ann and 3 others liked your post",
		RenderMessage(models.NotificationTypeLike, snapshots("ann"), 4))
}

func TestRenderMessageIsPure(t *testing.T) {
	actors := snapshots("ann", "bob")
	first := RenderMessage(models.NotificationTypeLike, actors, 2)
	second := RenderMessage(models.NotificationTypeLike, actors, 2)
	assert.Equal(t, first, second)
}
