package notifications

import (
	"fmt"

	"github.com/loopin-app/backend/internal/models"
)

// verbPhrase maps a notification type to its message suffix.
func verbPhrase(notificationType string) string {
	switch notificationType {
	case models.NotificationTypeLike:
		return "liked your post"
	case models.NotificationTypeComment:
		return "commented on your post"
	case models.NotificationTypeFollow:
		return "started following you"
	case models.NotificationTypeMention:
		return "mentioned you in a post"
	default:
		return "interacted with your post"
	}
}

// RenderMessage builds the display message for an aggregated record. It is a
// pure function of (type, actors, actorCount): the same inputs always produce
// the same string.
//
// actorCount may exceed len(actors) because the actor list is capped; the
// overflow shows up as "and N others".
func RenderMessage(notificationType string, actors []models.ActorSnapshot, actorCount int) string {
	verb := verbPhrase(notificationType)

	if actorCount <= 0 || len(actors) == 0 {
		return "Someone " + verb
	}

	switch {
	case actorCount == 1:
		return fmt.Sprintf("%s %s", actors[0].Username, verb)
	case actorCount == 2 && len(actors) >= 2:
		return fmt.Sprintf("%s and %s %s", actors[0].Username, actors[1].Username, verb)
	case len(actors) >= 2:
		others := actorCount - 2
		return fmt.Sprintf("%s, %s, and %d %s %s", actors[0].Username, actors[1].Username, others, pluralOthers(others), verb)
	default:
		// actorCount >= 2 but only one snapshot survived; still render a total.
		others := actorCount - 1
		return fmt.Sprintf("%s and %d %s %s", actors[0].Username, others, pluralOthers(others), verb)
	}
}

func pluralOthers(n int) string {
	if n == 1 {
		return "other"
	}
	return "others"
}
