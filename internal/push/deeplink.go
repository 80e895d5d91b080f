package push

// Notification categories carried in the push data payload.
const (
	CategoryEngagement  = "engagement"
	CategorySystem      = "system"
	CategoryPromotional = "promotional"
)

// SystemTypePostModeration is the system sub-type for moderation outcomes;
// it deep-links back to the affected post.
const SystemTypePostModeration = "post_moderation"

// Deep-link destinations understood by the mobile client.
const (
	deepLinkHome          = "loopin://home"
	deepLinkNotifications = "loopin://notifications"
	deepLinkPostPrefix    = "loopin://post/"
	deepLinkProfilePrefix = "loopin://profile/"
)

// ResolveDeepLink derives the tap destination for a push. An explicit
// deepLink always wins; otherwise the destination follows a fixed mapping
// from (category, type, target).
func ResolveDeepLink(deepLink, category, notificationType, targetID, activityID string) string {
	if deepLink != "" {
		return deepLink
	}

	switch category {
	case CategoryEngagement:
		if id := firstNonEmpty(targetID, activityID); id != "" {
			return deepLinkPostPrefix + id
		}
	case CategorySystem:
		if notificationType == SystemTypePostModeration {
			if id := firstNonEmpty(targetID, activityID); id != "" {
				return deepLinkPostPrefix + id
			}
		} else if targetID != "" {
			return deepLinkProfilePrefix + targetID
		}
	case CategoryPromotional:
		return deepLinkNotifications
	}
	return deepLinkHome
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
