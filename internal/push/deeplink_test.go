package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDeepLinkExplicitWins(t *testing.T) {
	assert.Equal(t, "loopin://settings",
		ResolveDeepLink("loopin://settings", CategoryEngagement, "like", "post-1", ""))
}

func TestResolveDeepLinkEngagement(t *testing.T) {
	assert.Equal(t, "loopin://post/post-1",
		ResolveDeepLink("", CategoryEngagement, "like", "post-1", ""))
	assert.Equal(t, "loopin://post/act-1",
		ResolveDeepLink("", CategoryEngagement, "comment", "", "act-1"))
	assert.Equal(t, "loopin://home",
		ResolveDeepLink("", CategoryEngagement, "like", "", ""))
}

func TestResolveDeepLinkSystem(t *testing.T) {
	assert.Equal(t, "loopin://post/post-1",
		ResolveDeepLink("", CategorySystem, SystemTypePostModeration, "post-1", ""))
	assert.Equal(t, "loopin://profile/42",
		ResolveDeepLink("", CategorySystem, "account_warning", "42", ""))
	assert.Equal(t, "loopin://home",
		ResolveDeepLink("", CategorySystem, "account_warning", "", ""))
}

func TestResolveDeepLinkPromotional(t *testing.T) {
	assert.Equal(t, "loopin://notifications",
		ResolveDeepLink("", CategoryPromotional, "promos", "", ""))
}

func TestResolveDeepLinkUnknownCategoryFallsBackHome(t *testing.T) {
	assert.Equal(t, "loopin://home",
		ResolveDeepLink("", "mystery", "like", "post-1", ""))
}
