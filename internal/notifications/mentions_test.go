package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMentions(t *testing.T) {
	assert.Equal(t, []string{"ann", "bob"}, ExtractMentions("hey @ann and @bob, look at this"))
}

func TestExtractMentionsDeduplicates(t *testing.T) {
	assert.Equal(t, []string{"ann"}, ExtractMentions("@ann @ann @ann"))
}

func TestExtractMentionsNone(t *testing.T) {
	assert.Nil(t, ExtractMentions("no mentions here"))
	assert.Nil(t, ExtractMentions(""))
}
