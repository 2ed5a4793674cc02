package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingTokenRoundTrip(t *testing.T) {
	messageID := NewMessageID()
	token := TrackingToken(messageID, "secret")

	assert.Len(t, token, 20)
	assert.True(t, VerifyTrackingToken(messageID, "secret", token))
	assert.False(t, VerifyTrackingToken(messageID, "other-secret", token))
	assert.False(t, VerifyTrackingToken("other-message", "secret", token))
	assert.False(t, VerifyTrackingToken(messageID, "secret", "forged-token-value00"))
}

func TestTrackingTokenDeterministic(t *testing.T) {
	assert.Equal(t,
		TrackingToken("msg-1", "secret"),
		TrackingToken("msg-1", "secret"))
	assert.NotEqual(t,
		TrackingToken("msg-1", "secret"),
		TrackingToken("msg-2", "secret"))
}

func TestInjectTrackingAppendsPixel(t *testing.T) {
	html := InjectTracking("<p>Hello</p>", "https://track.example.com", "msg-1", "secret")

	require.Contains(t, html, "<p>Hello</p>")
	assert.Contains(t, html, "https://track.example.com/track/open/msg-1/")
	assert.Contains(t, html, `width="1" height="1"`)
}

func TestInjectTrackingRewritesLinks(t *testing.T) {
	src := `<p>Visit <a href="https://shop.example.com/offer">our offer</a> today</p>`
	html := InjectTracking(src, "https://track.example.com", "msg-1", "secret")

	assert.NotContains(t, html, `href="https://shop.example.com/offer"`)
	assert.Contains(t, html, "https://track.example.com/track/click/msg-1/")
	assert.Contains(t, html, "url=https%3A%2F%2Fshop.example.com%2Foffer")
	// Link text is untouched
	assert.Contains(t, html, ">our offer</a>")
}

func TestInjectTrackingMultipleLinks(t *testing.T) {
	src := `<a href="https://a.example.com">a</a><a href="https://b.example.com">b</a>`
	html := InjectTracking(src, "https://track.example.com", "msg-1", "secret")

	assert.Equal(t, 2, strings.Count(html, "/track/click/msg-1/"))
	assert.Contains(t, html, "url=https%3A%2F%2Fa.example.com")
	assert.Contains(t, html, "url=https%3A%2F%2Fb.example.com")
}

func TestValidateLeadEmailFormat(t *testing.T) {
	assert.Error(t, ValidateLeadEmail("not-an-email"))
	assert.Error(t, ValidateLeadEmail(""))
}

func TestValidateLeadEmailTypos(t *testing.T) {
	err := ValidateLeadEmail("owner@gmai.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gmail.com")

	err = ValidateLeadEmail("owner@hotmai.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hotmail.com")
}
