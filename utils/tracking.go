package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// NewMessageID returns a fresh message id for an outbound email
func NewMessageID() string {
	return uuid.New().String()
}

// TrackingToken derives the token embedded in tracking URLs for a message.
// Deterministic per message id so the open/click handlers can verify it.
func TrackingToken(messageID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))[:20]
}

// VerifyTrackingToken checks a token received on a tracking endpoint
func VerifyTrackingToken(messageID, secret, token string) bool {
	return hmac.Equal([]byte(TrackingToken(messageID, secret)), []byte(token))
}

// GenerateTrackingPixelURL generates a tracking pixel URL for email opens
func GenerateTrackingPixelURL(baseURL, messageID, secret string) string {
	return fmt.Sprintf("%s/track/open/%s/%s", baseURL, messageID, TrackingToken(messageID, secret))
}

// GenerateClickTrackURL generates a tracked URL for links
func GenerateClickTrackURL(baseURL, messageID, secret, originalURL string) string {
	encodedURL := url.QueryEscape(originalURL)
	return fmt.Sprintf("%s/track/click/%s/%s?url=%s", baseURL, messageID, TrackingToken(messageID, secret), encodedURL)
}

// InjectTracking injects open and click tracking into email content
func InjectTracking(htmlContent, baseURL, messageID, secret string) string {
	pixelURL := GenerateTrackingPixelURL(baseURL, messageID, secret)
	trackingPixel := fmt.Sprintf(`<img src="%s" alt="" width="1" height="1" style="display:none">`, pixelURL)

	modifiedHTML := injectClickTracking(htmlContent, baseURL, messageID, secret)

	return modifiedHTML + trackingPixel
}

func injectClickTracking(html, baseURL, messageID, secret string) string {
	startTag := "<a href=\""
	endTag := "\""
	offset := 0

	for {
		startIdx := strings.Index(html[offset:], startTag)
		if startIdx == -1 {
			break
		}
		startIdx += offset + len(startTag)

		endIdx := strings.Index(html[startIdx:], endTag)
		if endIdx == -1 {
			break
		}
		endIdx += startIdx

		originalURL := html[startIdx:endIdx]
		trackedURL := GenerateClickTrackURL(baseURL, messageID, secret, originalURL)

		html = html[:startIdx] + trackedURL + html[endIdx:]
		offset = startIdx + len(trackedURL)
	}

	return html
}
