package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/config"
	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

func newEmailApp(t *testing.T, mailerURL string) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig.TrackingSecret = "test-secret"
	config.AppConfig.TrackingBaseURL = "http://localhost:5000"

	db := newTestDB(t)
	mailer := utils.NewMailerClient(mailerURL, "outreach@example.com", log.New(io.Discard, "", 0))
	ec := NewEmailController(db, mailer, log.New(io.Discard, "", 0))

	app := fiber.New()
	app.Post("/api/send-emails", ec.SendEmails)
	app.Get("/api/tracking/stats/all", ec.GetTrackingStats)
	app.Get("/api/tracking/stats/:leadType", ec.GetTrackingStats)
	app.Get("/track/open/:messageID/:token", ec.HandleOpenTracking)
	app.Get("/track/click/:messageID/:token", ec.HandleClickTracking)

	return app, db
}

func TestSendEmailsBulk(t *testing.T) {
	var received []utils.SendEmailRequest
	mailer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req utils.SendEmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received = append(received, req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer mailer.Close()

	app, db := newEmailApp(t, mailer.URL)
	seedLead(t, db, "Acme Candles", "owner@acme.example", models.SourceShopify, false)
	seedLead(t, db, "No Email Co", "", models.SourceShopify, false)
	seedLead(t, db, "Already Sent", "done@example.com", models.SourceShopify, true)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/send-emails", fiber.Map{
		"subject":   "Hello {{businessName}}",
		"message":   "<p>Hi {{businessName}}</p>",
		"leadsType": models.SourceShopify,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sent int
	require.NoError(t, json.Unmarshal(payload["sent"], &sent))
	assert.Equal(t, 1, sent)

	require.Len(t, received, 1)
	assert.Equal(t, "owner@acme.example", received[0].To)
	assert.Equal(t, "Hello Acme Candles", received[0].Subject)
	assert.Contains(t, received[0].HTML, "Hi Acme Candles")
	// Tracking pixel rides along
	assert.Contains(t, received[0].HTML, "/track/open/")

	// Lead flipped to contacted and the send was logged
	var lead models.Lead
	require.NoError(t, db.First(&lead, 1).Error)
	assert.True(t, lead.EmailSent)
	require.NotNil(t, lead.EmailSentAt)

	var logs []models.EmailLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, uint(1), logs[0].LeadID)
}

func TestSendEmailsNoEligibleLeads(t *testing.T) {
	app, _ := newEmailApp(t, "http://localhost:0")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/send-emails", fiber.Map{
		"subject": "Hello",
		"message": "<p>Hi</p>",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func seedEmailLog(t *testing.T, db *gorm.DB, messageID, leadType string) models.EmailLog {
	t.Helper()
	lead := seedLead(t, db, "Acme "+messageID, "a-"+messageID+"@example.com", leadType, true)
	emailLog := models.EmailLog{
		LeadID:    lead.ID,
		MessageID: messageID,
		LeadType:  leadType,
	}
	require.NoError(t, db.Create(&emailLog).Error)
	return emailLog
}

func TestOpenTracking(t *testing.T) {
	app, db := newEmailApp(t, "http://localhost:0")
	seedEmailLog(t, db, "msg-1", models.SourceShopify)

	token := utils.TrackingToken("msg-1", "test-secret")
	req := httptest.NewRequest(http.MethodGet, "/track/open/msg-1/"+token, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "gif")

	var emailLog models.EmailLog
	require.NoError(t, db.Where("message_id = ?", "msg-1").First(&emailLog).Error)
	assert.Equal(t, 1, emailLog.OpenCount)
	assert.NotNil(t, emailLog.OpenedAt)
}

func TestOpenTrackingRejectsForgedToken(t *testing.T) {
	app, db := newEmailApp(t, "http://localhost:0")
	seedEmailLog(t, db, "msg-1", models.SourceShopify)

	req := httptest.NewRequest(http.MethodGet, "/track/open/msg-1/forged-token-value00", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var emailLog models.EmailLog
	require.NoError(t, db.Where("message_id = ?", "msg-1").First(&emailLog).Error)
	assert.Zero(t, emailLog.OpenCount)
}

func TestClickTracking(t *testing.T) {
	app, db := newEmailApp(t, "http://localhost:0")
	emailLog := seedEmailLog(t, db, "msg-1", models.SourceShopify)

	token := utils.TrackingToken("msg-1", "test-secret")
	req := httptest.NewRequest(http.MethodGet,
		"/track/click/msg-1/"+token+"?url=https%3A%2F%2Fshop.example.com%2Foffer", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://shop.example.com/offer", resp.Header.Get("Location"))

	var fresh models.EmailLog
	require.NoError(t, db.First(&fresh, emailLog.ID).Error)
	assert.Equal(t, 1, fresh.ClickCount)

	var clicks []models.ClickEvent
	require.NoError(t, db.Find(&clicks).Error)
	require.Len(t, clicks, 1)
	assert.Equal(t, "https://shop.example.com/offer", clicks[0].URL)
}

func TestClickTrackingRequiresURL(t *testing.T) {
	app, db := newEmailApp(t, "http://localhost:0")
	seedEmailLog(t, db, "msg-1", models.SourceShopify)

	token := utils.TrackingToken("msg-1", "test-secret")
	req := httptest.NewRequest(http.MethodGet, "/track/click/msg-1/"+token, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTrackingStats(t *testing.T) {
	app, db := newEmailApp(t, "http://localhost:0")

	opened := seedEmailLog(t, db, "msg-1", models.SourceShopify)
	seedEmailLog(t, db, "msg-2", models.SourceShopify)
	seedEmailLog(t, db, "msg-3", models.SourceGoogleMaps)

	token := utils.TrackingToken(opened.MessageID, "test-secret")
	req := httptest.NewRequest(http.MethodGet, "/track/open/"+opened.MessageID+"/"+token, nil)
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	_, payload := doJSON(t, app, http.MethodGet, "/api/tracking/stats/all", nil)
	var total, openedCount int64
	require.NoError(t, json.Unmarshal(payload["totalEmailsSent"], &total))
	require.NoError(t, json.Unmarshal(payload["totalOpened"], &openedCount))
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), openedCount)

	_, payload = doJSON(t, app, http.MethodGet, "/api/tracking/stats/"+models.SourceGoogleMaps, nil)
	require.NoError(t, json.Unmarshal(payload["totalEmailsSent"], &total))
	assert.Equal(t, int64(1), total)

	var openRate float64
	_, payload = doJSON(t, app, http.MethodGet, "/api/tracking/stats/"+models.SourceShopify, nil)
	require.NoError(t, json.Unmarshal(payload["openRate"], &openRate))
	assert.InDelta(t, 50.0, openRate, 0.01)
}
