package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/config"
	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

type EmailController struct {
	DB     *gorm.DB
	Mailer *utils.MailerClient
	Logger *log.Logger
}

func NewEmailController(db *gorm.DB, mailer *utils.MailerClient, logger *log.Logger) *EmailController {
	return &EmailController{
		DB:     db,
		Mailer: mailer,
		Logger: logger,
	}
}

// SendEmails sends the composed template to every uncontacted lead of the
// requested type that has a usable email address
func (ec *EmailController) SendEmails(c *fiber.Ctx) error {
	var input struct {
		Subject   string `json:"subject" validate:"required,max=300"`
		Message   string `json:"message" validate:"required"`
		LeadsType string `json:"leadsType" validate:"omitempty,oneof=google-maps shopify"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.LeadsType == "" {
		input.LeadsType = models.SourceShopify
	}

	var leads []models.Lead
	if err := ec.DB.Where("source IN ? AND email_sent = ? AND email <> ''", sourcesFor(input.LeadsType), false).
		Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	if len(leads) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No unsent leads with email addresses found", nil)
	}

	sent, failed := 0, 0
	for _, lead := range leads {
		if err := ec.sendToLead(c, lead, input.Subject, input.Message, input.LeadsType); err != nil {
			utils.LogError("email_send_failed", err, map[string]interface{}{
				"lead_id": lead.ID,
				"email":   lead.Email,
			})
			failed++
			continue
		}
		sent++
	}

	ec.Logger.Printf("Bulk send finished: %d sent, %d failed", sent, failed)
	return c.JSON(fiber.Map{
		"success": true,
		"sent":    sent,
		"failed":  failed,
	})
}

func (ec *EmailController) sendToLead(c *fiber.Ctx, lead models.Lead, subject, message, leadType string) error {
	messageID := utils.NewMessageID()
	secret := config.AppConfig.TrackingSecret
	baseURL := config.AppConfig.TrackingBaseURL

	html := renderTemplate(message, lead)
	html = utils.InjectTracking(html, baseURL, messageID, secret)

	err := ec.Mailer.Send(c.Context(), utils.SendEmailRequest{
		To:      lead.Email,
		Subject: renderTemplate(subject, lead),
		HTML:    html,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	emailLog := models.EmailLog{
		LeadID:    lead.ID,
		MessageID: messageID,
		LeadType:  leadType,
		Subject:   subject,
		SentAt:    &now,
	}
	if err := ec.DB.Create(&emailLog).Error; err != nil {
		return err
	}

	return ec.DB.Model(&models.Lead{}).Where("id = ?", lead.ID).
		Updates(map[string]interface{}{
			"email_sent":    true,
			"email_sent_at": now,
		}).Error
}

// renderTemplate substitutes lead fields into the composed message
func renderTemplate(text string, lead models.Lead) string {
	replacer := strings.NewReplacer(
		"{{businessName}}", lead.BusinessName,
		"{{website}}", lead.Website,
		"{{address}}", lead.Address,
	)
	return replacer.Replace(text)
}

// HandleOpenTracking serves the tracking pixel and records the open
func (ec *EmailController) HandleOpenTracking(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	token := c.Params("token")

	if !utils.VerifyTrackingToken(messageID, config.AppConfig.TrackingSecret, token) {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid token")
	}

	ec.DB.Model(&models.EmailLog{}).
		Where("message_id = ?", messageID).
		Updates(map[string]interface{}{
			"open_count": gorm.Expr("open_count + 1"),
			"opened_at":  time.Now(),
		})

	return c.Type("gif").Send(transparentPixel())
}

// HandleClickTracking records the click and redirects to the original URL
func (ec *EmailController) HandleClickTracking(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	token := c.Params("token")
	originalURL := c.Query("url")

	if !utils.VerifyTrackingToken(messageID, config.AppConfig.TrackingSecret, token) {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid token")
	}
	if originalURL == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing url")
	}

	var emailLog models.EmailLog
	if err := ec.DB.Where("message_id = ?", messageID).First(&emailLog).Error; err == nil {
		now := time.Now()
		ec.DB.Model(&emailLog).Updates(map[string]interface{}{
			"click_count": gorm.Expr("click_count + 1"),
			"clicked_at":  now,
		})
		ec.DB.Create(&models.ClickEvent{
			EmailLogID: emailLog.ID,
			URL:        originalURL,
			ClickedAt:  now,
		})
	}

	return c.Redirect(originalURL, fiber.StatusFound)
}

// GetTrackingStats aggregates engagement counters, optionally filtered by
// lead type
func (ec *EmailController) GetTrackingStats(c *fiber.Ctx) error {
	leadType := c.Params("leadType", "all")

	scoped := func() *gorm.DB {
		q := ec.DB.Model(&models.EmailLog{})
		if leadType != "all" {
			q = q.Where("lead_type = ?", leadType)
		}
		return q
	}

	var totalSent, totalOpened, totalClicked int64
	if err := scoped().Count(&totalSent).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tracking stats", err)
	}
	if err := scoped().Where("opened_at IS NOT NULL").Count(&totalOpened).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tracking stats", err)
	}
	if err := scoped().Where("clicked_at IS NOT NULL").Count(&totalClicked).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tracking stats", err)
	}

	openRate, clickRate := 0.0, 0.0
	if totalSent > 0 {
		openRate = float64(totalOpened) / float64(totalSent) * 100
		clickRate = float64(totalClicked) / float64(totalSent) * 100
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"totalEmailsSent": totalSent,
		"totalOpened":     totalOpened,
		"totalClicked":    totalClicked,
		"openRate":        openRate,
		"clickRate":       clickRate,
	})
}

func transparentPixel() []byte {
	// 1x1 transparent GIF
	return []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
		0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21,
		0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
		0x01, 0x00, 0x3b,
	}
}
