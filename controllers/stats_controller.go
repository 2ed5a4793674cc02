package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

type StatsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStatsController(db *gorm.DB, logger *log.Logger) *StatsController {
	return &StatsController{
		DB:     db,
		Logger: logger,
	}
}

// GetShopifyStats returns the dashboard counters for directory leads
func (st *StatsController) GetShopifyStats(c *fiber.Ctx) error {
	return st.getStatsBySource(c, models.SourceShopify)
}

// GetGoogleMapsStats returns the dashboard counters for Google Maps leads
func (st *StatsController) GetGoogleMapsStats(c *fiber.Ctx) error {
	return st.getStatsBySource(c, models.SourceGoogleMaps)
}

func (st *StatsController) getStatsBySource(c *fiber.Ctx, source string) error {
	sources := sourcesFor(source)
	base := st.DB.Model(&models.Lead{}).Where("source IN ?", sources)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stats", err)
	}

	var withEmail, withPhone, withWebsite, emailsSent int64
	st.DB.Model(&models.Lead{}).Where("source IN ? AND email <> ''", sources).Count(&withEmail)
	st.DB.Model(&models.Lead{}).Where("source IN ? AND phone <> ''", sources).Count(&withPhone)
	st.DB.Model(&models.Lead{}).Where("source IN ? AND website <> ''", sources).Count(&withWebsite)
	st.DB.Model(&models.Lead{}).Where("source IN ? AND email_sent = ?", sources, true).Count(&emailsSent)

	return c.JSON(fiber.Map{
		"success":     true,
		"total":       total,
		"withEmail":   withEmail,
		"withPhone":   withPhone,
		"withWebsite": withWebsite,
		"emailsSent":  emailsSent,
	})
}
