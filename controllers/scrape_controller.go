package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

type ScrapeController struct {
	DB      *gorm.DB
	Scraper *utils.ScraperClient
	Logger  *log.Logger
}

func NewScrapeController(db *gorm.DB, scraper *utils.ScraperClient, logger *log.Logger) *ScrapeController {
	return &ScrapeController{
		DB:      db,
		Scraper: scraper,
		Logger:  logger,
	}
}

// ScrapeShopify triggers a directory-site scraping job and stores the
// returned leads
func (sc *ScrapeController) ScrapeShopify(c *fiber.Ctx) error {
	var input struct {
		URL      string `json:"url" validate:"required,url"`
		MaxLeads int    `json:"maxLeads" validate:"omitempty,min=1,max=500"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.MaxLeads == 0 {
		input.MaxLeads = 50
	}

	scraped, err := sc.Scraper.ScrapeDirectory(c.Context(), input.URL, input.MaxLeads)
	if err != nil {
		utils.LogError("scrape_failed", err, map[string]interface{}{"url": input.URL})
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Scraping failed", err)
	}

	saved, leads, err := sc.storeScraped(scraped, models.SourceShopify, "", "")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store leads", err)
	}

	sc.Logger.Printf("Directory scrape stored %d/%d leads", saved, len(scraped))
	return c.JSON(fiber.Map{
		"success":        true,
		"leadsCollected": saved,
		"leads":          leads,
	})
}

// ScrapeGoogleMaps triggers a Google Maps scraping job and stores the
// returned leads
func (sc *ScrapeController) ScrapeGoogleMaps(c *fiber.Ctx) error {
	var input struct {
		SearchQuery string `json:"searchQuery" validate:"required,max=200"`
		Location    string `json:"location" validate:"required,max=200"`
		MaxLeads    int    `json:"maxLeads" validate:"omitempty,min=1,max=500"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.MaxLeads == 0 {
		input.MaxLeads = 50
	}

	scraped, err := sc.Scraper.ScrapeGoogleMaps(c.Context(), input.SearchQuery, input.Location, input.MaxLeads)
	if err != nil {
		utils.LogError("scrape_failed", err, map[string]interface{}{
			"search_query": input.SearchQuery,
			"location":     input.Location,
		})
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Scraping failed", err)
	}

	saved, leads, err := sc.storeScraped(scraped, models.SourceGoogleMaps, input.SearchQuery, input.Location)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store leads", err)
	}

	sc.Logger.Printf("Google Maps scrape stored %d/%d leads", saved, len(scraped))
	return c.JSON(fiber.Map{
		"success":        true,
		"leadsCollected": saved,
		"leads":          leads,
	})
}

// storeScraped persists scraped contacts, skipping records whose email is
// already in the table
func (sc *ScrapeController) storeScraped(scraped []utils.ScrapedLead, source, query, location string) (int, []models.Lead, error) {
	var stored []models.Lead

	for _, s := range scraped {
		if s.BusinessName == "" {
			continue
		}

		email := strings.ToLower(strings.TrimSpace(s.Email))
		if email != "" {
			var existing models.Lead
			if err := sc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
				continue
			}
		}

		lead := models.Lead{
			BusinessName: s.BusinessName,
			Email:        email,
			Phone:        s.Phone,
			Website:      s.Website,
			Address:      s.Address,
			Facebook:     s.Facebook,
			Instagram:    s.Instagram,
			Twitter:      s.Twitter,
			LinkedIn:     s.LinkedIn,
			Rating:       s.Rating,
			ReviewCount:  s.ReviewCount,
			Source:       source,
			SearchQuery:  query,
			Location:     location,
		}
		if err := sc.DB.Create(&lead).Error; err != nil {
			return len(stored), stored, err
		}
		stored = append(stored, lead)
	}

	return len(stored), stored, nil
}
