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

	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

func newScrapeApp(t *testing.T, scraperURL string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	scraper := utils.NewScraperClient(scraperURL, log.New(io.Discard, "", 0))
	sc := NewScrapeController(db, scraper, log.New(io.Discard, "", 0))

	app := fiber.New()
	app.Post("/api/scrape", sc.ScrapeShopify)
	app.Post("/api/scrape-google-maps", sc.ScrapeGoogleMaps)

	return app, db
}

func stubScraper(t *testing.T, leads []utils.ScrapedLead) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"leads":   leads,
		}))
	}))
}

func TestScrapeShopifyStoresLeads(t *testing.T) {
	scraper := stubScraper(t, []utils.ScrapedLead{
		{BusinessName: "Acme Candles", Email: "Owner@Acme.example", Website: "https://acme.example"},
		{BusinessName: "", Email: "nameless@example.com"},
		{BusinessName: "Bravo Bakery", Phone: "+1 555 0101"},
	})
	defer scraper.Close()

	app, db := newScrapeApp(t, scraper.URL)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/scrape", fiber.Map{
		"url": "https://directory.example.com/stores",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var collected int
	require.NoError(t, json.Unmarshal(payload["leadsCollected"], &collected))
	// The record without a business name is dropped
	assert.Equal(t, 2, collected)

	var leads []models.Lead
	require.NoError(t, db.Order("id").Find(&leads).Error)
	require.Len(t, leads, 2)
	assert.Equal(t, "Acme Candles", leads[0].BusinessName)
	assert.Equal(t, "owner@acme.example", leads[0].Email)
	assert.Equal(t, models.SourceShopify, leads[0].Source)
	assert.Equal(t, "Bravo Bakery", leads[1].BusinessName)
}

func TestScrapeSkipsDuplicateEmails(t *testing.T) {
	scraper := stubScraper(t, []utils.ScrapedLead{
		{BusinessName: "Acme Again", Email: "owner@acme.example"},
	})
	defer scraper.Close()

	app, db := newScrapeApp(t, scraper.URL)
	seedLead(t, db, "Acme Candles", "owner@acme.example", models.SourceShopify, false)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/scrape", fiber.Map{
		"url": "https://directory.example.com/stores",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var collected int
	require.NoError(t, json.Unmarshal(payload["leadsCollected"], &collected))
	assert.Zero(t, collected)

	var count int64
	db.Model(&models.Lead{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestScrapeGoogleMapsRecordsProvenance(t *testing.T) {
	scraper := stubScraper(t, []utils.ScrapedLead{
		{BusinessName: "Plumbers R Us", Phone: "+1 555 0102", Rating: 4.5, ReviewCount: 120},
	})
	defer scraper.Close()

	app, db := newScrapeApp(t, scraper.URL)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/scrape-google-maps", fiber.Map{
		"searchQuery": "plumbers",
		"location":    "Austin, TX",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lead models.Lead
	require.NoError(t, db.First(&lead).Error)
	assert.Equal(t, models.SourceGoogleMaps, lead.Source)
	assert.Equal(t, "plumbers", lead.SearchQuery)
	assert.Equal(t, "Austin, TX", lead.Location)
	assert.InDelta(t, 4.5, lead.Rating, 0.001)
	assert.Equal(t, 120, lead.ReviewCount)
}

func TestScrapeValidatesInput(t *testing.T) {
	app, _ := newScrapeApp(t, "http://localhost:0")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/scrape", fiber.Map{
		"url": "not a url",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/scrape-google-maps", fiber.Map{
		"location": "Austin, TX",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScrapeSurfacesScraperFailure(t *testing.T) {
	scraper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"browser crashed"}`))
	}))
	defer scraper.Close()

	app, _ := newScrapeApp(t, scraper.URL)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/scrape", fiber.Map{
		"url": "https://directory.example.com/stores",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
