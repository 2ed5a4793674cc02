package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// ScrapedLead is one contact record returned by the scraper service
type ScrapedLead struct {
	BusinessName string  `json:"businessName"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	Address      string  `json:"address"`
	Facebook     string  `json:"facebook"`
	Instagram    string  `json:"instagram"`
	Twitter      string  `json:"twitter"`
	LinkedIn     string  `json:"linkedin"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"reviewCount"`
}

// ScraperClient talks to the external scraping service over HTTP. Scraping
// itself (headless browser, parsing) lives entirely on that side.
type ScraperClient struct {
	http   *resty.Client
	Logger *log.Logger
}

func NewScraperClient(baseURL string, logger *log.Logger) *ScraperClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Minute). // scraping jobs are slow
		SetRetryCount(2)

	return &ScraperClient{http: client, Logger: logger}
}

type scrapeResponse struct {
	Success bool          `json:"success"`
	Leads   []ScrapedLead `json:"leads"`
	Error   string        `json:"error"`
}

// ScrapeDirectory runs a directory-site scrape (Shopify store listings)
func (sc *ScraperClient) ScrapeDirectory(ctx context.Context, url string, maxLeads int) ([]ScrapedLead, error) {
	var result scrapeResponse
	res, err := sc.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"url": url, "maxLeads": maxLeads}).
		SetResult(&result).
		Post("/scrape")
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	if res.IsError() || !result.Success {
		return nil, fmt.Errorf("scraper error: %s", scrapeErrorDetail(res.StatusCode(), result.Error))
	}

	sc.Logger.Printf("Directory scrape returned %d leads", len(result.Leads))
	return result.Leads, nil
}

// ScrapeGoogleMaps runs a Google Maps business search scrape
func (sc *ScraperClient) ScrapeGoogleMaps(ctx context.Context, query, location string, maxLeads int) ([]ScrapedLead, error) {
	var result scrapeResponse
	res, err := sc.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"searchQuery": query,
			"location":    location,
			"maxLeads":    maxLeads,
		}).
		SetResult(&result).
		Post("/scrape-google-maps")
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	if res.IsError() || !result.Success {
		return nil, fmt.Errorf("scraper error: %s", scrapeErrorDetail(res.StatusCode(), result.Error))
	}

	sc.Logger.Printf("Google Maps scrape returned %d leads for %q in %q", len(result.Leads), query, location)
	return result.Leads, nil
}

func scrapeErrorDetail(status int, message string) string {
	if message == "" {
		return fmt.Sprintf("status %d", status)
	}
	return message
}
