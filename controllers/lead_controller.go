package controller

import (
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewLeadController(db *gorm.DB, logger *log.Logger) *LeadController {
	return &LeadController{
		DB:     db,
		Logger: logger,
	}
}

// GetShopifyLeads returns the directory-scraped leads
func (lc *LeadController) GetShopifyLeads(c *fiber.Ctx) error {
	return lc.getLeadsBySource(c, models.SourceShopify)
}

// GetGoogleMapsLeads returns the Google Maps leads
func (lc *LeadController) GetGoogleMapsLeads(c *fiber.Ctx) error {
	return lc.getLeadsBySource(c, models.SourceGoogleMaps)
}

func (lc *LeadController) getLeadsBySource(c *fiber.Ctx, source string) error {
	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit > 500 {
		limit = 500
	}
	offset := (page - 1) * limit

	query := lc.DB.Model(&models.Lead{}).Where("source IN ?", sourcesFor(source))

	// Filters
	if email := c.Query("email"); email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}
	if name := c.Query("business"); name != "" {
		query = query.Where("business_name LIKE ?", "%"+name+"%")
	}
	switch c.Query("status") {
	case "contacted":
		query = query.Where("email_sent = ?", true)
	case "uncontacted":
		query = query.Where("email_sent = ?", false)
	}
	// Reusable snapshot so the count and the page share one filter set
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	var leads []models.Lead
	if err := query.Preload("FollowUp").Order("id").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"leads":   leads,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// Manual entries share the table with directory leads
func sourcesFor(source string) []string {
	if source == models.SourceShopify {
		return []string{models.SourceShopify, models.SourceManual}
	}
	return []string{source}
}

// GetLead returns a single lead by ID
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	var lead models.Lead
	if err := lc.DB.Preload("FollowUp").First(&lead, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// CreateLead adds a manually entered lead
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var input struct {
		BusinessName string `json:"business_name" validate:"required,max=200"`
		Email        string `json:"email" validate:"omitempty,email"`
		Phone        string `json:"phone" validate:"omitempty,max=40"`
		Website      string `json:"website" validate:"omitempty,url"`
		Address      string `json:"address" validate:"omitempty,max=300"`
		Note         string `json:"note"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Email != "" {
		if err := utils.ValidateLeadEmail(input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email validation failed", err)
		}

		// Check if lead already exists
		var existing models.Lead
		if err := lc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Lead with this email already exists", nil)
		}
	}

	lead := models.Lead{
		BusinessName: input.BusinessName,
		Email:        strings.ToLower(input.Email),
		Phone:        input.Phone,
		Website:      input.Website,
		Address:      input.Address,
		Note:         input.Note,
		Source:       models.SourceManual,
		IsManual:     true,
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	lc.Logger.Printf("Manual lead %d created (%s)", lead.ID, lead.BusinessName)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// UpdateLead updates the operator-editable fields of a lead, primarily the
// annotation note
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	var input struct {
		BusinessName *string `json:"business_name" validate:"omitempty,max=200"`
		Email        *string `json:"email" validate:"omitempty,email"`
		Phone        *string `json:"phone" validate:"omitempty,max=40"`
		Website      *string `json:"website" validate:"omitempty,url"`
		Address      *string `json:"address" validate:"omitempty,max=300"`
		Note         *string `json:"note"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	if input.Email != nil && *input.Email != "" && !strings.EqualFold(*input.Email, lead.Email) {
		if err := utils.ValidateLeadEmail(*input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email validation failed", err)
		}
		var existing models.Lead
		if err := lc.DB.Where("email = ?", strings.ToLower(*input.Email)).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Lead with this email already exists", nil)
		}
		lead.Email = strings.ToLower(*input.Email)
	}

	if input.BusinessName != nil {
		lead.BusinessName = *input.BusinessName
	}
	if input.Phone != nil {
		lead.Phone = *input.Phone
	}
	if input.Website != nil {
		lead.Website = *input.Website
	}
	if input.Address != nil {
		lead.Address = *input.Address
	}
	if input.Note != nil {
		lead.Note = *input.Note
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead removes a lead along with its follow-up tracking and email logs
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.FollowUp{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.EmailLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lead).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}

	lc.Logger.Printf("Lead %d deleted", lead.ID)
	return c.JSON(fiber.Map{"success": true})
}

// ClearShopifyLeads wipes all directory leads
func (lc *LeadController) ClearShopifyLeads(c *fiber.Ctx) error {
	return lc.clearLeadsBySource(c, models.SourceShopify)
}

// ClearGoogleMapsLeads wipes all Google Maps leads
func (lc *LeadController) ClearGoogleMapsLeads(c *fiber.Ctx) error {
	return lc.clearLeadsBySource(c, models.SourceGoogleMaps)
}

func (lc *LeadController) clearLeadsBySource(c *fiber.Ctx, source string) error {
	var ids []uint
	if err := lc.DB.Model(&models.Lead{}).Where("source IN ?", sourcesFor(source)).Pluck("id", &ids).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	if len(ids) > 0 {
		err := lc.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("lead_id IN ?", ids).Delete(&models.FollowUp{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lead_id IN ?", ids).Delete(&models.EmailLog{}).Error; err != nil {
				return err
			}
			return tx.Where("id IN ?", ids).Delete(&models.Lead{}).Error
		})
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear leads", err)
		}
	}

	lc.Logger.Printf("Cleared %d %s leads", len(ids), source)
	return c.JSON(fiber.Map{"success": true, "deleted": len(ids)})
}

// ExportShopifyLeads exports directory leads to CSV
func (lc *LeadController) ExportShopifyLeads(c *fiber.Ctx) error {
	return lc.exportLeads(c, models.SourceShopify, "leads")
}

// ExportGoogleMapsLeads exports Google Maps leads to CSV
func (lc *LeadController) ExportGoogleMapsLeads(c *fiber.Ctx) error {
	return lc.exportLeads(c, models.SourceGoogleMaps, "google_maps_leads")
}

func (lc *LeadController) exportLeads(c *fiber.Ctx, source, filePrefix string) error {
	var leads []models.Lead
	if err := lc.DB.Where("source IN ?", sourcesFor(source)).Order("id").Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename="+filePrefix+"_"+time.Now().Format("20060102")+".csv")

	writer := csv.NewWriter(c)
	defer writer.Flush()

	header := []string{"business_name", "email", "phone", "website", "address", "rating", "reviews", "email_sent", "note"}
	if err := writer.Write(header); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
	}

	for _, lead := range leads {
		record := []string{
			lead.BusinessName,
			lead.Email,
			lead.Phone,
			lead.Website,
			lead.Address,
			strconv.FormatFloat(lead.Rating, 'f', 1, 64),
			strconv.Itoa(lead.ReviewCount),
			fmt.Sprintf("%t", lead.EmailSent),
			lead.Note,
		}
		if err := writer.Write(record); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
		}
	}

	return nil
}
