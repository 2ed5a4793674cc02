package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/followup"
	"github.com/Nazmul246/SLS-Lead-Collector/models"
	"github.com/Nazmul246/SLS-Lead-Collector/utils"
)

type FollowUpController struct {
	DB     *gorm.DB
	Board  *followup.Board
	Ticker *followup.Ticker
	Clock  followup.Clock
	Logger *log.Logger
}

func NewFollowUpController(db *gorm.DB, board *followup.Board, ticker *followup.Ticker, clock followup.Clock, logger *log.Logger) *FollowUpController {
	return &FollowUpController{
		DB:     db,
		Board:  board,
		Ticker: ticker,
		Clock:  clock,
		Logger: logger,
	}
}

// loadFollowUp fetches the lead's follow-up row, creating the all-unset
// default lazily on first interaction
func (fc *FollowUpController) loadFollowUp(leadID uint) (*models.FollowUp, error) {
	var row models.FollowUp
	err := fc.DB.Where("lead_id = ?", leadID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		row = models.FollowUp{LeadID: leadID}
		if err := fc.DB.Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (fc *FollowUpController) findLead(c *fiber.Ctx) (*models.Lead, error) {
	var lead models.Lead
	if err := fc.DB.First(&lead, "id = ?", c.Params("id")).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetFollowUp returns the follow-up aggregate for a lead
func (fc *FollowUpController) GetFollowUp(c *fiber.Ctx) error {
	lead, err := fc.findLead(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	row, err := fc.loadFollowUp(lead.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load follow-up tracking", err)
	}

	return c.JSON(utils.SuccessResponse(row.ToTracking()))
}

// mutate runs one tracker operation against a lead's aggregate. The local
// transform always succeeds or fails as a whole before the persistence
// write; a failed write is surfaced but the new state is still returned
// (optimistic update, no rollback).
func (fc *FollowUpController) mutate(c *fiber.Ctx, op func(*followup.Tracker) error) error {
	lead, err := fc.findLead(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	row, err := fc.loadFollowUp(lead.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load follow-up tracking", err)
	}

	persisted := true
	tracker := followup.NewTracker(row.ToTracking(), func(tracking followup.Tracking) {
		row.ApplyTracking(tracking)
		if err := fc.DB.Save(row).Error; err != nil {
			persisted = false
			utils.LogError("followup_persist_failed", err, map[string]interface{}{
				"lead_id": lead.ID,
			})
		}
	})

	if err := op(tracker); err != nil {
		switch err {
		case followup.ErrInitialAlreadySent, followup.ErrInitialNotSent:
			return utils.ErrorResponse(c, fiber.StatusConflict, err.Error(), nil)
		case followup.ErrUnknownStage:
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Follow-up update failed", err)
	}

	// Keep the notification badge fresh without waiting for the next
	// worker sweep
	fc.refreshBoard()

	return c.JSON(fiber.Map{
		"success":   true,
		"persisted": persisted,
		"data":      tracker.Tracking(),
	})
}

// MarkInitialSent records the initial outreach email and starts the cadence
func (fc *FollowUpController) MarkInitialSent(c *fiber.Ctx) error {
	return fc.mutate(c, func(t *followup.Tracker) error {
		return t.MarkInitialSent(fc.Clock.Now())
	})
}

// MarkFollowUpSent records one follow-up stage as sent
func (fc *FollowUpController) MarkFollowUpSent(c *fiber.Ctx) error {
	stage, err := followup.ParseStage(c.Params("stage"))
	if err != nil || stage == followup.StageInitial {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown follow-up stage", nil)
	}

	return fc.mutate(c, func(t *followup.Tracker) error {
		return t.MarkFollowUpSent(stage, fc.Clock.Now())
	})
}

// ResetFollowUp restores the all-unset default aggregate
func (fc *FollowUpController) ResetFollowUp(c *fiber.Ctx) error {
	return fc.mutate(c, func(t *followup.Tracker) error {
		return t.Reset()
	})
}

// GetOverdueNotifications returns the current overdue badge contents
func (fc *FollowUpController) GetOverdueNotifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"count":   fc.Board.Count(),
		"entries": fc.Board.Entries(),
	})
}

// FocusLead signals the dashboard to open a lead from a notification
func (fc *FollowUpController) FocusLead(c *fiber.Ctx) error {
	var input struct {
		LeadID string `json:"leadId" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	fc.Board.Focus(input.LeadID)
	return c.JSON(fiber.Map{"success": true})
}

// GetFocusedLead returns and consumes the focus signal
func (fc *FollowUpController) GetFocusedLead(c *fiber.Ctx) error {
	leadID := fc.Board.Focused()
	fc.Board.ClearFocus()
	return c.JSON(fiber.Map{
		"success": true,
		"leadId":  leadID,
	})
}

// refreshBoard rescans all tracking rows immediately
func (fc *FollowUpController) refreshBoard() {
	tracked, err := LoadTrackedLeads(fc.DB)
	if err != nil {
		fc.Logger.Printf("Board refresh failed: %v", err)
		return
	}
	fc.Board.Update(followup.Scan(tracked, fc.Clock.Now()))
}

// LoadTrackedLeads collects every lead that has a follow-up row, in lead id
// order, for the overdue scan
func LoadTrackedLeads(db *gorm.DB) ([]followup.TrackedLead, error) {
	var rows []models.FollowUp
	if err := db.Order("lead_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LeadID)
	}

	var leads []models.Lead
	if err := db.Where("id IN ?", ids).Find(&leads).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(leads))
	for _, lead := range leads {
		names[lead.ID] = lead.BusinessName
	}

	tracked := make([]followup.TrackedLead, 0, len(rows))
	for _, row := range rows {
		tracked = append(tracked, followup.TrackedLead{
			ID:       strconv.FormatUint(uint64(row.LeadID), 10),
			Name:     names[row.LeadID],
			Tracking: row.ToTracking(),
		})
	}
	return tracked, nil
}

// countdownFrame is one WebSocket update for a lead's three stages
type countdownFrame struct {
	LeadID string                        `json:"leadId"`
	Stages map[string]followup.Countdown `json:"stages"`
}

// HandleCountdownWS streams per-second countdowns for one lead's follow-up
// stages while the socket stays open. The ticker subscription is scoped to
// the connection: subscribe on open, unsubscribe on close.
func (fc *FollowUpController) HandleCountdownWS(conn *websocket.Conn) {
	defer conn.Close()

	// Same existence gate as the HTTP endpoints; a stream for an unknown
	// lead must not lazily create a tracking row
	id, err := strconv.ParseUint(conn.Params("id"), 10, 32)
	if err != nil {
		fc.Logger.Printf("Countdown stream rejected: bad lead id %q", conn.Params("id"))
		_ = conn.WriteJSON(fiber.Map{"error": "Invalid lead id"})
		return
	}
	leadID := uint(id)

	var lead models.Lead
	if err := fc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		fc.Logger.Printf("Countdown stream rejected: lead %d not found", leadID)
		_ = conn.WriteJSON(fiber.Map{"error": "Lead not found"})
		return
	}

	row, err := fc.loadFollowUp(leadID)
	if err != nil {
		fc.Logger.Printf("Countdown stream rejected for lead %d: %v", leadID, err)
		return
	}

	subID, ticks := fc.Ticker.Subscribe()
	defer fc.Ticker.Unsubscribe(subID)

	// Detect the client going away; ReadMessage fails on close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case now := <-ticks:
			tracking := row.ToTracking()
			frame := countdownFrame{
				LeadID: strconv.FormatUint(uint64(leadID), 10),
				Stages: map[string]followup.Countdown{},
			}
			for _, stage := range []followup.Stage{followup.StageFirst, followup.StageSecond, followup.StageThird} {
				st, _ := tracking.FollowUpStage(stage)
				if st.DueDate == nil || st.Sent {
					continue
				}
				frame.Stages[string(stage)] = followup.Describe(*st.DueDate, now)
			}

			if err := conn.WriteJSON(frame); err != nil {
				return
			}

			// Pick up mutations made while the stream is open
			if fresh, err := fc.loadFollowUp(leadID); err == nil {
				row = fresh
			}
		}
	}
}
