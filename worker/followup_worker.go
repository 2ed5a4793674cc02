package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	controller "github.com/Nazmul246/SLS-Lead-Collector/controllers"
	"github.com/Nazmul246/SLS-Lead-Collector/followup"
)

// FollowUpWorker sweeps the follow-up tracking table and keeps the overdue
// notification board current.
type FollowUpWorker struct {
	DB     *gorm.DB
	Board  *followup.Board
	Clock  followup.Clock
	Logger *log.Logger
}

func NewFollowUpWorker(db *gorm.DB, board *followup.Board, clock followup.Clock, logger *log.Logger) *FollowUpWorker {
	return &FollowUpWorker{
		DB:     db,
		Board:  board,
		Clock:  clock,
		Logger: logger,
	}
}

func (fw *FollowUpWorker) Start(ctx context.Context) {
	fw.Logger.Println("Follow-up worker started")

	// First sweep right away so the badge is populated at startup
	fw.sweep()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fw.Logger.Println("Follow-up worker shutting down...")
			return
		case <-ticker.C:
			fw.sweep()
		}
	}
}

func (fw *FollowUpWorker) sweep() {
	tracked, err := controller.LoadTrackedLeads(fw.DB)
	if err != nil {
		fw.Logger.Printf("Error fetching follow-up rows: %v", err)
		return
	}

	entries := followup.Scan(tracked, fw.Clock.Now())
	fw.Board.Update(entries)

	if len(entries) > 0 {
		fw.Logger.Printf("%d overdue follow-up(s) pending", len(entries))
	}
}
