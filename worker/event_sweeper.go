package worker

import (
	"context"
	"log"
	"time"

	"crewmatch/models"

	"gorm.io/gorm"
)

// EventSweeper closes published events whose end date has passed, so the
// discovery feed only ever shows sails that can still be joined.
type EventSweeper struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEventSweeper(db *gorm.DB, logger *log.Logger) *EventSweeper {
	return &EventSweeper{
		DB:     db,
		Logger: logger,
	}
}

func (es *EventSweeper) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	es.Logger.Println("Event sweeper started")

	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	es.sweepExpiredEvents()

	for {
		select {
		case <-ctx.Done():
			es.Logger.Println("Event sweeper shutting down...")
			return
		case <-ticker.C:
			es.sweepExpiredEvents()
		}
	}
}

func (es *EventSweeper) sweepExpiredEvents() {
	res := es.DB.Model(&models.Event{}).
		Where("status = ? AND end_date > ? AND end_date < ?", models.EventStatusPublished, time.Time{}, time.Now()).
		Update("status", models.EventStatusClosed)
	if res.Error != nil {
		es.Logger.Printf("Error sweeping expired events: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		es.Logger.Printf("Closed %d expired events", res.RowsAffected)
	}
}
