package models

import (
	"time"

	"gorm.io/gorm"
)

// Event status lifecycle: draft -> published -> closed.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusClosed    = "closed"
)

// Event is a single sail an owner needs crew for.
type Event struct {
	gorm.Model
	OwnerID uint `gorm:"not null;index" json:"owner_id"`
	BoatID  uint `gorm:"not null;index" json:"boat_id"`

	Title        string    `gorm:"not null" json:"title"`
	EventType    string    `json:"event_type"` // race, cruise, delivery, ...
	LocationText string    `json:"location_text"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`

	Status string `gorm:"default:'draft'" json:"status"`

	// Capacity target. Nil means uncapped: no enforcement.
	CrewRequired *int `json:"crew_required"`

	Paid                  bool   `gorm:"default:false" json:"paid"`
	CompensationNotes     string `json:"compensation_notes"`
	AccommodationProvided bool   `gorm:"default:false" json:"accommodation_provided"`

	// Relations
	Boat         *Boat         `json:"boat,omitempty"`
	Applications []Application `gorm:"foreignKey:EventID" json:"applications,omitempty"`
}

// IsValidEventStatus reports whether s is a known event status.
func IsValidEventStatus(s string) bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusClosed:
		return true
	}
	return false
}

// CanChangeEventStatus enforces the one-way event lifecycle. Closed is
// terminal; draft may not be re-entered once published.
func CanChangeEventStatus(current, next string) bool {
	switch current {
	case EventStatusDraft:
		return next == EventStatusPublished || next == EventStatusClosed
	case EventStatusPublished:
		return next == EventStatusClosed
	default:
		return false
	}
}

// SpotsLeft computes remaining capacity given the accepted-crew count.
// A nil crewRequired means the event is uncapped and the second return is
// false. Filled beyond capacity (the owner lowered crew_required after
// accepting) clamps to zero rather than going negative.
func SpotsLeft(crewRequired *int, filled int) (int, bool) {
	if crewRequired == nil {
		return 0, false
	}
	left := *crewRequired - filled
	if left < 0 {
		left = 0
	}
	return left, true
}

// FilledCount counts distinct accepted sailors for an event. A sailor with
// more than one accepted row still occupies a single spot.
func FilledCount(db *gorm.DB, eventID uint) (int, error) {
	var filled int64
	err := db.Model(&Application{}).
		Where("event_id = ? AND status = ?", eventID, ApplicationStatusAccepted).
		Distinct("sailor_id").
		Count(&filled).Error
	return int(filled), err
}

// FilledCounts is the list-page variant of FilledCount: one grouped query
// for a whole set of events. Events with no accepted crew are simply absent
// from the map.
func FilledCounts(db *gorm.DB, eventIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID uint
		Filled  int
	}
	err := db.Model(&Application{}).
		Select("event_id, COUNT(DISTINCT sailor_id) AS filled").
		Where("event_id IN ? AND status = ?", eventIDs, ApplicationStatusAccepted).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.EventID] = row.Filled
	}
	return counts, nil
}
