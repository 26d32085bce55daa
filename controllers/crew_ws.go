package controller

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"crewmatch/config"
	"crewmatch/models"
	"crewmatch/utils"
)

// crewHub fans crew-board change notifications out to connected owners so
// the board refreshes without polling.
type crewHub struct {
	mu    sync.Mutex
	conns map[uint]map[*websocket.Conn]struct{} // eventID -> connections
}

// CrewBoardHub is the process-wide hub; application transitions broadcast
// through it.
var CrewBoardHub = &crewHub{conns: map[uint]map[*websocket.Conn]struct{}{}}

type crewBoardMessage struct {
	EventID uint   `json:"event_id"`
	Change  string `json:"change"`
	At      string `json:"at"`
}

func (h *crewHub) subscribe(eventID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[eventID] == nil {
		h.conns[eventID] = map[*websocket.Conn]struct{}{}
	}
	h.conns[eventID][conn] = struct{}{}
}

func (h *crewHub) unsubscribe(eventID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[eventID], conn)
	if len(h.conns[eventID]) == 0 {
		delete(h.conns, eventID)
	}
}

// Broadcast pushes a change notification to every watcher of an event.
// Dead connections are dropped on write failure.
func (h *crewHub) Broadcast(eventID uint, change string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := crewBoardMessage{
		EventID: eventID,
		Change:  change,
		At:      time.Now().UTC().Format(time.RFC3339),
	}
	for conn := range h.conns[eventID] {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(h.conns[eventID], conn)
		}
	}
}

// HandleCrewBoardWS keeps a connection subscribed to one event's crew board
// until the client goes away. The route sits behind Protected(), and only
// the event's owner may watch the board.
func HandleCrewBoardWS(c *websocket.Conn) {
	defer c.Close()

	eventID := utils.ParseUint(c.Params("id"))
	if eventID == 0 {
		return
	}

	profile, ok := c.Locals("profile").(*models.Profile)
	if !ok {
		return
	}
	var event models.Event
	if err := config.DB.Where("id = ? AND owner_id = ?", eventID, profile.UserID).
		First(&event).Error; err != nil {
		return
	}

	CrewBoardHub.subscribe(eventID, c)
	defer CrewBoardHub.unsubscribe(eventID, c)

	for {
		// Reads only notice disconnects; clients never send payloads
		if _, _, err := c.ReadMessage(); err != nil {
			log.Printf("crew board ws closed for event %d: %v", eventID, err)
			return
		}
	}
}
