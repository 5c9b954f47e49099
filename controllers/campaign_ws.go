package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"outreachly/models"
	"outreachly/utils"
)

// ProgressEvent is pushed to subscribers after every send attempt
type ProgressEvent struct {
	CampaignID uint   `json:"campaign_id"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Total      int    `json:"total"`
	Status     string `json:"status"`
}

// ProgressHub fans dispatch progress out to websocket subscribers
type ProgressHub struct {
	mu          sync.Mutex
	subscribers map[uint]map[*websocket.Conn]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subscribers: map[uint]map[*websocket.Conn]struct{}{},
	}
}

func (h *ProgressHub) subscribe(campaignID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[campaignID] == nil {
		h.subscribers[campaignID] = map[*websocket.Conn]struct{}{}
	}
	h.subscribers[campaignID][conn] = struct{}{}
}

func (h *ProgressHub) unsubscribe(campaignID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers[campaignID], conn)
	if len(h.subscribers[campaignID]) == 0 {
		delete(h.subscribers, campaignID)
	}
}

// Broadcast sends an event to everyone watching the campaign. Write
// failures drop the offending connection and never block the dispatch loop.
func (h *ProgressHub) Broadcast(event ProgressEvent) {
	if h == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subscribers[event.CampaignID] {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("progress write failed: %v", err)
			conn.Close()
			delete(h.subscribers[event.CampaignID], conn)
		}
	}
}

// HandleProgressWS keeps a connection subscribed to one campaign's
// dispatch progress until the client disconnects. The upgrade runs
// through the auth middleware, and the campaign must belong to the
// caller; anything else closes the connection immediately.
func (cc *CampaignController) HandleProgressWS(c *websocket.Conn) {
	defer c.Close()

	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return
	}

	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 || !cc.ownsCampaign(user, campaignID) {
		return
	}

	cc.Hub.subscribe(campaignID, c)
	defer cc.Hub.unsubscribe(campaignID, c)

	// Block until the client goes away
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (cc *CampaignController) ownsCampaign(user *models.User, campaignID uint) bool {
	var count int64
	if err := cc.DB.Model(&models.Campaign{}).
		Where("id = ? AND user_id = ?", campaignID, user.ID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
