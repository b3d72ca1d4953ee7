package gateway

import (
	"passgate/internal/catalog"
	"passgate/internal/purchase"
)

// MenuResponse lists the catalog for the buyer's selection menu.
type MenuResponse struct {
	MenuID string   `json:"menu_id"`
	Items  []string `json:"items"`
}

// SessionResponse describes a purchase session to the chat adapter.
type SessionResponse struct {
	SessionID   string `json:"session_id"`
	Item        string `json:"item"`
	GamePassID  string `json:"gamepass_id"`
	PurchaseURL string `json:"purchase_url"`
	Status      string `json:"status"`
}

// AckResponse acknowledges an event that has no payload to return.
type AckResponse struct {
	Status string `json:"status"`
}

func fromSession(s *purchase.Session) SessionResponse {
	return SessionResponse{
		SessionID:   s.ID,
		Item:        s.Item.Name,
		GamePassID:  s.Item.GamePassID,
		PurchaseURL: s.Item.PurchaseURL(),
		Status:      string(s.Status()),
	}
}

func menuResponse(menuID string, items []catalog.Item) MenuResponse {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return MenuResponse{MenuID: menuID, Items: names}
}
