package gateway

import (
	"fmt"
	"strings"
)

// SelectRequest is the payload for POST /store/select.
type SelectRequest struct {
	MenuID string `json:"menu_id"`
	Item   string `json:"item"`
}

func (r SelectRequest) Validate() error {
	if strings.TrimSpace(r.MenuID) == "" {
		return fmt.Errorf("menu_id is required")
	}
	if strings.TrimSpace(r.Item) == "" {
		return fmt.Errorf("item is required")
	}
	return nil
}

// MessageRequest is the payload for POST /sessions/{sessionID}/message: an
// inbound direct message from the buyer, normally their account name.
type MessageRequest struct {
	Content string `json:"content"`
}

func (r MessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}
