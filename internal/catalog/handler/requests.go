package handler

import (
	"fmt"
	"strings"

	"passgate/internal/catalog"
)

// AddItemRequest is the payload for POST /admin/items.
type AddItemRequest struct {
	Name       string `json:"name"`
	GamePassID string `json:"gamepass_id"`
	FileURL    string `json:"file_url"`
}

func (r AddItemRequest) Validate() error {
	return r.toItem().Validate()
}

func (r AddItemRequest) toItem() catalog.Item {
	return catalog.Item{
		Name:       strings.TrimSpace(r.Name),
		GamePassID: strings.TrimSpace(r.GamePassID),
		FileURL:    strings.TrimSpace(r.FileURL),
	}
}

// EditItemRequest is the payload for PATCH /admin/items/{name}. Omitted
// fields are left unchanged.
type EditItemRequest struct {
	GamePassID *string `json:"gamepass_id,omitempty"`
	FileURL    *string `json:"file_url,omitempty"`
}

func (r EditItemRequest) Validate() error {
	if r.GamePassID != nil && strings.TrimSpace(*r.GamePassID) == "" {
		return fmt.Errorf("gamepass_id must not be blank")
	}
	if r.FileURL != nil && strings.TrimSpace(*r.FileURL) == "" {
		return fmt.Errorf("file_url must not be blank")
	}
	return nil
}

func (r EditItemRequest) toUpdate() catalog.Update {
	return catalog.Update{
		GamePassID: r.GamePassID,
		FileURL:    r.FileURL,
	}
}
