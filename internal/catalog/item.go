// Package catalog owns the list of sellable items. Each item maps a unique
// name to the game pass that unlocks it and the file handed to the buyer on
// successful verification.
package catalog

import (
	"fmt"
	"strings"
)

// Item is a sellable digital file gated by a game pass. Items are immutable
// snapshots once read by a purchase session; only the operator API mutates
// the catalog.
type Item struct {
	// Name is the unique catalog key shown to buyers.
	Name string `json:"name"`
	// GamePassID is the platform identifier of the entitlement, kept as an
	// opaque string because the platform encodes it inconsistently.
	GamePassID string `json:"gamepass_id"`
	// FileURL is delivered to the buyer after ownership is verified.
	FileURL string `json:"file_url"`
}

// PurchaseURL is the storefront page where the buyer completes the purchase.
func (i Item) PurchaseURL() string {
	return fmt.Sprintf("https://www.roblox.com/game-pass/%s", i.GamePassID)
}

// Validate checks the invariants the store relies on.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	if strings.TrimSpace(i.GamePassID) == "" {
		return fmt.Errorf("gamepass id is required")
	}
	if strings.TrimSpace(i.FileURL) == "" {
		return fmt.Errorf("file url is required")
	}
	return nil
}

// Update describes a partial edit to an existing item. Nil fields are left
// unchanged.
type Update struct {
	GamePassID *string
	FileURL    *string
}
