package handler

import "passgate/internal/catalog"

// ItemResponse mirrors a catalog item over the admin API.
type ItemResponse struct {
	Name       string `json:"name"`
	GamePassID string `json:"gamepass_id"`
	FileURL    string `json:"file_url"`
}

// ListResponse wraps the full catalog.
type ListResponse struct {
	Total int            `json:"total"`
	Items []ItemResponse `json:"items"`
}

func fromItem(item catalog.Item) ItemResponse {
	return ItemResponse{
		Name:       item.Name,
		GamePassID: item.GamePassID,
		FileURL:    item.FileURL,
	}
}

func fromItems(items []catalog.Item) ListResponse {
	resp := ListResponse{Total: len(items), Items: make([]ItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, fromItem(item))
	}
	return resp
}
