package models

// ResolveVia records which resolution step produced a TickerIdentity.
type ResolveVia string

const (
	ResolveExact     ResolveVia = "exact"
	ResolveSubstring ResolveVia = "substring"
	ResolveTitle     ResolveVia = "title"
	ResolveSearch    ResolveVia = "search"
)

// TickerIdentity is the canonical code and display name for a user input.
type TickerIdentity struct {
	Code        string     `json:"code"`
	DisplayName string     `json:"display_name"`
	Via         ResolveVia `json:"via,omitempty"`
}

// MarketListing is one row of the bulk market-data feed used to extend the
// ticker directory.
type MarketListing struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Volume int64  `json:"volume"`
}
