package models

import "strings"

// CatalogState is the browsing state owned by a catalog controller.
//
// Results is only ever replaced wholesale (fresh load or search) or appended to
// (load-more). Page only increases while ActiveQuery is unchanged.
type CatalogState struct {
	Results     []MovieSummary `json:"results"`
	Page        int            `json:"page"`
	ActiveQuery string         `json:"activeQuery"`
	Loading     bool           `json:"loading"`
	Error       string         `json:"error,omitempty"`
	Selected    *MovieSummary  `json:"selected,omitempty"`
}

// Searching reports whether the state reflects a title search rather than the popular list.
func (s CatalogState) Searching() bool {
	return strings.TrimSpace(s.ActiveQuery) != ""
}

// CanLoadMore reports whether a load-more request would be accepted.
func (s CatalogState) CanLoadMore() bool {
	return len(s.Results) > 0 && !s.Loading
}

// Clone returns a deep copy safe to hand to renderers.
func (s CatalogState) Clone() CatalogState {
	out := s
	if s.Results != nil {
		out.Results = make([]MovieSummary, len(s.Results))
		copy(out.Results, s.Results)
	}
	if s.Selected != nil {
		selected := *s.Selected
		out.Selected = &selected
	}
	return out
}

// WalletSession records the account returned by the wallet provider.
// There is no expiry and no verification: an address string is treated as access.
type WalletSession struct {
	Address string `json:"address,omitempty"`
}

// Connected reports whether an account is present.
func (w WalletSession) Connected() bool {
	return w.Address != ""
}

// ShortAddress renders the address as 0x1234...abcd.
func (w WalletSession) ShortAddress() string {
	if len(w.Address) <= 10 {
		return w.Address
	}
	return w.Address[:6] + "..." + w.Address[len(w.Address)-4:]
}
