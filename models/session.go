package models

import "time"

// Session represents one browsing session of the HTTP surface.
// Each session owns its own catalog state and wallet session.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

// IsExpired returns true if the session has been idle longer than ttl.
func (s Session) IsExpired(ttl time.Duration) bool {
	return s.IsExpiredAt(time.Now(), ttl)
}

// IsExpiredAt reports expiry relative to now. A ttl <= 0 never expires.
func (s Session) IsExpiredAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastSeen) > ttl
}
