package paste

import "time"

// Paste is the stored text payload addressed by a short key.
type Paste struct {
	Key                string     `json:"key"`
	Content            string     `json:"content"`
	Syntax             string     `json:"syntax"`
	IsBurnAfterReading bool       `json:"isBurnAfterReading"`
	ExpireAt           *time.Time `json:"expireAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// ExpiredAt reports whether the paste is past its expiry at now.
// A paste without ExpireAt never expires.
func (p Paste) ExpiredAt(now time.Time) bool {
	return p.ExpireAt != nil && p.ExpireAt.Before(now)
}

// CreateRequest is the inbound payload for a new paste.
type CreateRequest struct {
	Content            string `json:"content"`
	Syntax             string `json:"syntax,omitempty"`
	IsBurnAfterReading bool   `json:"isBurnAfterReading,omitempty"`
	ExpireMinutes      int    `json:"expireMinutes,omitempty"`
}

// CreateResponse tells the client where the paste lives.
type CreateResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
