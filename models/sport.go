package models

// Sport tags tournaments and live score payloads. Code is the short tag
// carried on live events, e.g. "volley".
type Sport struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Code    string  `json:"code" db:"code"`
	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
