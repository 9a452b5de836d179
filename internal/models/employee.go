package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Pin is a personal identification code. Stored PINs arrive as either
// numeric or string JSON values depending on their origin, so the type
// accepts both and keeps the canonical string form.
type Pin string

func (p *Pin) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = Pin(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Pin(n.String())
		return nil
	}
	return fmt.Errorf("pin: unsupported JSON value %s", string(b))
}

type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pin       Pin       `json:"pin"`
	CreatedAt time.Time `json:"created_at"`
}
