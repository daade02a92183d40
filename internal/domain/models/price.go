package models

import "time"

// PricePoint is one observation of a traded symbol. Volume is zero when the
// feed does not report it.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume,omitempty"`
}
