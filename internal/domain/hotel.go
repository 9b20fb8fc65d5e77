package domain

import (
	"fmt"
	"time"
)

// DefaultTimeZone is used for hotels without a configured zone.
const DefaultTimeZone = "UTC"

// Hotel is a property of a hotel group. Task timestamps written by mobile
// staff are expressed in the hotel's local time.
type Hotel struct {
	ID           string
	HotelGroupID string
	Name         string
	TimeZone     string
}

// Location resolves the hotel's IANA time zone.
func (h *Hotel) Location() (*time.Location, error) {
	zone := h.TimeZone
	if zone == "" {
		zone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q for hotel %s: %w", zone, h.ID, err)
	}
	return loc, nil
}
