package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mtlprog/planner/internal/repository"
)

// HotelClock tells the current wall-clock time at a hotel.
type HotelClock struct {
	hotels HotelStore
	now    func() time.Time
}

// NewHotelClock creates a HotelClock. A nil now uses time.Now.
func NewHotelClock(hotels HotelStore, now func() time.Time) *HotelClock {
	if now == nil {
		now = time.Now
	}
	return &HotelClock{hotels: hotels, now: now}
}

// Now returns the hotel's local wall-clock time, labelled UTC so that it is
// stored verbatim in timestamp columns. Precision matches PostgreSQL.
func (c *HotelClock) Now(ctx context.Context, q repository.Querier, hotelID string) (time.Time, error) {
	hotel, err := c.hotels.GetByID(ctx, q, hotelID)
	if err != nil {
		return time.Time{}, fmt.Errorf("get hotel %s: %w", hotelID, err)
	}

	loc, err := hotel.Location()
	if err != nil {
		return time.Time{}, err
	}

	return WallClock(c.now().In(loc)), nil
}

// UTCNow returns the current UTC time with PostgreSQL precision.
func (c *HotelClock) UTCNow() time.Time {
	return WallClock(c.now().UTC())
}

// WallClock drops the zone of t, keeping its wall-clock reading.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
		Truncate(time.Microsecond)
}
