package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/mtlprog/planner/internal/domain"
)

// HotelRepository handles database operations for hotels.
type HotelRepository struct{}

// NewHotelRepository creates a new HotelRepository.
func NewHotelRepository() *HotelRepository {
	return &HotelRepository{}
}

// GetByID retrieves a hotel by ID.
func (r *HotelRepository) GetByID(ctx context.Context, q Querier, hotelID string) (*domain.Hotel, error) {
	query, args, err := psql.
		Select("id", "hotel_group_id", "name", "time_zone").
		From("hotels").
		Where(sq.Eq{"id": hotelID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for hotel %s: %w", hotelID, err)
	}

	var hotel domain.Hotel
	err = q.QueryRow(ctx, query, args...).Scan(
		&hotel.ID,
		&hotel.HotelGroupID,
		&hotel.Name,
		&hotel.TimeZone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHotelNotFound
		}
		return nil, fmt.Errorf("query hotel: %w", err)
	}

	return &hotel, nil
}
