package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivenest/communio/internal/app/models"
)

// FacilityRepository handles database operations for facilities
type FacilityRepository struct {
	db *pgxpool.Pool
}

// NewFacilityRepository creates a new FacilityRepository
func NewFacilityRepository(db *pgxpool.Pool) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// Create inserts a facility and returns its id
func (r *FacilityRepository) Create(ctx context.Context, facility *models.Facility) (int64, error) {
	query := `
		INSERT INTO facilities (community_id, name, type, capacity, amenities)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		facility.CommunityID, facility.Name, facility.Type, facility.Capacity, facility.Amenities).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// ListByCommunity retrieves the community's facilities in creation order
func (r *FacilityRepository) ListByCommunity(ctx context.Context, communityID int64) ([]*models.Facility, error) {
	query := squirrel.Select("id", "community_id", "name", "type", "capacity", "amenities", "created_at").
		From("facilities").
		Where("community_id = ?", communityID).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var facilities []*models.Facility
	for rows.Next() {
		var facility models.Facility
		err := rows.Scan(
			&facility.ID,
			&facility.CommunityID,
			&facility.Name,
			&facility.Type,
			&facility.Capacity,
			&facility.Amenities,
			&facility.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning facility row: %w", err)
		}
		facilities = append(facilities, &facility)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating facility rows: %w", err)
	}

	return facilities, nil
}

// DeleteByCommunity removes all of a community's facilities
func (r *FacilityRepository) DeleteByCommunity(ctx context.Context, communityID int64) error {
	query := squirrel.Delete("facilities").
		Where("community_id = ?", communityID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}
