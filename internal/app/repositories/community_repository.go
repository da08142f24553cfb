package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivenest/communio/internal/app/models"
)

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// GetByID retrieves a community by ID, or nil when absent
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	query := `
		SELECT id, name, address, owner_id, created_at, updated_at
		FROM communities
		WHERE id = $1
	`

	var community models.Community
	err := r.db.QueryRow(ctx, query, id).Scan(
		&community.ID,
		&community.Name,
		&community.Address,
		&community.OwnerID,
		&community.CreatedAt,
		&community.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &community, nil
}

// GetWithResidents retrieves a community together with its residents
func (r *CommunityRepository) GetWithResidents(ctx context.Context, id int64) (*models.Community, error) {
	community, err := r.GetByID(ctx, id)
	if err != nil || community == nil {
		return community, err
	}

	query := squirrel.Select(
		"id", "email", "password", "first_name", "last_name", "role", "community_id",
		"created_at", "updated_at",
	).
		From("users").
		Where("community_id = ?", id).
		Where("role = ?", models.RoleResident).
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

	community.Residents = []*models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Password,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.CommunityID,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning resident row: %w", err)
		}
		community.Residents = append(community.Residents, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resident rows: %w", err)
	}

	return community, nil
}

// Exists checks whether a community exists
func (r *CommunityRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM communities WHERE id = $1)`
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

// ResidentIDs returns the ids of the community's residents
func (r *CommunityRepository) ResidentIDs(ctx context.Context, id int64) ([]int64, error) {
	query := `
		SELECT id FROM users
		WHERE community_id = $1 AND role = $2
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, id, models.RoleResident)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("error scanning resident id: %w", err)
		}
		ids = append(ids, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resident ids: %w", err)
	}

	return ids, nil
}

// Create inserts a new community and returns its id
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) (int64, error) {
	query := `
		INSERT INTO communities (name, address, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		community.Name, community.Address, community.OwnerID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}
