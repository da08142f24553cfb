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

// SuggestionRepository handles database operations for event suggestions
type SuggestionRepository struct {
	db *pgxpool.Pool
}

// NewSuggestionRepository creates a new SuggestionRepository
func NewSuggestionRepository(db *pgxpool.Pool) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

const suggestionColumns = `id, community_id, title, description, location, event_type,
	suggested_date, duration_hours, reasoning, context_factors, expected_engagement,
	required_facilities, recommended_capacity, estimated_cost, status,
	implemented_event_id, batch_id, created_at, updated_at`

func scanSuggestion(row pgx.Row) (*models.Suggestion, error) {
	var s models.Suggestion
	err := row.Scan(
		&s.ID,
		&s.CommunityID,
		&s.Title,
		&s.Description,
		&s.Location,
		&s.EventType,
		&s.SuggestedDate,
		&s.DurationHours,
		&s.Reasoning,
		&s.ContextFactors,
		&s.ExpectedEngagement,
		&s.RequiredFacilities,
		&s.RecommendedCapacity,
		&s.EstimatedCost,
		&s.Status,
		&s.ImplementedEventID,
		&s.BatchID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a suggestion and returns it with db-assigned fields set
func (r *SuggestionRepository) Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	query := `
		INSERT INTO event_suggestions (community_id, title, description, location, event_type,
			suggested_date, duration_hours, reasoning, context_factors, expected_engagement,
			required_facilities, recommended_capacity, estimated_cost, status, batch_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + suggestionColumns

	row := r.db.QueryRow(ctx, query,
		s.CommunityID, s.Title, s.Description, s.Location, s.EventType,
		s.SuggestedDate, s.DurationHours, s.Reasoning, s.ContextFactors, s.ExpectedEngagement,
		s.RequiredFacilities, s.RecommendedCapacity, s.EstimatedCost, s.Status, s.BatchID)

	created, err := scanSuggestion(row)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return created, nil
}

// GetByID retrieves a suggestion by ID, or nil when absent
func (r *SuggestionRepository) GetByID(ctx context.Context, id int64) (*models.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM event_suggestions WHERE id = $1`

	s, err := scanSuggestion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return s, nil
}

// ListByCommunity retrieves persisted suggestions ordered by descending
// expected engagement then ascending suggested date, optionally filtered by
// status and capped at limit.
func (r *SuggestionRepository) ListByCommunity(ctx context.Context, communityID int64, status *models.SuggestionStatus, limit int) ([]*models.Suggestion, error) {
	query := squirrel.Select(
		"id", "community_id", "title", "description", "location", "event_type",
		"suggested_date", "duration_hours", "reasoning", "context_factors", "expected_engagement",
		"required_facilities", "recommended_capacity", "estimated_cost", "status",
		"implemented_event_id", "batch_id", "created_at", "updated_at",
	).
		From("event_suggestions").
		Where("community_id = ?", communityID).
		OrderBy("expected_engagement DESC", "suggested_date ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning suggestion row: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestion rows: %w", err)
	}

	return suggestions, nil
}

// MarkImplemented sets the suggestion's status to IMPLEMENTED and records the
// production event id.
func (r *SuggestionRepository) MarkImplemented(ctx context.Context, id int64, eventID int64) error {
	query := `
		UPDATE event_suggestions
		SET status = $1, implemented_event_id = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.Exec(ctx, query, models.SuggestionImplemented, eventID, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("suggestion not found with ID %d", id)
	}

	return nil
}

// UpdateStatus sets the suggestion's status (manual approve/reject path).
func (r *SuggestionRepository) UpdateStatus(ctx context.Context, id int64, status models.SuggestionStatus) error {
	query := `
		UPDATE event_suggestions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("suggestion not found with ID %d", id)
	}

	return nil
}

// Touch bumps the suggestion's update timestamp without changing its status.
// Broadcasting is observational, not a state transition.
func (r *SuggestionRepository) Touch(ctx context.Context, id int64) error {
	query := `UPDATE event_suggestions SET updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("suggestion not found with ID %d", id)
	}

	return nil
}
