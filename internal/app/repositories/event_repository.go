package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/db"
)

// EventRepository handles database operations for events and their analytics
type EventRepository struct {
	database *db.PostgresDB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(database *db.PostgresDB) *EventRepository {
	return &EventRepository{database: database}
}

// Create inserts an event without analytics (production events) and returns its id
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (int64, error) {
	query := `
		INSERT INTO events (community_id, facility_id, title, description, event_type,
			start_time, end_time, cost, registration_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.database.Pool.QueryRow(ctx, query,
		event.CommunityID, event.FacilityID, event.Title, event.Description, event.EventType,
		event.StartTime, event.EndTime, event.Cost, event.RegistrationDeadline).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// CreateWithAnalytics inserts an event and its analytics in one transaction.
// Analytics rows exist only for events created this way.
func (r *EventRepository) CreateWithAnalytics(ctx context.Context, event *models.Event, analytics *models.EventAnalytics) (int64, error) {
	var eventID int64

	err := r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		eventQuery := `
			INSERT INTO events (community_id, facility_id, title, description, event_type,
				start_time, end_time, cost, registration_deadline)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		err := tx.QueryRow(ctx, eventQuery,
			event.CommunityID, event.FacilityID, event.Title, event.Description, event.EventType,
			event.StartTime, event.EndTime, event.Cost, event.RegistrationDeadline).Scan(&eventID)
		if err != nil {
			return fmt.Errorf("error inserting event: %w", err)
		}

		analyticsQuery := `
			INSERT INTO event_analytics (event_id, registrations, actual_attendance, attendance_rate,
				average_rating, feedback_count, engagement_score, success_factors,
				photos_shared, social_mentions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err = tx.Exec(ctx, analyticsQuery,
			eventID, analytics.Registrations, analytics.ActualAttendance, analytics.AttendanceRate,
			analytics.AverageRating, analytics.FeedbackCount, analytics.EngagementScore,
			analytics.SuccessFactors, analytics.PhotosShared, analytics.SocialMentions)
		if err != nil {
			return fmt.Errorf("error inserting event analytics: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return eventID, nil
}

// ListRecentWithAnalytics retrieves the community's most recent events,
// newest first, each with its analytics when present.
func (r *EventRepository) ListRecentWithAnalytics(ctx context.Context, communityID int64, limit int) ([]*models.Event, error) {
	query := `
		SELECT e.id, e.community_id, e.facility_id, e.title, e.description, e.event_type,
			e.start_time, e.end_time, e.cost, e.registration_deadline, e.created_at,
			a.id, a.registrations, a.actual_attendance, a.attendance_rate, a.average_rating,
			a.feedback_count, a.engagement_score, a.success_factors, a.photos_shared, a.social_mentions
		FROM events e
		LEFT JOIN event_analytics a ON a.event_id = e.id
		WHERE e.community_id = $1
		ORDER BY e.start_time DESC
		LIMIT $2
	`

	rows, err := r.database.Pool.Query(ctx, query, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var event models.Event
		var analyticsID *int64
		var registrations, actualAttendance, feedbackCount, photosShared, socialMentions *int
		var attendanceRate, averageRating, engagementScore *float64
		var successFactors *string

		err := rows.Scan(
			&event.ID,
			&event.CommunityID,
			&event.FacilityID,
			&event.Title,
			&event.Description,
			&event.EventType,
			&event.StartTime,
			&event.EndTime,
			&event.Cost,
			&event.RegistrationDeadline,
			&event.CreatedAt,
			&analyticsID,
			&registrations,
			&actualAttendance,
			&attendanceRate,
			&averageRating,
			&feedbackCount,
			&engagementScore,
			&successFactors,
			&photosShared,
			&socialMentions,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}

		if analyticsID != nil {
			event.Analytics = &models.EventAnalytics{
				ID:               *analyticsID,
				EventID:          event.ID,
				Registrations:    *registrations,
				ActualAttendance: *actualAttendance,
				AttendanceRate:   *attendanceRate,
				AverageRating:    *averageRating,
				FeedbackCount:    *feedbackCount,
				EngagementScore:  *engagementScore,
				SuccessFactors:   *successFactors,
				PhotosShared:     *photosShared,
				SocialMentions:   *socialMentions,
			}
		}

		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// GetByID retrieves an event by ID, or nil when absent
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `
		SELECT id, community_id, facility_id, title, description, event_type,
			start_time, end_time, cost, registration_deadline, created_at
		FROM events
		WHERE id = $1
	`

	var event models.Event
	err := r.database.Pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.CommunityID,
		&event.FacilityID,
		&event.Title,
		&event.Description,
		&event.EventType,
		&event.StartTime,
		&event.EndTime,
		&event.Cost,
		&event.RegistrationDeadline,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &event, nil
}

// DeleteByCommunity removes the community's analytics and events, in that
// order, inside one transaction.
func (r *EventRepository) DeleteByCommunity(ctx context.Context, communityID int64) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM event_analytics
			WHERE event_id IN (SELECT id FROM events WHERE community_id = $1)
		`, communityID)
		if err != nil {
			return fmt.Errorf("error deleting event analytics: %w", err)
		}

		_, err = tx.Exec(ctx, `DELETE FROM events WHERE community_id = $1`, communityID)
		if err != nil {
			return fmt.Errorf("error deleting events: %w", err)
		}

		return nil
	})
}
