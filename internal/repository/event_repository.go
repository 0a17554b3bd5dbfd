package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
)

const eventColumns = "id, title, description, type, category, active, sort_order, date_entered, updated_at"

// EventRepository provides persistence for ongoing events.
type EventRepository struct {
	db  *sqlx.DB
	ids *ContentIDs
}

// NewEventRepository creates the repository.
func NewEventRepository(db *sqlx.DB, ids *ContentIDs) *EventRepository {
	return &EventRepository{db: db, ids: ids}
}

// List returns ongoing events matching the filter, ordered by sort_order then
// recency.
func (r *EventRepository) List(ctx context.Context, filter models.OngoingEventFilter) ([]models.OngoingEvent, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page, size := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM ongoing_events WHERE %s
ORDER BY sort_order ASC, date_entered DESC
LIMIT %d OFFSET %d`, eventColumns, whereClause, size, offset)
	var events []models.OngoingEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ongoing events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ongoing_events WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count ongoing events: %w", err)
	}
	return events, total, nil
}

// GetByID returns an event by identifier.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.OngoingEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM ongoing_events WHERE id = $1", eventColumns)
	var event models.OngoingEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event, drawing its id from the shared counter.
func (r *EventRepository) Create(ctx context.Context, event *models.OngoingEvent) error {
	if event.ID == 0 {
		id, err := r.ids.Next(ctx)
		if err != nil {
			return err
		}
		event.ID = id
	}
	now := time.Now().UTC()
	if event.DateEntered.IsZero() {
		event.DateEntered = now
	}
	event.UpdatedAt = now
	query := `INSERT INTO ongoing_events (id, title, description, type, category, active, sort_order, date_entered, updated_at)
VALUES (:id, :title, :description, :type, :category, :active, :sort_order, :date_entered, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create ongoing event: %w", err)
	}
	return nil
}

// Update modifies an existing event.
func (r *EventRepository) Update(ctx context.Context, event *models.OngoingEvent) error {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE ongoing_events SET title = :title, description = :description, type = :type, category = :category,
active = :active, sort_order = :sort_order, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update ongoing event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM ongoing_events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete ongoing event: %w", err)
	}
	return nil
}

// BulkSetActive flips the active flag across the given ids.
func (r *EventRepository) BulkSetActive(ctx context.Context, ids []int64, active bool) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE ongoing_events SET active = $1, updated_at = $2 WHERE id = ANY($3)",
		active, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk set event active: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// BulkDelete removes the given ids.
func (r *EventRepository) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM ongoing_events WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete ongoing events: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// All returns every event, for CSV export.
func (r *EventRepository) All(ctx context.Context) ([]models.OngoingEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM ongoing_events ORDER BY sort_order ASC, date_entered DESC", eventColumns)
	var events []models.OngoingEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("export ongoing events: %w", err)
	}
	return events, nil
}
