package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evencat/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `id, name, date, location, description, status, owner_id,
       coalesce(image_url, ''), created_at, updated_at`

// sortColumns maps validated sort keys to order-by columns. Caller
// input never reaches the SQL text except through this mapping.
var sortColumns = map[string]string{
	"name":     "name",
	"date":     "date",
	"location": "location",
	"status":   "status",
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO events (id, name, date, location, description, status, owner_id, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
RETURNING `+eventColumns,
		params.ID,
		params.Name,
		params.Date,
		params.Location,
		params.Description,
		string(params.Status),
		params.OwnerID,
		params.ImageURL,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, patch events.Patch) (*events.Event, error) {
	var status *string
	if patch.Status != nil {
		value := string(*patch.Status)
		status = &value
	}

	row := r.pool.QueryRow(ctx, `
UPDATE events
   SET name        = COALESCE($2, name),
       date        = COALESCE($3, date),
       location    = COALESCE($4, location),
       description = COALESCE($5, description),
       status      = COALESCE($6, status),
       image_url   = COALESCE($7, image_url),
       updated_at  = now()
 WHERE id = $1
RETURNING `+eventColumns,
		id, patch.Name, patch.Date, patch.Location, patch.Description, status, patch.ImageURL)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// List runs the filter predicate twice, once for the total count and
// once for the requested page window.
func (r *EventRepository) List(ctx context.Context, query events.ListQuery) (events.ListResult, error) {
	sortColumn, ok := sortColumns[query.Sort]
	if !ok {
		return events.ListResult{}, events.QueryError{Field: "sort", Message: "unsupported sort field"}
	}
	direction := "ASC"
	if query.Order == "desc" {
		direction = "DESC"
	}

	const predicate = `
 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')
   AND ($2 = '' OR status = $2)`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events`+predicate,
		query.Search, string(query.Status)).Scan(&total); err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events`+predicate+`
 ORDER BY `+sortColumn+` `+direction+`, id ASC
OFFSET $3 LIMIT $4`,
		query.Search, string(query.Status), query.Offset(), query.Limit)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	if err != nil {
		return events.ListResult{}, err
	}

	return events.ListResult{
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
		Items: items,
	}, nil
}

func (r *EventRepository) ListByOwner(ctx context.Context, ownerID string) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+` FROM events WHERE owner_id = $1 ORDER BY date ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events by owner: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) ListAll(ctx context.Context) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) Summarize(ctx context.Context, now time.Time) (events.Summary, error) {
	summary := events.Summary{}

	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&summary.TotalEvents); err != nil {
		return events.Summary{}, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT status, count(*) FROM events GROUP BY status ORDER BY count(*) DESC, status ASC`)
	if err != nil {
		return events.Summary{}, fmt.Errorf("group events by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item events.StatusCount
		var status string
		if err := rows.Scan(&status, &item.Count); err != nil {
			return events.Summary{}, fmt.Errorf("scan status count: %w", err)
		}
		item.Status = events.Status(status)
		summary.EventsByStatus = append(summary.EventsByStatus, item)
	}
	if err := rows.Err(); err != nil {
		return events.Summary{}, fmt.Errorf("iterate status counts: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+eventColumns+` FROM events WHERE date >= $1 ORDER BY date ASC LIMIT 1`, now)
	next, err := scanEvent(row)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return events.Summary{}, fmt.Errorf("next event: %w", err)
		}
	} else {
		summary.NextEvent = next
	}

	return summary, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	var status string
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Location,
		&event.Description,
		&status,
		&event.OwnerID,
		&event.ImageURL,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.Status = events.Status(status)
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}
