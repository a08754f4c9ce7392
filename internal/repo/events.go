package repo

import (
	"context"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct{ db *pgxpool.Pool }

func NewEventsRepo(db *pgxpool.Pool) *EventsRepo { return &EventsRepo{db: db} }

// InsertRaw appends a gateway event to the audit log and returns its id.
func (r *EventsRepo) InsertRaw(ctx context.Context, ev models.RawEvent) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		insert into gateway_events (charge_point_id, event_type, ts, payload)
		values ($1,$2,$3,$4)
		returning id
	`, ev.ChargePointId, ev.EventType, ev.Ts, ev.Payload).Scan(&id)
	return id, err
}
