package repo

import (
	"context"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TelemetryRepo stores the per-session meter readings and connector status events the
// cost calculation consumes.
type TelemetryRepo struct{ db *pgxpool.Pool }

func NewTelemetryRepo(db *pgxpool.Pool) *TelemetryRepo { return &TelemetryRepo{db: db} }

func (r *TelemetryRepo) InsertReading(ctx context.Context, reading models.EnergyReading) (string, error) {
	row := r.db.QueryRow(ctx, `
		insert into energy_readings (session_id, value, ts)
		values ($1, $2::numeric, $3)
		returning reading_id
	`, reading.SessionId, reading.Value.String(), reading.Timestamp)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *TelemetryRepo) InsertStatusEvent(ctx context.Context, ev models.ConnectorStatusEvent) (string, error) {
	row := r.db.QueryRow(ctx, `
		insert into connector_status_events (session_id, status, ts)
		values ($1,$2,$3)
		returning event_id
	`, ev.SessionId, string(ev.Status), ev.Timestamp)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *TelemetryRepo) ListReadings(ctx context.Context, sessionId string) ([]models.EnergyReading, error) {
	rows, err := r.db.Query(ctx, `
		select reading_id, session_id, value::text, ts
		from energy_readings where session_id=$1
		order by ts asc
	`, sessionId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EnergyReading
	for rows.Next() {
		var (
			rd  models.EnergyReading
			raw string
		)
		if err := rows.Scan(&rd.ReadingId, &rd.SessionId, &raw, &rd.Timestamp); err != nil {
			return nil, err
		}
		if rd.Value, err = decimal.NewFromString(raw); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *TelemetryRepo) ListStatusEvents(ctx context.Context, sessionId string) ([]models.ConnectorStatusEvent, error) {
	rows, err := r.db.Query(ctx, `
		select event_id, session_id, status, ts
		from connector_status_events where session_id=$1
		order by ts asc
	`, sessionId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConnectorStatusEvent
	for rows.Next() {
		var ev models.ConnectorStatusEvent
		var status string
		if err := rows.Scan(&ev.EventId, &ev.SessionId, &status, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.Status = models.ConnectorStatus(status)
		out = append(out, ev)
	}
	return out, rows.Err()
}
