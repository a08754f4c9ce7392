package repo

import (
	"context"
	"errors"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionsRepo struct{ db *pgxpool.Pool }

func NewSessionsRepo(db *pgxpool.Pool) *SessionsRepo { return &SessionsRepo{db: db} }

const sessionColumns = `session_id, charge_point_id, connector_id, transaction_id, rate_id, timezone, started_at, ended_at, cost`

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.SessionId, &s.ChargePointId, &s.ConnectorId, &s.TransactionId, &s.RateId, &s.Timezone, &s.StartedAt, &s.EndedAt, &s.Cost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionsRepo) Start(ctx context.Context, s models.Session) (string, error) {
	row := r.db.QueryRow(ctx, `
		insert into sessions (charge_point_id, connector_id, transaction_id, rate_id, timezone, started_at)
		values ($1,$2,$3,$4,$5,$6)
		returning session_id
	`, s.ChargePointId, s.ConnectorId, s.TransactionId, s.RateId, s.Timezone, s.StartedAt)

	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *SessionsRepo) FindByTx(ctx context.Context, cp string, tx int) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, `
		select `+sessionColumns+`
		from sessions
		where charge_point_id=$1 and transaction_id=$2
		order by started_at desc
		limit 1
	`, cp, tx))
}

// FindOpenByConnector returns the most recent session on the connector that has not ended.
func (r *SessionsRepo) FindOpenByConnector(ctx context.Context, cp string, connectorId int) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, `
		select `+sessionColumns+`
		from sessions
		where charge_point_id=$1 and connector_id=$2 and ended_at is null
		order by started_at desc
		limit 1
	`, cp, connectorId))
}

func (r *SessionsRepo) End(ctx context.Context, sessionId string, endedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		update sessions set ended_at=coalesce(ended_at, $2), updated_at=now()
		where session_id=$1
	`, sessionId, endedAt)
	return err
}

func (r *SessionsRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, `
		select `+sessionColumns+`
		from sessions where session_id=$1
	`, id))
}

func (r *SessionsRepo) SetCost(ctx context.Context, sessionId string, cost int64) error {
	_, err := r.db.Exec(ctx, `
		update sessions set cost=$2, updated_at=now()
		where session_id=$1
	`, sessionId, cost)
	return err
}

func (r *SessionsRepo) ListByCharger(ctx context.Context, cp string, limit int) ([]models.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		select `+sessionColumns+`
		from sessions where charge_point_id=$1
		order by started_at desc
		limit $2
	`, cp, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
