package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/db"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RatesRepo struct{ db *pgxpool.Pool }

func NewRatesRepo(db *pgxpool.Pool) *RatesRepo { return &RatesRepo{db: db} }

// Create stores the rate with its elements and components, preserving their order. Empty
// ids are generated by the database. The stored rate is returned with all ids set.
func (r *RatesRepo) Create(ctx context.Context, rate models.Rate) (models.Rate, error) {
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			insert into rates (rate_id, min_cost, max_cost)
			values (coalesce(nullif($1,''), gen_random_uuid()::text), $2, $3)
			returning rate_id
		`, rate.RateId, rate.MinCost, rate.MaxCost).Scan(&rate.RateId); err != nil {
			return err
		}

		for i := range rate.PricingElements {
			el := &rate.PricingElements[i]
			restrictions, err := json.Marshal(el.Restrictions)
			if err != nil {
				return fmt.Errorf("encode restrictions: %w", err)
			}
			if err := tx.QueryRow(ctx, `
				insert into rate_pricing_elements (element_id, rate_id, position, restrictions)
				values (coalesce(nullif($1,''), gen_random_uuid()::text), $2, $3, $4)
				returning element_id
			`, el.ElementId, rate.RateId, i, restrictions).Scan(&el.ElementId); err != nil {
				return err
			}
			el.RateId = rate.RateId

			for j := range el.Components {
				c := &el.Components[j]
				if err := tx.QueryRow(ctx, `
					insert into rate_pricing_element_components (component_id, element_id, position, type, value)
					values (coalesce(nullif($1,''), gen_random_uuid()::text), $2, $3, $4, $5::numeric)
					returning component_id
				`, c.ComponentId, el.ElementId, j, string(c.Type), c.Value.String()).Scan(&c.ComponentId); err != nil {
					return err
				}
				c.ElementId = el.ElementId
			}
		}
		return nil
	})
	if err != nil {
		return models.Rate{}, err
	}
	return rate, nil
}

func (r *RatesRepo) Get(ctx context.Context, rateId string) (*models.Rate, error) {
	var rate models.Rate
	if err := r.db.QueryRow(ctx, `
		select rate_id, min_cost, max_cost from rates where rate_id=$1
	`, rateId).Scan(&rate.RateId, &rate.MinCost, &rate.MaxCost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		select element_id, restrictions
		from rate_pricing_elements where rate_id=$1
		order by position asc
	`, rateId)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	for rows.Next() {
		el := models.RatePricingElement{RateId: rateId}
		var restrictions []byte
		if err := rows.Scan(&el.ElementId, &restrictions); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal(restrictions, &el.Restrictions); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode restrictions of element %s: %w", el.ElementId, err)
		}
		index[el.ElementId] = len(rate.PricingElements)
		rate.PricingElements = append(rate.PricingElements, el)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		select c.component_id, c.element_id, c.type, c.value::text
		from rate_pricing_element_components c
		join rate_pricing_elements e on e.element_id = c.element_id
		where e.rate_id=$1
		order by e.position asc, c.position asc
	`, rateId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c     models.RatePricingElementComponent
			typ   string
			value string
		)
		if err := rows.Scan(&c.ComponentId, &c.ElementId, &typ, &value); err != nil {
			return nil, err
		}
		c.Type = models.ComponentType(typ)
		if c.Value, err = decimal.NewFromString(value); err != nil {
			return nil, err
		}
		i := index[c.ElementId]
		rate.PricingElements[i].Components = append(rate.PricingElements[i].Components, c)
	}
	return &rate, rows.Err()
}
