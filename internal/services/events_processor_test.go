package services

import (
	"context"
	"testing"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor(h *harness) *EventsProcessor {
	return &EventsProcessor{
		Events:          h.store,
		Sessions:        h.store,
		Telemetry:       h.store,
		Costs:           h.costs,
		DefaultRateId:   "rate-1",
		DefaultTimezone: "UTC",
	}
}

func ingest(t *testing.T, p *EventsProcessor, raw string) {
	t.Helper()
	_, err := p.Ingest(context.Background(), []byte(raw))
	require.NoError(t, err)
}

func TestEventsProcessorSessionLifecycle(t *testing.T) {
	h := newHarness()
	h.store.rates["rate-1"] = energyRate("rate-1", "20")
	p := newProcessor(h)

	ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":1,"transactionId":42,"ts":"2021-01-01T00:00:00Z","meterStartWh":100000}`)
	ingest(t, p, `{"type":"ConnectorStatusChanged","chargePointId":"CP1","connectorId":1,"status":"Charging","ts":"2021-01-01T00:00:00Z"}`)
	ingest(t, p, `{"type":"MeterSample","chargePointId":"CP1","transactionId":42,"ts":"2021-01-01T00:01:00Z","samples":[{"measurand":"Voltage","value":230},{"measurand":"Energy.Active.Import.Register","unit":"Wh","value":"200000"}]}`)
	ingest(t, p, `{"type":"TransactionEnded","chargePointId":"CP1","transactionId":42,"ts":"2021-01-01T00:02:00Z","meterStopWh":300000}`)

	sess, err := h.store.FindByTx(context.Background(), "CP1", 42)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "rate-1", sess.RateId)
	require.NotNil(t, sess.EndedAt)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 2, 0, 0, time.UTC), *sess.EndedAt)
	require.NotNil(t, sess.Cost)
	assert.EqualValues(t, 4000, *sess.Cost)

	readings, _ := h.store.ListReadings(context.Background(), sess.SessionId)
	require.Len(t, readings, 3)
	assert.Equal(t, "100", readings[0].Value.String())
	assert.Equal(t, "200", readings[1].Value.String())
	assert.Equal(t, "300", readings[2].Value.String())

	assert.Len(t, h.store.raw, 4)
	require.Len(t, h.publisher.published, 1)
	assert.EqualValues(t, 4000, h.publisher.published[0].EnergyCost)
}

func TestEventsProcessorIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects malformed events", func(t *testing.T) {
		p := newProcessor(newHarness())

		_, err := p.Ingest(ctx, []byte(`{"chargePointId":"CP1"}`))
		assert.Error(t, err)

		_, err = p.Ingest(ctx, []byte(`{"type":"MeterSample"}`))
		assert.Error(t, err)

		_, err = p.Ingest(ctx, []byte(`not json`))
		assert.Error(t, err)
	})

	t.Run("transaction needs a rate", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)
		p.DefaultRateId = ""

		_, err := p.Ingest(ctx, []byte(`{"type":"TransactionStarted","chargePointId":"CP1","connectorId":1,"transactionId":1}`))

		assert.ErrorContains(t, err, "rateId")
	})

	t.Run("payload rate and timezone win over defaults", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)

		ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":1,"transactionId":5,"rateId":"night","timezone":"Europe/Berlin"}`)

		sess, _ := h.store.FindByTx(ctx, "CP1", 5)
		require.NotNil(t, sess)
		assert.Equal(t, "night", sess.RateId)
		assert.Equal(t, "Europe/Berlin", sess.Timezone)
	})

	t.Run("unknown timezone is rejected", func(t *testing.T) {
		p := newProcessor(newHarness())

		_, err := p.Ingest(ctx, []byte(`{"type":"TransactionStarted","chargePointId":"CP1","transactionId":5,"timezone":"Nowhere/Land"}`))

		assert.Error(t, err)
	})

	t.Run("status changes map to session statuses", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)
		ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":2,"transactionId":9}`)

		for _, s := range []string{"Charging", "SuspendedEV", "Available", "Faulted", "Finishing"} {
			ingest(t, p, `{"type":"ConnectorStatusChanged","chargePointId":"CP1","connectorId":2,"status":"`+s+`"}`)
		}
		ingest(t, p, `{"type":"ConnectorStatusChanged","chargePointId":"CP1","connectorId":3,"status":"Charging"}`)

		require.Len(t, h.store.statuses, 3)
		assert.Equal(t, models.StatusCharging, h.store.statuses[0].Status)
		assert.Equal(t, models.StatusIdle, h.store.statuses[1].Status)
		assert.Equal(t, models.StatusIdle, h.store.statuses[2].Status)
	})

	t.Run("samples for unknown transactions are ignored", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)

		ingest(t, p, `{"type":"MeterSample","chargePointId":"CP1","transactionId":99,"samples":[{"measurand":"Energy.Active.Import.Register","value":1}]}`)

		assert.Empty(t, h.store.readings)
		assert.Len(t, h.store.raw, 1)
	})

	t.Run("kWh registers are stored as is", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)
		ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":1,"transactionId":3}`)

		ingest(t, p, `{"type":"MeterSample","chargePointId":"CP1","transactionId":3,"samples":[{"measurand":"Energy.Active.Import.Register","unit":"kWh","value":12.5}]}`)

		require.Len(t, h.store.readings, 1)
		assert.Equal(t, "12.5", h.store.readings[0].Value.String())
	})

	t.Run("timestamps outside the skew use receive time", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		p.Now = func() time.Time { return now }
		p.MaxSkew = time.Minute

		ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":1,"transactionId":1,"ts":"2020-01-01T00:00:00Z"}`)
		ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":4,"transactionId":2,"ts":"2024-06-01T12:00:30Z"}`)

		assert.Equal(t, now, h.store.raw[0].Ts)
		assert.Equal(t, now.Add(30*time.Second), h.store.raw[1].Ts)
	})

	t.Run("failed calculation does not fail the end event", func(t *testing.T) {
		h := newHarness()
		p := newProcessor(h)
		ingest(t, p, `{"type":"TransactionStarted","chargePointId":"CP1","connectorId":1,"transactionId":8,"ts":"2021-01-01T00:00:00Z"}`)

		ingest(t, p, `{"type":"TransactionEnded","chargePointId":"CP1","transactionId":8,"ts":"2021-01-01T00:05:00Z"}`)

		sess, _ := h.store.FindByTx(ctx, "CP1", 8)
		require.NotNil(t, sess)
		assert.NotNil(t, sess.EndedAt)
		assert.Nil(t, sess.Cost)
	})
}
