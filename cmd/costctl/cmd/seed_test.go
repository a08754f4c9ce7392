package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRate(t *testing.T) {
	t.Run("from price flags", func(t *testing.T) {
		rate, err := seedRate(seedOptions{rateId: "day", energyPrice: "0.25", idlePrice: "0.1", minCost: 100, maxCost: -1})

		require.NoError(t, err)
		assert.Equal(t, "day", rate.RateId)
		require.NotNil(t, rate.MinCost)
		assert.EqualValues(t, 100, *rate.MinCost)
		assert.Nil(t, rate.MaxCost)
		require.Len(t, rate.PricingElements, 1)
		energy, ok := rate.PricingElements[0].Component(models.ComponentEnergy)
		require.True(t, ok)
		assert.Equal(t, "0.25", energy.Value.String())
		_, ok = rate.PricingElements[0].Component(models.ComponentIdle)
		assert.True(t, ok)
	})

	t.Run("needs a price", func(t *testing.T) {
		_, err := seedRate(seedOptions{minCost: -1, maxCost: -1})
		assert.Error(t, err)
	})

	t.Run("rejects malformed prices", func(t *testing.T) {
		_, err := seedRate(seedOptions{energyPrice: "cheap", minCost: -1, maxCost: -1})
		assert.ErrorContains(t, err, "energy")
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rate.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"rateId":"night","pricingElements":[{"restrictions":{"startTime":"22:00"},"components":[{"type":"energy","value":"0.1"}]}]}`), 0o600))

		rate, err := seedRate(seedOptions{file: path})

		require.NoError(t, err)
		assert.Equal(t, "night", rate.RateId)
		require.NotNil(t, rate.PricingElements[0].Restrictions.StartTime)
		assert.Equal(t, "22:00", *rate.PricingElements[0].Restrictions.StartTime)
	})
}
