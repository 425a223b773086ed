package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/star-dominion/internal/empire"
)

func marketWith(e *empire.Empire) *Market {
	return New(func(id string) *empire.Empire {
		if id == e.ID {
			return e
		}
		return nil
	})
}

func TestExecuteBuyOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("partial fill when credits run short", func(t *testing.T) {
		e := &empire.Empire{ID: "e1", Resources: empire.Resources{Credits: 100}}
		m := marketWith(e)

		res, err := m.ExecuteBuyOrder(ctx, "g1", "e1", empire.CommodityFood, 20, 1)
		require.NoError(t, err)
		require.True(t, res.Success)

		// 100 credits at 8/unit affords 12 units costing 96.
		require.EqualValues(t, 4, e.Resources.Credits)
		require.EqualValues(t, 4, res.NewBalance)
		require.EqualValues(t, 12, e.Resources.Food)
	})

	t.Run("zero fill is a failed order", func(t *testing.T) {
		e := &empire.Empire{ID: "e1", Resources: empire.Resources{Credits: 5}}
		m := marketWith(e)

		res, err := m.ExecuteBuyOrder(ctx, "g1", "e1", empire.CommodityFood, 10, 1)
		require.NoError(t, err)
		require.False(t, res.Success)
		require.Equal(t, "insufficient credits", res.Error)
		require.EqualValues(t, 5, e.Resources.Credits)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		e := &empire.Empire{ID: "e1", Resources: empire.Resources{Credits: 1000}}
		m := marketWith(e)
		res, err := m.ExecuteBuyOrder(ctx, "g1", "e1", empire.CommodityOre, 0, 1)
		require.NoError(t, err)
		require.False(t, res.Success)
	})

	t.Run("unknown empire errors", func(t *testing.T) {
		m := marketWith(&empire.Empire{ID: "e1"})
		_, err := m.ExecuteBuyOrder(ctx, "g1", "ghost", empire.CommodityFood, 1, 1)
		require.Error(t, err)
	})
}

func TestExecuteSellOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps to holdings", func(t *testing.T) {
		e := &empire.Empire{ID: "e1", Resources: empire.Resources{Food: 10}}
		m := marketWith(e)

		res, err := m.ExecuteSellOrder(ctx, "g1", "e1", empire.CommodityFood, 50, 1)
		require.NoError(t, err)
		require.True(t, res.Success)
		require.EqualValues(t, 0, e.Resources.Food)
		require.EqualValues(t, 80, e.Resources.Credits)
	})

	t.Run("nothing to sell", func(t *testing.T) {
		e := &empire.Empire{ID: "e1"}
		m := marketWith(e)
		res, err := m.ExecuteSellOrder(ctx, "g1", "e1", empire.CommodityFuel, 10, 1)
		require.NoError(t, err)
		require.False(t, res.Success)
		require.Equal(t, "nothing to sell", res.Error)
	})
}

func TestPricePressure(t *testing.T) {
	e := &empire.Empire{ID: "e1", Resources: empire.Resources{Credits: 10000000}}
	m := marketWith(e)

	base := m.Price(empire.CommodityFood)
	require.InDelta(t, 8.0, base, 1e-9)

	_, err := m.ExecuteBuyOrder(context.Background(), "g1", "e1", empire.CommodityFood, 100000, 1)
	require.NoError(t, err)

	// 100k units of buy pressure lift the price by the drift rate.
	require.InDelta(t, 16.0, m.Price(empire.CommodityFood), 1e-6)

	// Other commodities are unaffected.
	require.InDelta(t, 15.0, m.Price(empire.CommodityOre), 1e-9)
}
