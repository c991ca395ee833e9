package journal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUsdPnl(t *testing.T) {
	t.Parallel()

	five := &Instrument{ID: "i1", Name: "MES", PointValueUSD: 5}

	tests := []struct {
		name  string
		entry Entry
		inst  *Instrument
		want  float64
	}{
		{
			name:  "long_profit",
			entry: Entry{Direction: Long, EntryPrice: 100, ExitPrice: Float(110), PositionSize: Float(2)},
			inst:  five,
			want:  100,
		},
		{
			name:  "short_same_prices",
			entry: Entry{Direction: Short, EntryPrice: 100, ExitPrice: Float(110), PositionSize: Float(2)},
			inst:  five,
			want:  -100,
		},
		{
			name:  "no_instrument",
			entry: Entry{Direction: Long, EntryPrice: 100, ExitPrice: Float(110)},
			inst:  nil,
			want:  0,
		},
		{
			name:  "explicit_points_win",
			entry: Entry{Direction: Long, EntryPrice: 100, ExitPrice: Float(110), PnL: Float(-3)},
			inst:  five,
			want:  -15,
		},
		{
			name:  "no_exit_no_points",
			entry: Entry{Direction: Long, EntryPrice: 100},
			inst:  five,
			want:  0,
		},
		{
			name:  "default_size_one",
			entry: Entry{Direction: Long, EntryPrice: 100, ExitPrice: Float(101.5)},
			inst:  five,
			want:  7.5,
		},
		{
			name:  "non_finite_size_uses_one",
			entry: Entry{Direction: Long, EntryPrice: 100, ExitPrice: Float(101), PositionSize: Float(math.NaN())},
			inst:  five,
			want:  5,
		},
		{
			name:  "rounded_to_cents",
			entry: Entry{Direction: Long, EntryPrice: 1.08500, ExitPrice: Float(1.08753)},
			inst:  &Instrument{PointValueUSD: 100000},
			want:  253,
		},
		{
			name:  "overflow_is_zero",
			entry: Entry{Direction: Long, PnL: Float(math.MaxFloat64)},
			inst:  &Instrument{PointValueUSD: 10},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeUsdPnl(tt.entry, tt.inst), 1e-9)
		})
	}
}

func TestComputeRiskReward(t *testing.T) {
	t.Parallel()

	rr := ComputeRiskReward(Entry{EntryPrice: 100, ExitPrice: Float(110), StopLoss: Float(95)})
	require.NotNil(t, rr)
	assert.Equal(t, 2.0, *rr)

	assert.Nil(t, ComputeRiskReward(Entry{EntryPrice: 100, ExitPrice: Float(110), StopLoss: Float(100)}))
	assert.Nil(t, ComputeRiskReward(Entry{EntryPrice: 100, ExitPrice: Float(110)}))
	assert.Nil(t, ComputeRiskReward(Entry{EntryPrice: 100, StopLoss: Float(95)}))
	assert.Nil(t, ComputeRiskReward(Entry{EntryPrice: math.NaN(), ExitPrice: Float(110), StopLoss: Float(95)}))

	rr = ComputeRiskReward(Entry{EntryPrice: 100, ExitPrice: Float(90), StopLoss: Float(97)})
	require.NotNil(t, rr)
	assert.Equal(t, 3.33, *rr)
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 1050.0, Round2(1000+50.0000001))
	assert.Equal(t, -2.35, Round2(-2.345))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
}

func TestIsSettled(t *testing.T) {
	t.Parallel()

	base := Entry{Status: Closed, ExitPrice: Float(1), AccountID: "a1"}
	assert.True(t, IsSettled(base))

	for _, s := range []Status{Win, Loss} {
		e := base
		e.Status = s
		assert.True(t, IsSettled(e), s)
	}

	open := base
	open.Status = Open
	assert.False(t, IsSettled(open))

	noExit := base
	noExit.ExitPrice = nil
	assert.False(t, IsSettled(noExit))

	noAccount := base
	noAccount.AccountID = ""
	assert.False(t, IsSettled(noAccount))
}

func TestDeriveOverwritesClientValues(t *testing.T) {
	t.Parallel()

	e := Entry{
		Direction:  Long,
		EntryPrice: 100,
		ExitPrice:  Float(104),
		UsdPnL:     Float(99999),
		RiskReward: Float(42),
	}
	got := Derive(e, &Instrument{PointValueUSD: 2})
	require.NotNil(t, got.UsdPnL)
	assert.Equal(t, 8.0, *got.UsdPnL)
	assert.Nil(t, got.RiskReward)
}
