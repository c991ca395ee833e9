package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchApply(t *testing.T) {
	t.Parallel()

	base := Entry{
		Symbol: "ES", Direction: Long, EntryPrice: 100,
		ExitPrice: Float(105), StopLoss: Float(95), PnL: Float(5),
		AccountID: "acc", Notes: "keep", Images: []string{"a.png"},
	}

	sym := "MES"
	short := Short
	empty := ""
	got := Patch{
		Symbol:     &sym,
		Direction:  &short,
		AccountID:  &empty,
		UsdPnL:     Float(999),
		RiskReward: Float(999),
		Unset:      []string{"stopLoss", "pnl"},
	}.Apply(base)

	assert.Equal(t, "MES", got.Symbol)
	assert.Equal(t, Short, got.Direction)
	assert.Equal(t, "", got.AccountID)
	assert.Equal(t, "keep", got.Notes)
	assert.Equal(t, 105.0, *got.ExitPrice)
	assert.Nil(t, got.StopLoss)
	assert.Nil(t, got.PnL)
	assert.Nil(t, got.UsdPnL)
	assert.Nil(t, got.RiskReward)
	assert.Equal(t, []string{"a.png"}, got.Images)

	// base is untouched
	assert.Equal(t, 95.0, *base.StopLoss)
}

func TestPatchValidate(t *testing.T) {
	t.Parallel()

	bad := Status("Pending")
	assert.ErrorIs(t, Patch{Status: &bad}.validate(), ErrInvalidInput)
	assert.ErrorIs(t, Patch{Unset: []string{"entryPrice"}}.validate(), ErrInvalidInput)
	assert.NoError(t, Patch{Unset: []string{"exitPrice", "positionSize"}}.validate())
}

func TestDraftPayloads(t *testing.T) {
	t.Parallel()

	d := Draft{Image: "one", Images: []string{"", "two"}}
	assert.Equal(t, []string{"one", "two"}, d.payloads())
}
