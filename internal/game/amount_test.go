package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAmount(t *testing.T) {
	sum, err := addAmount(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = addAmount(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestMulDiv(t *testing.T) {
	cases := []struct {
		name    string
		a, b, d uint64
		want    uint64
	}{
		{"small", 50, 220, 80, 137},
		{"exact", 30, 90, 30, 90},
		{"wide product", math.MaxUint64 / 2, math.MaxUint64, math.MaxUint64, math.MaxUint64 / 2},
		{"floor", 1, 2, 3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mulDiv(tc.a, tc.b, tc.d)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := mulDiv(2, math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	_, err = mulDiv(1, 1, 0)
	assert.ErrorIs(t, err, ErrNoContribution)
}

func TestLedger(t *testing.T) {
	l := Ledger{}
	require.NoError(t, l.add("b", 5))
	require.NoError(t, l.add("a", 3))
	require.NoError(t, l.add("b", 2))

	assert.Equal(t, uint64(7), l.Get("b"))
	assert.Equal(t, uint64(0), l.Get("z"))
	assert.True(t, l.Has("a"))
	assert.Equal(t, uint64(10), l.Total())
	assert.Equal(t, []Contribution{{"a", 3}, {"b", 7}}, l.Entries())

	c := l.Clone()
	l.remove("a")
	assert.False(t, l.Has("a"))
	assert.True(t, c.Has("a"), "clone is independent")

	require.NoError(t, l.add("max", math.MaxUint64))
	assert.ErrorIs(t, l.add("max", 1), ErrAmountOverflow)
}
