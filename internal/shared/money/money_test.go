package money_test

import (
	"testing"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/money"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUpDiv(t *testing.T) {
	tests := []struct {
		name string
		n, d int64
		want int64
	}{
		{"exact", 100, 4, 25},
		{"half fraction rounds up", 102, 4, 26}, // 25.5 -> 26
		{"half rounds up", 5, 2, 3},             // 2.5 -> 3
		{"just under half rounds down", 49, 100, 0},
		{"exactly half rounds up", 50, 100, 1},
		{"just over half rounds up", 51, 100, 1},
		{"zero numerator", 0, 7, 0},
		{"zero divisor", 100, 0, 0},
		{"negative divisor", 100, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.RoundHalfUpDiv(tt.n, tt.d))
		})
	}
}

func TestPercent(t *testing.T) {
	// 10% of 125 = 12.5, rounds up.
	assert.Equal(t, int64(13), money.Percent(125, 10))
	// 5% of 1250 = 62.5, rounds up.
	assert.Equal(t, int64(63), money.Percent(1250, 5))
	// Exact percentage stays exact.
	assert.Equal(t, int64(15000), money.Percent(150000, 10))
	assert.Equal(t, int64(0), money.Percent(0, 25))
	assert.Equal(t, int64(0), money.Percent(100000, 0))
}

func TestPermille(t *testing.T) {
	// 162 permille of 150000 = 24300, exact.
	assert.Equal(t, int64(24300), money.Permille(150000, 162))
	// 162 permille of 100 = 16.2, rounds down.
	assert.Equal(t, int64(16), money.Permille(100, 162))
	// 162 permille of 250 = 40.5, rounds up.
	assert.Equal(t, int64(41), money.Permille(250, 162))
	assert.Equal(t, int64(0), money.Permille(0, 162))
}
